package entities

import (
	"time"
)

// SearchEvent represents a single price search for analytics.
type SearchEvent struct {
	ID             string    `json:"id" db:"id"`
	Query          string    `json:"query" db:"query"`
	Procedures     []string  `json:"procedures" db:"-"`
	InsurerID      string    `json:"insurer_id,omitempty" db:"insurer_id"`
	PlanID         string    `json:"plan_id,omitempty" db:"plan_id"`
	LocationToken  string    `json:"location_token" db:"location_token"`
	LocationSource string    `json:"location_source" db:"location_source"`
	RadiusMiles    float64   `json:"radius_miles" db:"radius_miles"`
	CashOnly       bool      `json:"cash_only" db:"cash_only"`
	MissingInfo    bool      `json:"missing_info" db:"missing_info"`
	ResultCount    int       `json:"result_count" db:"result_count"`
	LatencyMs      int       `json:"latency_ms" db:"latency_ms"`
	UserLatitude   float64   `json:"user_latitude" db:"user_latitude"`
	UserLongitude  float64   `json:"user_longitude" db:"user_longitude"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
