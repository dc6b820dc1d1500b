package entities

import "time"

// UserProfile holds a user's saved search defaults
type UserProfile struct {
	ID        string    `json:"id" db:"id"`
	InsurerID string    `json:"insurance,omitempty" db:"insurer_id"`
	PlanID    string    `json:"insurance_plan,omitempty" db:"plan_id"`
	ZipCode   string    `json:"zip_code,omitempty" db:"zip_code"`
	City      string    `json:"city,omitempty" db:"city"`
	State     string    `json:"state,omitempty" db:"state"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// LocationToken returns the zip code, else "City, ST", else ""
func (p *UserProfile) LocationToken() string {
	if p == nil {
		return ""
	}
	if p.ZipCode != "" {
		return p.ZipCode
	}
	if p.City != "" && p.State != "" {
		return p.City + ", " + p.State
	}
	return ""
}
