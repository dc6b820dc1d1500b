package postgres

import (
	"context"
	"fmt"
)

// schemaStatements create the catalog, profile and analytics tables. The
// position columns preserve reference-data order, which search tie-breaking
// depends on.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS procedures (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS procedure_codes (
		procedure_id TEXT NOT NULL REFERENCES procedures(id) ON DELETE CASCADE,
		code TEXT NOT NULL,
		system TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL,
		PRIMARY KEY (procedure_id, code)
	)`,
	`CREATE TABLE IF NOT EXISTS insurers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT '',
		payer_name TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS plans (
		insurer_id TEXT NOT NULL REFERENCES insurers(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		network_type TEXT NOT NULL DEFAULT '',
		deductible NUMERIC(12,2) NOT NULL CHECK (deductible >= 0),
		copay NUMERIC(12,2) NOT NULL CHECK (copay >= 0),
		coinsurance_percent NUMERIC(5,2) NOT NULL CHECK (coinsurance_percent BETWEEN 0 AND 100),
		out_of_pocket_max NUMERIC(12,2) NOT NULL CHECK (out_of_pocket_max >= 0),
		position INTEGER NOT NULL,
		PRIMARY KEY (insurer_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS facilities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		street TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		zip_code TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		in_network_insurers TEXT[] NOT NULL DEFAULT '{}',
		position INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS facility_charges (
		facility_id TEXT NOT NULL REFERENCES facilities(id) ON DELETE CASCADE,
		procedure_id TEXT NOT NULL REFERENCES procedures(id) ON DELETE CASCADE,
		gross_charge NUMERIC(12,2) NOT NULL CHECK (gross_charge >= 0),
		setting TEXT NOT NULL DEFAULT 'outpatient',
		PRIMARY KEY (facility_id, procedure_id)
	)`,
	`CREATE TABLE IF NOT EXISTS negotiated_charges (
		facility_id TEXT NOT NULL,
		procedure_id TEXT NOT NULL,
		insurer_id TEXT NOT NULL,
		amount NUMERIC(12,2) NOT NULL,
		PRIMARY KEY (facility_id, procedure_id, insurer_id),
		FOREIGN KEY (facility_id, procedure_id) REFERENCES facility_charges(facility_id, procedure_id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS zip_codes (
		zip_code TEXT PRIMARY KEY,
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS assistance_programs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		coverage_type TEXT NOT NULL,
		coverage_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		max_income_percent_of_fpl NUMERIC(6,2),
		employment_statuses TEXT[] NOT NULL DEFAULT '{}',
		position INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
		id TEXT PRIMARY KEY,
		insurer_id TEXT NOT NULL DEFAULT '',
		plan_id TEXT NOT NULL DEFAULT '',
		zip_code TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS search_events (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		procedures TEXT[] NOT NULL DEFAULT '{}',
		insurer_id TEXT NOT NULL DEFAULT '',
		plan_id TEXT NOT NULL DEFAULT '',
		location_token TEXT NOT NULL DEFAULT '',
		location_source TEXT NOT NULL DEFAULT '',
		radius_miles DOUBLE PRECISION NOT NULL,
		cash_only BOOLEAN NOT NULL DEFAULT FALSE,
		missing_info BOOLEAN NOT NULL DEFAULT FALSE,
		result_count INTEGER NOT NULL,
		latency_ms INTEGER NOT NULL,
		user_latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		user_longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_search_events_zero_results ON search_events (created_at DESC) WHERE result_count = 0`,
}

// EnsureSchema creates any missing tables and indexes
func (c *Client) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
