package entities

import "strings"

// Code systems seen in hospital price files
const (
	CodeSystemCPT   = "CPT"
	CodeSystemHCPCS = "HCPCS"
)

// BillingCode identifies a procedure in a billing code system
type BillingCode struct {
	Code   string `json:"code" db:"code"`
	System string `json:"system" db:"system"`
}

// Procedure represents a medical procedure/service in the reference catalog
type Procedure struct {
	ID          string        `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Category    string        `json:"category,omitempty" db:"category"`
	Description string        `json:"description,omitempty" db:"description"`
	Codes       []BillingCode `json:"codes" db:"-"`
}

// HasCode reports whether the procedure carries the given billing code
func (p *Procedure) HasCode(code string) bool {
	code = strings.TrimSpace(code)
	for _, c := range p.Codes {
		if c.Code == code {
			return true
		}
	}
	return false
}

// PrimaryCode returns the first billing code, or "" when none is set
func (p *Procedure) PrimaryCode() string {
	if len(p.Codes) == 0 {
		return ""
	}
	return p.Codes[0].Code
}
