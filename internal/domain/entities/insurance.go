package entities

import (
	"fmt"
	"strings"

	apperrors "github.com/billharmony/backend/pkg/errors"
)

// PlanBenefits is the cost-sharing tuple of an insurance plan
type PlanBenefits struct {
	Deductible         float64 `json:"deductible" db:"deductible"`
	Copay              float64 `json:"copay" db:"copay"`
	CoinsurancePercent float64 `json:"coinsurance" db:"coinsurance_percent"`
	OutOfPocketMax     float64 `json:"out_of_pocket_max" db:"out_of_pocket_max"`
}

// Validate checks that every amount is non-negative and coinsurance is a percentage
func (b PlanBenefits) Validate() error {
	switch {
	case b.Deductible < 0:
		return apperrors.NewFieldValidationError("deductible", "deductible must be >= 0")
	case b.Copay < 0:
		return apperrors.NewFieldValidationError("copay", "copay must be >= 0")
	case b.CoinsurancePercent < 0 || b.CoinsurancePercent > 100:
		return apperrors.NewFieldValidationError("coinsurance", "coinsurance must be between 0 and 100")
	case b.OutOfPocketMax < 0:
		return apperrors.NewFieldValidationError("out_of_pocket_max", "out-of-pocket max must be >= 0")
	}
	return nil
}

// Plan is one benefit design offered by an insurer
type Plan struct {
	ID          string       `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	NetworkType string       `json:"network_type,omitempty" db:"network_type"`
	Benefits    PlanBenefits `json:"benefits" db:"-"`
}

// Insurer is an insurance carrier and its ordered plans
type Insurer struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Type string `json:"type" db:"type"`
	// PayerName is the name hospital price files use for this insurer
	PayerName string `json:"payer_name,omitempty" db:"payer_name"`
	Plans     []Plan `json:"plans" db:"-"`
}

// Validate checks every plan's benefit tuple
func (i *Insurer) Validate() error {
	for _, p := range i.Plans {
		if err := p.Benefits.Validate(); err != nil {
			return fmt.Errorf("insurer %s plan %s: %w", i.ID, p.ID, err)
		}
	}
	return nil
}

// Plan looks up a plan by identifier
func (i *Insurer) Plan(id string) (*Plan, bool) {
	for idx := range i.Plans {
		if i.Plans[idx].ID == id {
			return &i.Plans[idx], true
		}
	}
	return nil, false
}

// PlanMatching returns the first plan whose name or identifier contains keyword, case-insensitively
func (i *Insurer) PlanMatching(keyword string) (*Plan, bool) {
	keyword = strings.ToLower(keyword)
	if keyword == "" {
		return nil, false
	}
	for idx := range i.Plans {
		p := &i.Plans[idx]
		if strings.Contains(strings.ToLower(p.Name), keyword) || strings.Contains(strings.ToLower(p.ID), keyword) {
			return p, true
		}
	}
	return nil, false
}
