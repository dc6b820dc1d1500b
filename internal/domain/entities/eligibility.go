package entities

import (
	"strings"

	apperrors "github.com/billharmony/backend/pkg/errors"
)

// Employment statuses recognized by assistance programs
const (
	EmploymentEmployed     = "employed"
	EmploymentUnemployed   = "unemployed"
	EmploymentSelfEmployed = "self-employed"
	EmploymentPartTime     = "part-time"
	EmploymentRetired      = "retired"
	EmploymentStudent      = "student"
	EmploymentDisabled     = "disabled"
)

// HouseholdProfile is the financial input to eligibility scoring
type HouseholdProfile struct {
	Income           float64 `json:"household_income"`
	FamilySize       int     `json:"family_size"`
	EmploymentStatus string  `json:"employment_status"`
	ZipCode          string  `json:"zip_code,omitempty"`
}

// Validate enforces the structural requirements of a household profile
func (h HouseholdProfile) Validate() error {
	if h.Income < 0 {
		return apperrors.NewFieldValidationError("household_income", "household income must be >= 0")
	}
	if h.FamilySize < 1 {
		return apperrors.NewFieldValidationError("family_size", "family size must be at least 1")
	}
	if strings.TrimSpace(h.EmploymentStatus) == "" {
		return apperrors.NewFieldValidationError("employment_status", "employment status is required")
	}
	return nil
}

// CoverageType describes how a program's coverage amount is applied
type CoverageType string

const (
	CoverageFull       CoverageType = "full"
	CoveragePercentage CoverageType = "percentage"
	CoverageFixed      CoverageType = "fixed"
)

// EligibilityRule holds a program's qualification criteria. Unset criteria are ignored.
type EligibilityRule struct {
	MaxIncomePercentOfFPL *float64 `json:"max_income_percent_of_fpl,omitempty"`
	EmploymentStatuses    []string `json:"employment_status,omitempty"`
}

// AllowsEmployment reports whether status appears in the program's employment list
func (r EligibilityRule) AllowsEmployment(status string) bool {
	for _, s := range r.EmploymentStatuses {
		if strings.EqualFold(s, status) {
			return true
		}
	}
	return false
}

// AssistanceProgram is a charity or financial-assistance offering
type AssistanceProgram struct {
	ID             string          `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Description    string          `json:"description,omitempty" db:"description"`
	CoverageType   CoverageType    `json:"coverage_type" db:"coverage_type"`
	CoverageAmount float64         `json:"coverage_amount" db:"coverage_amount"`
	Eligibility    EligibilityRule `json:"eligibility_criteria" db:"-"`
}

// AssistanceFor returns how much of cost the program would cover
func (p AssistanceProgram) AssistanceFor(cost float64) float64 {
	switch p.CoverageType {
	case CoverageFull:
		return cost
	case CoveragePercentage:
		return cost * p.CoverageAmount / 100
	case CoverageFixed:
		if p.CoverageAmount < cost {
			return p.CoverageAmount
		}
		return cost
	}
	return 0
}

// EligibilityResult is the outcome of scoring a household against the program table
type EligibilityResult struct {
	Score               int                 `json:"eligibility_score"`
	IncomePercentOfFPL  float64             `json:"income_percent_of_fpl"`
	FPLThreshold        float64             `json:"fpl_threshold"`
	QualifiedPrograms   []AssistanceProgram `json:"qualified_programs"`
	EstimatedAssistance float64             `json:"estimated_assistance"`
	RemainingCost       float64             `json:"remaining_cost"`
	RecommendedProgram  *AssistanceProgram  `json:"recommended_program,omitempty"`
	Reasoning           string              `json:"reasoning"`
}
