package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/billharmony/backend/internal/domain/entities"
)

// FPLTable holds Federal Poverty Level thresholds by household size
type FPLTable struct {
	Year int
	// Thresholds[i] is the annual threshold for a household of i+1
	Thresholds          []float64
	PerAdditionalPerson float64
}

// DefaultFPLTable returns the 2024 contiguous-US poverty guidelines
func DefaultFPLTable() *FPLTable {
	return &FPLTable{
		Year:                2024,
		Thresholds:          []float64{15760, 21380, 26980, 32580, 38180, 43780, 49380, 54980},
		PerAdditionalPerson: 5600,
	}
}

// Threshold returns the poverty threshold for a household of familySize (>= 1)
func (t *FPLTable) Threshold(familySize int) float64 {
	if familySize < 1 {
		familySize = 1
	}
	n := len(t.Thresholds)
	if familySize <= n {
		return t.Thresholds[familySize-1]
	}
	return t.Thresholds[n-1] + float64(familySize-n)*t.PerAdditionalPerson
}

// ScoreBand awards Score to incomes at or under MaxPercentOfFPL
type ScoreBand struct {
	MaxPercentOfFPL float64
	Score           int
}

// DefaultScoreBands is the step function from income percent of FPL to score
func DefaultScoreBands() []ScoreBand {
	return []ScoreBand{
		{MaxPercentOfFPL: 100, Score: 95},
		{MaxPercentOfFPL: 138, Score: 85},
		{MaxPercentOfFPL: 200, Score: 70},
		{MaxPercentOfFPL: 250, Score: 50},
		{MaxPercentOfFPL: 300, Score: 30},
	}
}

const unemploymentBonus = 15

// EligibilityScorer scores a household's likelihood of charity assistance
// and picks the best program from the program table.
type EligibilityScorer struct {
	fpl   *FPLTable
	bands []ScoreBand
}

// NewEligibilityScorer creates a new scorer; nil arguments use the defaults
func NewEligibilityScorer(fpl *FPLTable, bands []ScoreBand) *EligibilityScorer {
	if fpl == nil {
		fpl = DefaultFPLTable()
	}
	if bands == nil {
		bands = DefaultScoreBands()
	}
	return &EligibilityScorer{fpl: fpl, bands: bands}
}

// Score evaluates profile against programs for a procedure costing cost.
// A program qualifies when its income cap is met or when the employment status
// is on its list; either criterion alone is enough.
func (s *EligibilityScorer) Score(profile entities.HouseholdProfile, cost float64, programs []entities.AssistanceProgram) (*entities.EligibilityResult, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if cost < 0 {
		cost = 0
	}

	threshold := s.fpl.Threshold(profile.FamilySize)
	percent := profile.Income / threshold * 100

	result := &entities.EligibilityResult{
		Score:              s.scoreFor(percent, profile.EmploymentStatus),
		IncomePercentOfFPL: math.Round(percent),
		FPLThreshold:       threshold,
		QualifiedPrograms:  make([]entities.AssistanceProgram, 0),
	}

	recommended := -1
	for _, p := range programs {
		if !qualifies(p.Eligibility, percent, profile.EmploymentStatus) {
			continue
		}
		result.QualifiedPrograms = append(result.QualifiedPrograms, p)

		// Strictly greater keeps the earliest program on ties.
		assistance := p.AssistanceFor(cost)
		if recommended < 0 || assistance > result.EstimatedAssistance {
			result.EstimatedAssistance = assistance
			recommended = len(result.QualifiedPrograms) - 1
		}
	}
	if recommended >= 0 {
		program := result.QualifiedPrograms[recommended]
		result.RecommendedProgram = &program
	}

	result.RemainingCost = math.Max(0, cost-result.EstimatedAssistance)
	result.Reasoning = reasoning(profile, result)
	return result, nil
}

func qualifies(rule entities.EligibilityRule, percent float64, status string) bool {
	// A zero cap is treated as no cap.
	if rule.MaxIncomePercentOfFPL != nil && *rule.MaxIncomePercentOfFPL > 0 && percent <= *rule.MaxIncomePercentOfFPL {
		return true
	}
	return rule.AllowsEmployment(status)
}

func (s *EligibilityScorer) scoreFor(percent float64, status string) int {
	score := 0
	for _, band := range s.bands {
		if percent <= band.MaxPercentOfFPL {
			score = band.Score
			break
		}
	}
	if strings.EqualFold(status, entities.EmploymentUnemployed) {
		score += unemploymentBonus
	}
	return clampScore(score)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func reasoning(profile entities.HouseholdProfile, result *entities.EligibilityResult) string {
	return fmt.Sprintf(
		"Based on your household income of %s (%s%% of Federal Poverty Level for a family of %d) and %s employment status, "+
			"you qualify for %d assistance %s. Your estimated assistance is %s, reducing your cost to %s.",
		formatDollars(profile.Income),
		strconv.FormatFloat(result.IncomePercentOfFPL, 'f', -1, 64),
		profile.FamilySize,
		profile.EmploymentStatus,
		len(result.QualifiedPrograms),
		pluralize(len(result.QualifiedPrograms), "program", "programs"),
		formatDollars(result.EstimatedAssistance),
		formatDollars(result.RemainingCost),
	)
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// formatDollars renders v as "$1,234" or "$1,234.50"
func formatDollars(v float64) string {
	neg := v < 0
	v = math.Abs(v)
	cents := int64(math.Round(v * 100))
	whole := cents / 100
	frac := cents % 100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != 0 {
		fmt.Fprintf(&b, ".%02d", frac)
	}
	return b.String()
}
