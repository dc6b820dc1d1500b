package evaluation

import "fmt"

// GuardrailConfig holds the minimum aggregate scores an interpreter change must keep.
type GuardrailConfig struct {
	MinProcedureRecall  float64
	MinInsurerAccuracy  float64
	MinPlanAccuracy     float64
	MinLocationAccuracy float64
	MinRadiusAccuracy   float64
	MinCashAccuracy     float64
	MinPassRate         float64
}

// DefaultGuardrailConfig returns the thresholds cmd/evaluate enforces
func DefaultGuardrailConfig() GuardrailConfig {
	return GuardrailConfig{
		MinProcedureRecall:  0.95,
		MinInsurerAccuracy:  0.9,
		MinPlanAccuracy:     0.85,
		MinLocationAccuracy: 0.85,
		MinRadiusAccuracy:   0.9,
		MinCashAccuracy:     0.95,
		MinPassRate:         0.75,
	}
}

// Violation is one metric that fell below its threshold
type Violation struct {
	Metric string  `json:"metric"`
	Got    float64 `json:"got"`
	Min    float64 `json:"min"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %.3f below minimum %.3f", v.Metric, v.Got, v.Min)
}

type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	return &Guardrails{config: config}
}

// Check returns every threshold the summary misses. An empty summary always fails.
func (g *Guardrails) Check(s *EvalSummary) []Violation {
	if s == nil || s.TotalQueries == 0 {
		return []Violation{{Metric: "total_queries", Got: 0, Min: 1}}
	}

	checks := []struct {
		metric string
		got    float64
		min    float64
	}{
		{"procedure_recall", s.AvgProcedureRecall, g.config.MinProcedureRecall},
		{"insurance_accuracy", s.Accuracy.Insurer, g.config.MinInsurerAccuracy},
		{"insurance_plan_accuracy", s.Accuracy.Plan, g.config.MinPlanAccuracy},
		{"location_accuracy", s.Accuracy.Location, g.config.MinLocationAccuracy},
		{"max_distance_accuracy", s.Accuracy.Radius, g.config.MinRadiusAccuracy},
		{"cash_only_accuracy", s.Accuracy.CashOnly, g.config.MinCashAccuracy},
		{"pass_rate", ratio(s.PassedQueries, s.TotalQueries), g.config.MinPassRate},
	}

	var violations []Violation
	for _, c := range checks {
		if c.got < c.min {
			violations = append(violations, Violation{Metric: c.metric, Got: c.got, Min: c.min})
		}
	}
	return violations
}
