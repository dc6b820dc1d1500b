package evaluation

import "time"

// Difficulty labels how hard a golden query is for the interpreter.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid checks if the difficulty is one of the defined constants.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// GoldenQuery is a labeled free-text query with the interpretation it should produce.
// An empty expectation means the interpreter must leave that field empty too.
type GoldenQuery struct {
	ID                 string     `json:"id"`
	Query              string     `json:"query"`
	ExpectedProcedures []string   `json:"expected_procedures"`
	ExpectedInsurer    string     `json:"expected_insurance"`
	ExpectedPlan       string     `json:"expected_insurance_plan"`
	ExpectedLocation   string     `json:"expected_location"`
	ExpectedRadius     float64    `json:"expected_max_distance"`
	ExpectedCashOnly   bool       `json:"expected_cash_only"`
	Difficulty         Difficulty `json:"difficulty"`
}

// EvalResult holds the evaluation outcome for a single query.
type EvalResult struct {
	QueryID         string        `json:"query_id"`
	Query           string        `json:"query"`
	Difficulty      Difficulty    `json:"difficulty"`
	ProcedureRecall float64       `json:"procedure_recall"`
	ProceduresExact bool          `json:"procedures_exact"`
	InsurerMatch    bool          `json:"insurer_match"`
	PlanMatch       bool          `json:"plan_match"`
	LocationMatch   bool          `json:"location_match"`
	RadiusMatch     bool          `json:"radius_match"`
	CashMatch       bool          `json:"cash_match"`
	Latency         time.Duration `json:"latency_ns"`
}

// Passed reports whether every field matched
func (r EvalResult) Passed() bool {
	return r.ProceduresExact && r.InsurerMatch && r.PlanMatch && r.LocationMatch && r.RadiusMatch && r.CashMatch
}

// FieldAccuracy is the fraction of queries where each field matched exactly.
type FieldAccuracy struct {
	Procedures float64 `json:"procedures"`
	Insurer    float64 `json:"insurance"`
	Plan       float64 `json:"insurance_plan"`
	Location   float64 `json:"location"`
	Radius     float64 `json:"max_distance"`
	CashOnly   float64 `json:"cash_only"`
}

// EvalSummary holds aggregate metrics across all golden queries.
type EvalSummary struct {
	TotalQueries       int                               `json:"total_queries"`
	PassedQueries      int                               `json:"passed_queries"`
	AvgProcedureRecall float64                           `json:"avg_procedure_recall"`
	Accuracy           FieldAccuracy                     `json:"accuracy"`
	AvgLatency         time.Duration                     `json:"avg_latency_ns"`
	ByDifficulty       map[Difficulty]*DifficultySummary `json:"by_difficulty"`
	Failures           []EvalResult                      `json:"failures,omitempty"`
}

// DifficultySummary holds metrics grouped by difficulty.
type DifficultySummary struct {
	Count              int     `json:"count"`
	Passed             int     `json:"passed"`
	AvgProcedureRecall float64 `json:"avg_procedure_recall"`
}
