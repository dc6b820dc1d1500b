package evaluation

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/billharmony/backend/internal/domain/entities"
)

// Interpreter is the query parser under evaluation
type Interpreter interface {
	Parse(text string) *entities.ParsedIntent
}

// Runner runs evaluation across a set of golden queries.
type Runner struct {
	interpreter   Interpreter
	defaultRadius float64
	now           func() time.Time
}

// NewRunner creates a runner. Golden queries without an expected radius
// are checked against defaultRadius.
func NewRunner(interpreter Interpreter, defaultRadius float64) *Runner {
	return &Runner{interpreter: interpreter, defaultRadius: defaultRadius, now: time.Now}
}

func (r *Runner) Run(ctx context.Context, queries []GoldenQuery) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalQueries: len(queries),
		ByDifficulty: make(map[Difficulty]*DifficultySummary),
	}

	var insurer, plan, location, radius, cash, procedures int
	for _, gq := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := r.evaluate(gq)

		summary.AvgProcedureRecall += res.ProcedureRecall
		summary.AvgLatency += res.Latency
		procedures += boolToInt(res.ProceduresExact)
		insurer += boolToInt(res.InsurerMatch)
		plan += boolToInt(res.PlanMatch)
		location += boolToInt(res.LocationMatch)
		radius += boolToInt(res.RadiusMatch)
		cash += boolToInt(res.CashMatch)

		ds, ok := summary.ByDifficulty[gq.Difficulty]
		if !ok {
			ds = &DifficultySummary{}
			summary.ByDifficulty[gq.Difficulty] = ds
		}
		ds.Count++
		ds.AvgProcedureRecall += res.ProcedureRecall

		if res.Passed() {
			summary.PassedQueries++
			ds.Passed++
		} else {
			summary.Failures = append(summary.Failures, res)
		}
	}

	n := summary.TotalQueries
	if n > 0 {
		summary.AvgProcedureRecall /= float64(n)
		summary.AvgLatency /= time.Duration(n)
	}
	summary.Accuracy = FieldAccuracy{
		Procedures: ratio(procedures, n),
		Insurer:    ratio(insurer, n),
		Plan:       ratio(plan, n),
		Location:   ratio(location, n),
		Radius:     ratio(radius, n),
		CashOnly:   ratio(cash, n),
	}
	for _, ds := range summary.ByDifficulty {
		ds.AvgProcedureRecall /= float64(ds.Count)
	}

	return summary, nil
}

func (r *Runner) evaluate(gq GoldenQuery) EvalResult {
	start := r.now()
	intent := r.interpreter.Parse(gq.Query)
	latency := r.now().Sub(start)

	expectedRadius := gq.ExpectedRadius
	if expectedRadius == 0 {
		expectedRadius = r.defaultRadius
	}

	return EvalResult{
		QueryID:         gq.ID,
		Query:           gq.Query,
		Difficulty:      gq.Difficulty,
		ProcedureRecall: RecallAtK(gq.ExpectedProcedures, intent.Procedures, len(intent.Procedures)),
		ProceduresExact: SameSet(gq.ExpectedProcedures, intent.Procedures),
		InsurerMatch:    intent.InsurerID == gq.ExpectedInsurer,
		PlanMatch:       intent.PlanID == gq.ExpectedPlan,
		LocationMatch:   strings.EqualFold(strings.TrimSpace(intent.Location), gq.ExpectedLocation),
		RadiusMatch:     math.Abs(intent.RadiusMiles-expectedRadius) < 0.5,
		CashMatch:       intent.ExplicitNoInsurance == gq.ExpectedCashOnly,
		Latency:         latency,
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
