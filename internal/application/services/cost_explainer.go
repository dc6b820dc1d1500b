package services

import (
	"fmt"
	"math"

	"github.com/billharmony/backend/internal/domain/entities"
)

// InstallmentTerms are the payment plan durations offered, in months
var InstallmentTerms = []int{12, 24}

// CostExplainer turns priced search results into plain-language cost breakdowns
type CostExplainer struct {
	terms []int
}

// NewCostExplainer creates a new cost explainer
func NewCostExplainer() *CostExplainer {
	return &CostExplainer{terms: InstallmentTerms}
}

// Breakdown explains the out-of-pocket figure of entry
func (e *CostExplainer) Breakdown(entry *entities.SearchResultEntry) *entities.CostBreakdown {
	cash := entry.PriceWithoutInsurance

	if entry.PriceWithInsurance == nil {
		return &entities.CostBreakdown{
			Total:       cash,
			Explanation: "This is the full cash price you would pay if paying out of pocket.",
			PlainLanguage: fmt.Sprintf(
				"Without insurance, you would pay %s for %s. This is the total amount the hospital charges.",
				formatDollars(cash), procedurePhrase(len(entry.Procedures))),
		}
	}

	total := *entry.PriceWithInsurance

	if entry.Plan != nil {
		b := &entities.CostBreakdown{Total: total}
		base := 0.0
		for _, p := range entry.Procedures {
			if p.CostShare == nil {
				continue
			}
			base += p.CostShare.BasePrice
			b.Deductible += p.CostShare.Deductible
			b.Copay += p.CostShare.Copay
			b.Coinsurance += p.CostShare.Coinsurance
		}
		b.InsuranceCovers = math.Max(0, base-total)
		b.Explanation = fmt.Sprintf(
			"This is your out-of-pocket cost based on your %s plan. Your insurance covers %s.",
			entry.Plan.Name, formatDollars(b.InsuranceCovers))
		b.PlainLanguage = fmt.Sprintf(
			"Your estimated cost: %s. This includes %s deductible, %s copay, and %s coinsurance. "+
				"Your insurance covers the remaining %s. Your out-of-pocket maximum is %s.",
			formatDollars(total), formatDollars(b.Deductible), formatDollars(b.Copay), formatDollars(b.Coinsurance),
			formatDollars(b.InsuranceCovers), formatDollars(entry.Plan.Benefits.OutOfPocketMax))
		return b
	}

	covers := math.Max(0, cash-total)
	return &entities.CostBreakdown{
		Total:           total,
		InsuranceCovers: covers,
		Explanation: fmt.Sprintf(
			"This is the in-network rate your insurer negotiated with this facility. It is %s below the cash price.",
			formatDollars(covers)),
		PlainLanguage: fmt.Sprintf(
			"Your estimated cost: %s at the negotiated in-network rate, compared with a cash price of %s. "+
				"Your plan's deductible and copays may change what you owe.",
			formatDollars(total), formatDollars(cash)),
	}
}

// PaymentPlans returns interest-free installment options for total
func (e *CostExplainer) PaymentPlans(total float64) []entities.PaymentPlan {
	plans := make([]entities.PaymentPlan, 0, len(e.terms))
	for _, months := range e.terms {
		plans = append(plans, entities.PaymentPlan{
			ID:             fmt.Sprintf("%d-month", months),
			Name:           fmt.Sprintf("%d Months", months),
			DurationMonths: months,
			MonthlyPayment: math.Round(total / float64(months)),
			TotalCost:      total,
			Description:    fmt.Sprintf("Interest-free payments over %d months", months),
		})
	}
	return plans
}

// BestOption returns the index of the entry with the lowest out-of-pocket cost,
// or -1 when entries is empty. The first entry wins ties.
func (e *CostExplainer) BestOption(entries []entities.SearchResultEntry) int {
	best := -1
	for i := range entries {
		if best < 0 || entries[i].OutOfPocket() < entries[best].OutOfPocket() {
			best = i
		}
	}
	return best
}

func procedurePhrase(n int) string {
	if n > 1 {
		return "these procedures"
	}
	return "this procedure"
}
