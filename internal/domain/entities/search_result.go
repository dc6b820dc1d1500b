package entities

// ProcedurePrice is the per-procedure price breakdown inside a search result
type ProcedurePrice struct {
	ProcedureID           string      `json:"procedure_id"`
	ProcedureName         string      `json:"procedure_name"`
	PriceWithoutInsurance float64     `json:"price_without_insurance"`
	PriceWithInsurance    *float64    `json:"price_with_insurance"`
	Setting               CareSetting `json:"setting"`
	// CostShare is set when plan benefit arithmetic produced PriceWithInsurance
	CostShare *CostShare `json:"cost_share,omitempty"`
}

// SearchResultEntry is one facility that offers every requested procedure within range.
// Entries are built per request and never persisted.
type SearchResultEntry struct {
	Facility              FacilitySummary  `json:"hospital"`
	DistanceMiles         float64          `json:"distance"`
	InNetwork             bool             `json:"in_network"`
	Procedures            []ProcedurePrice `json:"procedures"`
	PriceWithInsurance    *float64         `json:"price_with_insurance"`
	PriceWithoutInsurance float64          `json:"price_without_insurance"`
	Plan                  *Plan            `json:"insurance_plan,omitempty"`
	CostBreakdown         *CostBreakdown   `json:"cost_breakdown,omitempty"`
}

// OutOfPocket is what the patient is expected to pay: the insured total when fully priced, else the cash total
func (e *SearchResultEntry) OutOfPocket() float64 {
	if e.PriceWithInsurance != nil {
		return *e.PriceWithInsurance
	}
	return e.PriceWithoutInsurance
}
