package entities

// CostBreakdown explains an out-of-pocket figure in plain language
type CostBreakdown struct {
	Total           float64 `json:"total"`
	Deductible      float64 `json:"deductible"`
	Copay           float64 `json:"copay"`
	Coinsurance     float64 `json:"coinsurance"`
	InsuranceCovers float64 `json:"insurance_covers"`
	Explanation     string  `json:"explanation"`
	PlainLanguage   string  `json:"plain_language"`
}

// PaymentPlan is an interest-free installment option for a total cost
type PaymentPlan struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	DurationMonths int     `json:"duration_months"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalCost      float64 `json:"total_cost"`
	InterestRate   float64 `json:"interest_rate"`
	Description    string  `json:"description"`
}

// CostShare is how a plan's benefit rules split one base price
type CostShare struct {
	BasePrice   float64 `json:"base_price"`
	Deductible  float64 `json:"deductible"`
	Copay       float64 `json:"copay"`
	Coinsurance float64 `json:"coinsurance"`
	Total       float64 `json:"total"`
}
