package entities

// Radius bounds in miles
const (
	DefaultRadiusMiles = 100
	MinRadiusMiles     = 1
	MaxRadiusMiles     = 500
)

// ParsedIntent is the structured form of a free-text price request.
// It is owned by the request that produced it.
type ParsedIntent struct {
	Procedures          []string `json:"procedures"`
	InsurerID           string   `json:"insurance,omitempty"`
	PlanID              string   `json:"insurance_plan,omitempty"`
	Location            string   `json:"location"`
	RadiusMiles         float64  `json:"max_distance"`
	ExplicitNoInsurance bool     `json:"explicitly_no_insurance"`
}

// ClampRadius bounds a radius to [MinRadiusMiles, MaxRadiusMiles]
func ClampRadius(r float64) float64 {
	if r < MinRadiusMiles {
		return MinRadiusMiles
	}
	if r > MaxRadiusMiles {
		return MaxRadiusMiles
	}
	return r
}

// ClearInsurance drops insurer and plan
func (p *ParsedIntent) ClearInsurance() {
	p.InsurerID = ""
	p.PlanID = ""
}

// PricesWithInsurance reports whether insured pricing applies at all
func (p *ParsedIntent) PricesWithInsurance() bool {
	return !p.ExplicitNoInsurance && p.InsurerID != ""
}
