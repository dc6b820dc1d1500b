package services

import (
	"sort"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/pkg/geo"
)

// FacilityMatcher filters catalog facilities by distance and procedure coverage
// and prices each match with and without insurance.
type FacilityMatcher struct {
	calculator *BenefitCalculator
}

// NewFacilityMatcher creates a new facility matcher
func NewFacilityMatcher(calculator *BenefitCalculator) *FacilityMatcher {
	if calculator == nil {
		calculator = NewBenefitCalculator()
	}
	return &FacilityMatcher{calculator: calculator}
}

// Search returns every facility within the intent's radius of origin that offers
// all requested procedures. Results are stably sorted by cash total when the
// patient is explicitly uninsured, otherwise by distance.
func (m *FacilityMatcher) Search(intent *entities.ParsedIntent, origin entities.Location, catalog *entities.ReferenceCatalog) []entities.SearchResultEntry {
	procedures := uniqueProcedures(intent.Procedures)

	var plan *entities.Plan
	if intent.PricesWithInsurance() && intent.PlanID != "" {
		plan, _ = catalog.Plan(intent.InsurerID, intent.PlanID)
	}

	facilities := catalog.Facilities()
	results := make([]entities.SearchResultEntry, 0)
	for i := range facilities {
		f := &facilities[i]

		distance := geo.DistanceMiles(origin.Latitude, origin.Longitude, f.Location.Latitude, f.Location.Longitude)
		if distance > intent.RadiusMiles {
			continue
		}
		if !f.OffersAll(procedures) {
			continue
		}

		results = append(results, m.price(f, distance, procedures, intent, plan, catalog))
	}

	SortResults(results, intent.ExplicitNoInsurance)
	return results
}

func (m *FacilityMatcher) price(f *entities.Facility, distance float64, procedures []string, intent *entities.ParsedIntent, plan *entities.Plan, catalog *entities.ReferenceCatalog) entities.SearchResultEntry {
	inNetwork := intent.PricesWithInsurance() && f.AcceptsInsurer(intent.InsurerID)

	entry := entities.SearchResultEntry{
		Facility:      f.Summary(),
		DistanceMiles: distance,
		InNetwork:     inNetwork,
		Procedures:    make([]entities.ProcedurePrice, 0, len(procedures)),
	}
	if inNetwork && plan != nil {
		entry.Plan = plan
	}

	insuredTotal := 0.0
	fullyPriced := inNetwork
	for _, id := range procedures {
		charge, _ := f.Charge(id)
		price := entities.ProcedurePrice{
			ProcedureID:           id,
			ProcedureName:         id,
			PriceWithoutInsurance: charge.GrossCharge,
			Setting:               charge.Setting,
		}
		if p, ok := catalog.Procedure(id); ok && p.Name != "" {
			price.ProcedureName = p.Name
		}

		if inNetwork {
			negotiated, hasNegotiated := charge.NegotiatedFor(intent.InsurerID)
			switch {
			case entry.Plan != nil:
				base := charge.GrossCharge
				if hasNegotiated {
					base = negotiated
				}
				share := m.calculator.Share(base, entry.Plan.Benefits)
				price.PriceWithInsurance = &share.Total
				price.CostShare = &share
			case hasNegotiated:
				v := negotiated
				price.PriceWithInsurance = &v
			}
		}

		entry.PriceWithoutInsurance += price.PriceWithoutInsurance
		if price.PriceWithInsurance == nil {
			fullyPriced = false
		} else {
			insuredTotal += *price.PriceWithInsurance
		}
		entry.Procedures = append(entry.Procedures, price)
	}

	if fullyPriced {
		entry.PriceWithInsurance = &insuredTotal
	}
	return entry
}

// SortResults orders results in place by cash total or by distance. Ties keep their input order.
func SortResults(results []entities.SearchResultEntry, byCashPrice bool) {
	if byCashPrice {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].PriceWithoutInsurance < results[j].PriceWithoutInsurance
		})
		return
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceMiles < results[j].DistanceMiles
	})
}

func uniqueProcedures(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
