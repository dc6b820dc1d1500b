package services

import (
	"testing"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var beverlyHills = entities.Location{Latitude: 34.0736, Longitude: -118.4004}

func facilityIDs(results []entities.SearchResultEntry) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Facility.ID
	}
	return ids
}

func TestSearch_CashQuerySortsByCashTotal(t *testing.T) {
	catalog := testCatalog(t)
	matcher := NewFacilityMatcher(nil)

	intent := &entities.ParsedIntent{
		Procedures:          []string{"MRI", "CT Scan"},
		ExplicitNoInsurance: true,
		RadiusMiles:         50,
	}
	results := matcher.Search(intent, beverlyHills, catalog)

	require.Equal(t, []string{"ucla", "cedars", "huntington"}, facilityIDs(results))
	assert.Equal(t, 3500.0, results[0].PriceWithoutInsurance)
	assert.Equal(t, 4000.0, results[1].PriceWithoutInsurance)
	assert.Equal(t, 4200.0, results[2].PriceWithoutInsurance)
	for _, r := range results {
		assert.False(t, r.InNetwork)
		assert.Nil(t, r.PriceWithInsurance)
		for _, p := range r.Procedures {
			assert.Nil(t, p.PriceWithInsurance)
		}
	}
}

func TestSearch_InsuredWithoutPlanUsesNegotiatedRates(t *testing.T) {
	catalog := testCatalog(t)
	matcher := NewFacilityMatcher(nil)

	intent := &entities.ParsedIntent{Procedures: []string{"MRI"}, InsurerID: "aetna", RadiusMiles: 100}
	results := matcher.Search(intent, beverlyHills, catalog)

	require.Equal(t, []string{"cedars", "ucla", "huntington"}, facilityIDs(results))

	require.NotNil(t, results[0].PriceWithInsurance)
	assert.Equal(t, 1800.0, *results[0].PriceWithInsurance)
	assert.True(t, results[0].InNetwork)
	assert.Equal(t, "MRI Brain without contrast", results[0].Procedures[0].ProcedureName)

	require.NotNil(t, results[1].PriceWithInsurance)
	assert.Equal(t, 1600.0, *results[1].PriceWithInsurance)

	assert.False(t, results[2].InNetwork)
	assert.Nil(t, results[2].PriceWithInsurance)
	assert.Equal(t, 2500.0, results[2].PriceWithoutInsurance)
}

func TestSearch_PlanAppliesBenefits(t *testing.T) {
	catalog := testCatalog(t)
	matcher := NewFacilityMatcher(nil)

	intent := &entities.ParsedIntent{
		Procedures:  []string{"MRI", "CT Scan"},
		InsurerID:   "aetna",
		PlanID:      "aetna-basic",
		RadiusMiles: 10,
	}
	results := matcher.Search(intent, beverlyHills, catalog)
	require.Equal(t, []string{"cedars", "ucla"}, facilityIDs(results))

	cedars := results[0]
	require.NotNil(t, cedars.Plan)
	assert.Equal(t, "aetna-basic", cedars.Plan.ID)
	// MRI negotiated 1800: 1000 + 50 + round(750*0.2)
	require.NotNil(t, cedars.Procedures[0].PriceWithInsurance)
	assert.Equal(t, 1200.0, *cedars.Procedures[0].PriceWithInsurance)
	require.NotNil(t, cedars.Procedures[0].CostShare)
	assert.Equal(t, 1800.0, cedars.Procedures[0].CostShare.BasePrice)
	// CT negotiated 1100: 1000 + 50 + round(50*0.2)
	assert.Equal(t, 1060.0, *cedars.Procedures[1].PriceWithInsurance)
	require.NotNil(t, cedars.PriceWithInsurance)
	assert.Equal(t, 2260.0, *cedars.PriceWithInsurance)

	ucla := results[1]
	// CT has no negotiated rate, so benefits apply to gross 1300
	assert.Equal(t, 1300.0, ucla.Procedures[1].CostShare.BasePrice)
	assert.Equal(t, 1100.0, *ucla.Procedures[1].PriceWithInsurance)
}

func TestSearch_InsuredTotalIsNullWhenAnyProcedureUnpriced(t *testing.T) {
	catalog := testCatalog(t)
	matcher := NewFacilityMatcher(nil)

	intent := &entities.ParsedIntent{Procedures: []string{"MRI", "CT Scan"}, InsurerID: "aetna", RadiusMiles: 10}
	results := matcher.Search(intent, beverlyHills, catalog)
	require.Equal(t, []string{"cedars", "ucla"}, facilityIDs(results))

	ucla := results[1]
	require.NotNil(t, ucla.Procedures[0].PriceWithInsurance)
	assert.Nil(t, ucla.Procedures[1].PriceWithInsurance)
	assert.Nil(t, ucla.PriceWithInsurance)
	assert.Equal(t, 3500.0, ucla.PriceWithoutInsurance)
}

func TestSearch_UnknownPlanFallsBackToNegotiated(t *testing.T) {
	catalog := testCatalog(t)
	matcher := NewFacilityMatcher(nil)

	intent := &entities.ParsedIntent{Procedures: []string{"MRI"}, InsurerID: "aetna", PlanID: "bcbs-premium", RadiusMiles: 2}
	results := matcher.Search(intent, beverlyHills, catalog)

	require.Equal(t, []string{"cedars"}, facilityIDs(results))
	assert.Nil(t, results[0].Plan)
	assert.Equal(t, 1800.0, *results[0].PriceWithInsurance)
}

func TestSearch_ResultsRespectRadiusAndCoverage(t *testing.T) {
	catalog := testCatalog(t)
	matcher := NewFacilityMatcher(nil)

	for _, radius := range []float64{1, 2, 5, 20, 150, 500} {
		for _, procs := range [][]string{{"MRI"}, {"MRI", "CT Scan"}, {"X-Ray"}, {"Ultrasound"}} {
			intent := &entities.ParsedIntent{Procedures: procs, InsurerID: "bluecross", RadiusMiles: radius}
			for _, r := range matcher.Search(intent, beverlyHills, catalog) {
				assert.LessOrEqual(t, r.DistanceMiles, radius)
				f, ok := catalog.Facility(r.Facility.ID)
				require.True(t, ok)
				assert.True(t, f.OffersAll(procs))
				assert.Len(t, r.Procedures, len(procs))
			}
		}
	}
}

func TestSearch_DuplicateProceduresPricedOnce(t *testing.T) {
	catalog := testCatalog(t)
	matcher := NewFacilityMatcher(nil)

	intent := &entities.ParsedIntent{Procedures: []string{"MRI", "MRI"}, ExplicitNoInsurance: true, RadiusMiles: 2}
	results := matcher.Search(intent, beverlyHills, catalog)

	require.Len(t, results, 1)
	assert.Equal(t, 2500.0, results[0].PriceWithoutInsurance)
}

func TestSortResults_StableAndIdempotent(t *testing.T) {
	results := []entities.SearchResultEntry{
		{Facility: entities.FacilitySummary{ID: "a"}, DistanceMiles: 5, PriceWithoutInsurance: 300},
		{Facility: entities.FacilitySummary{ID: "b"}, DistanceMiles: 1, PriceWithoutInsurance: 300},
		{Facility: entities.FacilitySummary{ID: "c"}, DistanceMiles: 5, PriceWithoutInsurance: 100},
	}

	SortResults(results, true)
	assert.Equal(t, []string{"c", "a", "b"}, facilityIDs(results))
	SortResults(results, true)
	assert.Equal(t, []string{"c", "a", "b"}, facilityIDs(results))

	SortResults(results, false)
	assert.Equal(t, []string{"b", "c", "a"}, facilityIDs(results))
	SortResults(results, false)
	assert.Equal(t, []string{"b", "c", "a"}, facilityIDs(results))
}
