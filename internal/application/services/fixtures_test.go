package services

import (
	"testing"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

// testCatalog builds a small Southern California catalog shared by service tests
func testCatalog(t *testing.T) *entities.ReferenceCatalog {
	t.Helper()

	procedures := []entities.Procedure{
		{ID: "MRI", Name: "MRI Brain without contrast", Category: "imaging", Codes: []entities.BillingCode{{Code: "70551", System: entities.CodeSystemCPT}}},
		{ID: "CT Scan", Name: "CT Chest without contrast", Category: "imaging", Codes: []entities.BillingCode{{Code: "71250", System: entities.CodeSystemCPT}}},
		{ID: "X-Ray", Name: "Chest X-Ray", Category: "imaging", Codes: []entities.BillingCode{{Code: "71046", System: entities.CodeSystemCPT}}},
		{ID: "Blood Test", Name: "Complete Blood Count", Category: "lab", Codes: []entities.BillingCode{{Code: "85025", System: entities.CodeSystemCPT}}},
		{ID: "Ultrasound", Name: "Abdominal Ultrasound", Category: "imaging", Codes: []entities.BillingCode{{Code: "76700", System: entities.CodeSystemCPT}}},
	}

	insurers := []entities.Insurer{
		{ID: "aetna", Name: "Aetna", Type: "PPO", PayerName: "Aetna", Plans: []entities.Plan{
			{ID: "aetna-basic", Name: "Aetna Basic", Benefits: entities.PlanBenefits{Deductible: 1000, Copay: 50, CoinsurancePercent: 20, OutOfPocketMax: 5000}},
			{ID: "aetna-gold", Name: "Aetna Gold", Benefits: entities.PlanBenefits{Deductible: 250, Copay: 25, CoinsurancePercent: 10, OutOfPocketMax: 2500}},
		}},
		{ID: "bluecross", Name: "Blue Cross Blue Shield", Type: "PPO", PayerName: "Blue Cross Blue Shield", Plans: []entities.Plan{
			{ID: "bcbs-premium", Name: "Blue Cross Premium", Benefits: entities.PlanBenefits{Deductible: 500, Copay: 30, CoinsurancePercent: 15, OutOfPocketMax: 4000}},
		}},
		{ID: "cigna", Name: "Cigna", Type: "HMO", PayerName: "Cigna"},
	}

	facilities := []entities.Facility{
		{
			ID: "cedars", Name: "Cedars-Sinai Medical Center",
			Address:           entities.Address{City: "Los Angeles", State: "CA", ZipCode: "90048"},
			Location:          entities.Location{Latitude: 34.0753, Longitude: -118.3804},
			InNetworkInsurers: []string{"aetna", "bluecross"},
			Charges: map[string]entities.ChargeInfo{
				"MRI":     {GrossCharge: 2500, Negotiated: map[string]float64{"aetna": 1800, "bluecross": 1900}, Setting: entities.CareSettingOutpatient},
				"CT Scan": {GrossCharge: 1500, Negotiated: map[string]float64{"aetna": 1100}, Setting: entities.CareSettingOutpatient},
			},
		},
		{
			ID: "ucla", Name: "UCLA Medical Center",
			Address:           entities.Address{City: "Los Angeles", State: "CA", ZipCode: "90095"},
			Location:          entities.Location{Latitude: 34.0659, Longitude: -118.4466},
			InNetworkInsurers: []string{"aetna"},
			Charges: map[string]entities.ChargeInfo{
				"MRI":     {GrossCharge: 2200, Negotiated: map[string]float64{"aetna": 1600}, Setting: entities.CareSettingOutpatient},
				"CT Scan": {GrossCharge: 1300, Setting: entities.CareSettingOutpatient},
			},
		},
		{
			ID: "scripps", Name: "Scripps Mercy Hospital",
			Address:           entities.Address{City: "San Diego", State: "CA", ZipCode: "92103"},
			Location:          entities.Location{Latitude: 32.7530, Longitude: -117.1660},
			InNetworkInsurers: []string{"cigna"},
			Charges: map[string]entities.ChargeInfo{
				"MRI": {GrossCharge: 1200, Negotiated: map[string]float64{"cigna": 900}, Setting: entities.CareSettingOutpatient},
			},
		},
		{
			ID: "huntington", Name: "Huntington Hospital",
			Address:           entities.Address{City: "Pasadena", State: "CA", ZipCode: "91105"},
			Location:          entities.Location{Latitude: 34.1336, Longitude: -118.1523},
			InNetworkInsurers: []string{"bluecross"},
			Charges: map[string]entities.ChargeInfo{
				"MRI":     {GrossCharge: 2500, Setting: entities.CareSettingOutpatient},
				"X-Ray":   {GrossCharge: 300, Negotiated: map[string]float64{"bluecross": 150}, Setting: entities.CareSettingOutpatient},
				"CT Scan": {GrossCharge: 1700, Setting: entities.CareSettingInpatient},
			},
		},
	}

	zips := []entities.ZipEntry{
		{ZipCode: "90210", City: "Beverly Hills", State: "CA", Location: entities.Location{Latitude: 34.0736, Longitude: -118.4004}},
		{ZipCode: "92103", City: "San Diego", State: "CA", Location: entities.Location{Latitude: 32.7157, Longitude: -117.1611}},
	}

	programs := []entities.AssistanceProgram{
		{ID: "full-charity", Name: "Full Charity Care", CoverageType: entities.CoverageFull,
			Eligibility: entities.EligibilityRule{MaxIncomePercentOfFPL: ptr(200)}},
		{ID: "sliding-scale", Name: "Sliding Scale Discount", CoverageType: entities.CoveragePercentage, CoverageAmount: 50,
			Eligibility: entities.EligibilityRule{MaxIncomePercentOfFPL: ptr(400)}},
		{ID: "hardship", Name: "Unemployment Hardship Grant", CoverageType: entities.CoverageFixed, CoverageAmount: 500,
			Eligibility: entities.EligibilityRule{EmploymentStatuses: []string{entities.EmploymentUnemployed}}},
	}

	c, err := entities.NewReferenceCatalog(procedures, insurers, facilities, zips, programs)
	require.NoError(t, err)
	return c
}
