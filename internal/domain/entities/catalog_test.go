package entities

import (
	"testing"

	apperrors "github.com/billharmony/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalog(t *testing.T) *ReferenceCatalog {
	t.Helper()

	procedures := []Procedure{
		{ID: "MRI", Name: "MRI Brain", Codes: []BillingCode{{Code: "70551", System: CodeSystemCPT}}},
		{ID: "CT Scan", Name: "CT Chest", Codes: []BillingCode{{Code: "71250", System: CodeSystemCPT}}},
	}
	insurers := []Insurer{
		{ID: "aetna", Name: "Aetna", Type: "PPO", PayerName: "Aetna", Plans: []Plan{
			{ID: "aetna-basic", Name: "Aetna Basic", Benefits: PlanBenefits{Deductible: 1000, Copay: 50, CoinsurancePercent: 20, OutOfPocketMax: 5000}},
			{ID: "aetna-gold", Name: "Aetna Gold", Benefits: PlanBenefits{Deductible: 250, Copay: 25, CoinsurancePercent: 10, OutOfPocketMax: 2500}},
		}},
	}
	facilities := []Facility{
		{ID: "h1", Name: "Cedars", Charges: map[string]ChargeInfo{"MRI": {GrossCharge: 2500}}},
	}
	zips := []ZipEntry{{ZipCode: "90210", Location: Location{Latitude: 34.0736, Longitude: -118.4004}}}

	c, err := NewReferenceCatalog(procedures, insurers, facilities, zips, nil)
	require.NoError(t, err)
	return c
}

func TestReferenceCatalog_Lookups(t *testing.T) {
	c := sampleCatalog(t)

	p, ok := c.ProcedureByCode("71250")
	require.True(t, ok)
	assert.Equal(t, "CT Scan", p.ID)

	_, ok = c.ProcedureByCode("99999")
	assert.False(t, ok)

	assert.Equal(t, []string{"MRI", "CT Scan"}, c.ProcedureIDs())

	ins, ok := c.InsurerByPayerName(" aetna ")
	require.True(t, ok)
	assert.Equal(t, "aetna", ins.ID)

	plan, ok := c.Plan("aetna", "aetna-gold")
	require.True(t, ok)
	assert.Equal(t, 250.0, plan.Benefits.Deductible)

	z, ok := c.Zip("90210")
	require.True(t, ok)
	assert.Equal(t, 34.0736, z.Location.Latitude)
}

func TestReferenceCatalog_RejectsInvalidBenefits(t *testing.T) {
	insurers := []Insurer{{ID: "bad", Plans: []Plan{{ID: "p", Benefits: PlanBenefits{CoinsurancePercent: 120}}}}}

	_, err := NewReferenceCatalog(nil, insurers, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestReferenceCatalog_RejectsNegativeGrossCharge(t *testing.T) {
	facilities := []Facility{{ID: "h1", Charges: map[string]ChargeInfo{"MRI": {GrossCharge: -1}}}}

	_, err := NewReferenceCatalog(nil, nil, facilities, nil, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestReferenceCatalog_RejectsDuplicateProcedure(t *testing.T) {
	procedures := []Procedure{{ID: "MRI"}, {ID: "MRI"}}

	_, err := NewReferenceCatalog(procedures, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestInsurer_PlanMatching(t *testing.T) {
	c := sampleCatalog(t)
	ins, _ := c.Insurer("aetna")

	plan, ok := ins.PlanMatching("GOLD")
	require.True(t, ok)
	assert.Equal(t, "aetna-gold", plan.ID)

	_, ok = ins.PlanMatching("elite")
	assert.False(t, ok)
}

func TestHouseholdProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile HouseholdProfile
		field   string
	}{
		{"valid", HouseholdProfile{Income: 0, FamilySize: 1, EmploymentStatus: "unemployed"}, ""},
		{"negative income", HouseholdProfile{Income: -1, FamilySize: 1, EmploymentStatus: "employed"}, "household_income"},
		{"zero family", HouseholdProfile{Income: 100, FamilySize: 0, EmploymentStatus: "employed"}, "family_size"},
		{"no employment", HouseholdProfile{Income: 100, FamilySize: 2}, "employment_status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestAssistanceProgram_AssistanceFor(t *testing.T) {
	assert.Equal(t, 1200.0, AssistanceProgram{CoverageType: CoverageFull}.AssistanceFor(1200))
	assert.Equal(t, 600.0, AssistanceProgram{CoverageType: CoveragePercentage, CoverageAmount: 50}.AssistanceFor(1200))
	assert.Equal(t, 500.0, AssistanceProgram{CoverageType: CoverageFixed, CoverageAmount: 500}.AssistanceFor(1200))
	assert.Equal(t, 300.0, AssistanceProgram{CoverageType: CoverageFixed, CoverageAmount: 500}.AssistanceFor(300))
	assert.Equal(t, 0.0, AssistanceProgram{CoverageType: "unknown"}.AssistanceFor(300))
}

func TestUserProfile_LocationToken(t *testing.T) {
	assert.Equal(t, "90210", (&UserProfile{ZipCode: "90210", City: "Beverly Hills", State: "CA"}).LocationToken())
	assert.Equal(t, "Pasadena, CA", (&UserProfile{City: "Pasadena", State: "CA"}).LocationToken())
	assert.Equal(t, "", (&UserProfile{City: "Pasadena"}).LocationToken())

	var nilProfile *UserProfile
	assert.Equal(t, "", nilProfile.LocationToken())
}
