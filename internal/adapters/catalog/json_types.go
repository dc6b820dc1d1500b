package catalog

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// flexibleFloat accepts a JSON number or a numeric string such as "2,450.00".
// Anything else leaves Value nil.
type flexibleFloat struct {
	Value *float64
}

func (f *flexibleFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.Value = &num
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		cleaned := strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(str), "$"), ",", "")
		if cleaned == "" {
			return nil
		}
		num, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			// Non-numeric strings such as "full" are handled by the caller.
			return nil
		}
		f.Value = &num
	}
	return nil
}

// positive returns the value when it is set and greater than zero
func (f *flexibleFloat) positive() (float64, bool) {
	if f == nil || f.Value == nil || *f.Value <= 0 {
		return 0, false
	}
	return *f.Value, true
}

type jsonCode struct {
	Code string `json:"code"`
	Type string `json:"type"`
}

type jsonProcedure struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	CodeInformation []jsonCode `json:"code_information"`
}

type jsonBenefits struct {
	Deductible     float64 `json:"deductible"`
	Copay          float64 `json:"copay"`
	Coinsurance    float64 `json:"coinsurance"`
	OutOfPocketMax float64 `json:"outOfPocketMax"`
}

type jsonPlan struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	NetworkType string       `json:"networkType"`
	Benefits    jsonBenefits `json:"benefits"`
}

type jsonInsurer struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	PayerName string     `json:"payer_name"`
	Plans     []jsonPlan `json:"plans"`
}

type jsonCoordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type jsonAddress struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

type jsonPayerCharge struct {
	PayerName              string         `json:"payer_name"`
	PlanName               string         `json:"plan_name"`
	StandardCharge         *flexibleFloat `json:"standard_charge"`
	EstimatedAllowedAmount *flexibleFloat `json:"estimated_allowed_amount"`
}

type jsonStandardCharges struct {
	GrossCharge                    *flexibleFloat    `json:"gross_charge"`
	DiscountedCashPrice            *flexibleFloat    `json:"discounted_cash_price"`
	PayerSpecificNegotiatedCharges []jsonPayerCharge `json:"payer_specific_negotiated_charges"`
}

type jsonChargeInformation struct {
	Description     string              `json:"description"`
	CodeInformation []jsonCode          `json:"code_information"`
	Setting         string              `json:"setting"`
	StandardCharges jsonStandardCharges `json:"standard_charges"`
}

type jsonLegacyPrice struct {
	WithInsurance    map[string]float64 `json:"withInsurance"`
	WithoutInsurance float64            `json:"withoutInsurance"`
}

// jsonHospital covers both the CMS price transparency shape
// (hospital_id, standard_charge_information) and the legacy shape
// (id, procedures keyed by procedure ID).
type jsonHospital struct {
	HospitalID          string          `json:"hospital_id"`
	ID                  string          `json:"id"`
	HospitalName        string          `json:"hospital_name"`
	Name                string          `json:"name"`
	HospitalAddress     string          `json:"hospital_address"`
	Address             *jsonAddress    `json:"address"`
	Coordinates         jsonCoordinates `json:"coordinates"`
	Phone               string          `json:"phone"`
	InNetworkInsurances []string        `json:"in_network_insurances"`
	InNetworkLegacy     []string        `json:"inNetworkInsurances"`

	StandardChargeInformation []jsonChargeInformation    `json:"standard_charge_information"`
	Procedures                map[string]jsonLegacyPrice `json:"procedures"`
}

type jsonZip struct {
	City  string  `json:"city"`
	State string  `json:"state"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

type jsonEligibility struct {
	MaxIncomePercentOfFPL *float64 `json:"maxIncomePercentOfFPL"`
	EmploymentStatus      []string `json:"employmentStatus"`
}

type jsonProgram struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	EligibilityCriteria jsonEligibility `json:"eligibilityCriteria"`
	// CoverageAmount is a number or the string "full"
	CoverageAmount flexibleFloat `json:"coverageAmount"`
	CoverageType   string        `json:"coverageType"`
}
