package entities

import apperrors "github.com/billharmony/backend/pkg/errors"

// CareSetting is where a procedure is performed
type CareSetting string

const (
	CareSettingInpatient  CareSetting = "inpatient"
	CareSettingOutpatient CareSetting = "outpatient"
)

// ParseCareSetting maps free-form setting values to a CareSetting; anything but "inpatient" is outpatient
func ParseCareSetting(s string) CareSetting {
	if s == string(CareSettingInpatient) {
		return CareSettingInpatient
	}
	return CareSettingOutpatient
}

// ChargeInfo is the price data a facility publishes for one procedure.
// A missing Negotiated entry means the price for that payer is unknown, not zero.
type ChargeInfo struct {
	GrossCharge float64            `json:"gross_charge"`
	Negotiated  map[string]float64 `json:"negotiated,omitempty"`
	Setting     CareSetting        `json:"setting"`
}

// Validate enforces a non-negative gross charge
func (c ChargeInfo) Validate() error {
	if c.GrossCharge < 0 {
		return apperrors.NewFieldValidationError("gross_charge", "gross charge must be >= 0")
	}
	return nil
}

// NegotiatedFor returns the contracted price for an insurer, if published
func (c ChargeInfo) NegotiatedFor(insurerID string) (float64, bool) {
	v, ok := c.Negotiated[insurerID]
	return v, ok
}

// Facility represents a hospital or imaging center in the reference catalog
type Facility struct {
	ID                string                `json:"id" db:"id"`
	Name              string                `json:"name" db:"name"`
	Phone             string                `json:"phone,omitempty" db:"phone"`
	Address           Address               `json:"address" db:"-"`
	Location          Location              `json:"location" db:"-"`
	InNetworkInsurers []string              `json:"in_network_insurers" db:"-"`
	Charges           map[string]ChargeInfo `json:"charges,omitempty" db:"-"`
}

// Address represents a physical address
type Address struct {
	Street  string `json:"street" db:"street"`
	City    string `json:"city" db:"city"`
	State   string `json:"state" db:"state"`
	ZipCode string `json:"zip_code" db:"zip_code"`
}

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// FacilitySummary is the facility projection returned alongside search results
type FacilitySummary struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Phone             string   `json:"phone,omitempty"`
	Address           Address  `json:"address"`
	Location          Location `json:"location"`
	InNetworkInsurers []string `json:"in_network_insurers"`
}

// AcceptsInsurer reports whether insurerID is in the facility's network list
func (f *Facility) AcceptsInsurer(insurerID string) bool {
	if insurerID == "" {
		return false
	}
	for _, id := range f.InNetworkInsurers {
		if id == insurerID {
			return true
		}
	}
	return false
}

// Charge returns the charge data for a procedure
func (f *Facility) Charge(procedureID string) (ChargeInfo, bool) {
	c, ok := f.Charges[procedureID]
	return c, ok
}

// OffersAll reports whether the facility has charge data for every procedure
func (f *Facility) OffersAll(procedureIDs []string) bool {
	for _, id := range procedureIDs {
		if _, ok := f.Charges[id]; !ok {
			return false
		}
	}
	return true
}

// Summary projects the facility without its charge table
func (f *Facility) Summary() FacilitySummary {
	return FacilitySummary{
		ID:                f.ID,
		Name:              f.Name,
		Phone:             f.Phone,
		Address:           f.Address,
		Location:          f.Location,
		InNetworkInsurers: f.InNetworkInsurers,
	}
}
