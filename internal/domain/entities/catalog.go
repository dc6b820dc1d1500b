package entities

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/billharmony/backend/pkg/errors"
)

// ZipEntry maps a zip code to a coordinate
type ZipEntry struct {
	ZipCode  string   `json:"zip_code" db:"zip_code"`
	City     string   `json:"city,omitempty" db:"city"`
	State    string   `json:"state,omitempty" db:"state"`
	Location Location `json:"location" db:"-"`
}

// ReferenceCatalog is the immutable reference data every search runs against.
// It is built once at startup and shared read-only between requests; callers
// must not mutate the slices or maps it returns.
type ReferenceCatalog struct {
	procedures []Procedure
	insurers   []Insurer
	facilities []Facility
	programs   []AssistanceProgram
	zips       map[string]ZipEntry

	procedureByID   map[string]int
	procedureByCode map[string]int
	insurerByID     map[string]int
	insurerByPayer  map[string]int
	facilityByID    map[string]int
}

// NewReferenceCatalog validates the reference data and builds lookup indexes
func NewReferenceCatalog(procedures []Procedure, insurers []Insurer, facilities []Facility, zips []ZipEntry, programs []AssistanceProgram) (*ReferenceCatalog, error) {
	c := &ReferenceCatalog{
		procedures:      procedures,
		insurers:        insurers,
		facilities:      facilities,
		programs:        programs,
		zips:            make(map[string]ZipEntry, len(zips)),
		procedureByID:   make(map[string]int, len(procedures)),
		procedureByCode: make(map[string]int),
		insurerByID:     make(map[string]int, len(insurers)),
		insurerByPayer:  make(map[string]int, len(insurers)),
		facilityByID:    make(map[string]int, len(facilities)),
	}

	for i, p := range procedures {
		if p.ID == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("procedure at index %d: missing id", i))
		}
		if _, dup := c.procedureByID[p.ID]; dup {
			return nil, apperrors.NewValidationError(fmt.Sprintf("duplicate procedure id %q", p.ID))
		}
		c.procedureByID[p.ID] = i
		for _, code := range p.Codes {
			if _, taken := c.procedureByCode[code.Code]; !taken {
				c.procedureByCode[code.Code] = i
			}
		}
	}

	for i := range insurers {
		ins := &insurers[i]
		if err := ins.Validate(); err != nil {
			return nil, err
		}
		c.insurerByID[ins.ID] = i
		if ins.PayerName != "" {
			c.insurerByPayer[strings.ToLower(ins.PayerName)] = i
		}
	}

	for i := range facilities {
		f := &facilities[i]
		if _, dup := c.facilityByID[f.ID]; dup {
			return nil, apperrors.NewValidationError(fmt.Sprintf("duplicate facility id %q", f.ID))
		}
		for procID, charge := range f.Charges {
			if err := charge.Validate(); err != nil {
				return nil, fmt.Errorf("facility %s procedure %s: %w", f.ID, procID, err)
			}
		}
		c.facilityByID[f.ID] = i
	}

	for _, z := range zips {
		c.zips[z.ZipCode] = z
	}

	return c, nil
}

// Procedures returns all procedures in catalog order
func (c *ReferenceCatalog) Procedures() []Procedure {
	return c.procedures
}

// ProcedureIDs returns every procedure identifier in catalog order
func (c *ReferenceCatalog) ProcedureIDs() []string {
	ids := make([]string, len(c.procedures))
	for i, p := range c.procedures {
		ids[i] = p.ID
	}
	return ids
}

// Procedure looks up a procedure by identifier
func (c *ReferenceCatalog) Procedure(id string) (*Procedure, bool) {
	i, ok := c.procedureByID[id]
	if !ok {
		return nil, false
	}
	return &c.procedures[i], true
}

// ProcedureByCode looks up a procedure by exact billing code
func (c *ReferenceCatalog) ProcedureByCode(code string) (*Procedure, bool) {
	i, ok := c.procedureByCode[code]
	if !ok {
		return nil, false
	}
	return &c.procedures[i], true
}

// Insurers returns all insurers in catalog order
func (c *ReferenceCatalog) Insurers() []Insurer {
	return c.insurers
}

// Insurer looks up an insurer by identifier
func (c *ReferenceCatalog) Insurer(id string) (*Insurer, bool) {
	i, ok := c.insurerByID[id]
	if !ok {
		return nil, false
	}
	return &c.insurers[i], true
}

// InsurerByPayerName maps a price-file payer name to an insurer
func (c *ReferenceCatalog) InsurerByPayerName(name string) (*Insurer, bool) {
	i, ok := c.insurerByPayer[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return &c.insurers[i], true
}

// Plan resolves an insurer's plan
func (c *ReferenceCatalog) Plan(insurerID, planID string) (*Plan, bool) {
	ins, ok := c.Insurer(insurerID)
	if !ok || planID == "" {
		return nil, false
	}
	return ins.Plan(planID)
}

// Facilities returns all facilities in catalog order
func (c *ReferenceCatalog) Facilities() []Facility {
	return c.facilities
}

// Facility looks up a facility by identifier
func (c *ReferenceCatalog) Facility(id string) (*Facility, bool) {
	i, ok := c.facilityByID[id]
	if !ok {
		return nil, false
	}
	return &c.facilities[i], true
}

// Programs returns the assistance program table
func (c *ReferenceCatalog) Programs() []AssistanceProgram {
	return c.programs
}

// Zip looks up a zip code
func (c *ReferenceCatalog) Zip(zip string) (ZipEntry, bool) {
	z, ok := c.zips[zip]
	return z, ok
}

// Zips returns the zip table sorted by zip code
func (c *ReferenceCatalog) Zips() []ZipEntry {
	out := make([]ZipEntry, 0, len(c.zips))
	for _, z := range c.zips {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZipCode < out[j].ZipCode })
	return out
}
