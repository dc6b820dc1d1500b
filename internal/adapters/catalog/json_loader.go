package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/internal/domain/repositories"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Reference data file names inside the data directory
const (
	ProceduresFile = "procedures.json"
	InsurersFile   = "insurances.json"
	HospitalsFile  = "hospitals.json"
	ZipCodesFile   = "zipCodes.json"
	ProgramsFile   = "charityPrograms.json"
)

// JSONLoader builds the reference catalog from JSON files on disk. Hospitals
// may be published in the CMS standard charge shape or the legacy shape; both
// are normalized into Facility charge tables.
type JSONLoader struct {
	dataDir string
	logger  zerolog.Logger
}

// NewJSONLoader creates a new loader reading from dataDir
func NewJSONLoader(dataDir string, logger zerolog.Logger) repositories.CatalogLoader {
	return &JSONLoader{
		dataDir: dataDir,
		logger:  logger.With().Str("component", "catalog_loader").Logger(),
	}
}

// Load reads and validates every reference file
func (l *JSONLoader) Load(ctx context.Context) (*entities.ReferenceCatalog, error) {
	var (
		rawProcedures []jsonProcedure
		rawInsurers   []jsonInsurer
		rawHospitals  []jsonHospital
		rawZips       map[string]jsonZip
		rawPrograms   []jsonProgram
	)

	if err := l.readFile(ProceduresFile, &rawProcedures, true); err != nil {
		return nil, err
	}
	if err := l.readFile(InsurersFile, &rawInsurers, true); err != nil {
		return nil, err
	}
	if err := l.readFile(HospitalsFile, &rawHospitals, true); err != nil {
		return nil, err
	}
	if err := l.readFile(ZipCodesFile, &rawZips, false); err != nil {
		return nil, err
	}
	if err := l.readFile(ProgramsFile, &rawPrograms, false); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	procedures := normalizeProcedures(rawProcedures)
	insurers := normalizeInsurers(rawInsurers)

	// A partial catalog gives the hospital normalizer code and payer lookups.
	lookup, err := entities.NewReferenceCatalog(procedures, insurers, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("reference data: %w", err)
	}

	facilities := make([]entities.Facility, 0, len(rawHospitals))
	for _, h := range rawHospitals {
		facilities = append(facilities, l.normalizeHospital(h, lookup))
	}

	catalog, err := entities.NewReferenceCatalog(procedures, insurers, facilities, normalizeZips(rawZips), normalizePrograms(rawPrograms))
	if err != nil {
		return nil, fmt.Errorf("reference data: %w", err)
	}

	l.logger.Info().
		Int("procedures", len(procedures)).
		Int("insurers", len(insurers)).
		Int("facilities", len(facilities)).
		Int("zip_codes", len(rawZips)).
		Int("programs", len(rawPrograms)).
		Str("data_dir", l.dataDir).
		Msg("reference catalog loaded")

	return catalog, nil
}

func (l *JSONLoader) readFile(name string, dst interface{}, required bool) error {
	path := filepath.Join(l.dataDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn().Str("file", path).Msg("optional reference file missing")
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func normalizeProcedures(raw []jsonProcedure) []entities.Procedure {
	out := make([]entities.Procedure, 0, len(raw))
	for _, p := range raw {
		proc := entities.Procedure{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Codes:       make([]entities.BillingCode, 0, len(p.CodeInformation)),
		}
		for _, c := range p.CodeInformation {
			proc.Codes = append(proc.Codes, entities.BillingCode{Code: strings.TrimSpace(c.Code), System: strings.ToUpper(c.Type)})
		}
		out = append(out, proc)
	}
	return out
}

func normalizeInsurers(raw []jsonInsurer) []entities.Insurer {
	out := make([]entities.Insurer, 0, len(raw))
	for _, ins := range raw {
		insurer := entities.Insurer{
			ID:        ins.ID,
			Name:      ins.Name,
			Type:      ins.Type,
			PayerName: ins.PayerName,
			Plans:     make([]entities.Plan, 0, len(ins.Plans)),
		}
		if insurer.PayerName == "" {
			insurer.PayerName = ins.Name
		}
		for _, p := range ins.Plans {
			insurer.Plans = append(insurer.Plans, entities.Plan{
				ID:          p.ID,
				Name:        p.Name,
				NetworkType: p.NetworkType,
				Benefits: entities.PlanBenefits{
					Deductible:         p.Benefits.Deductible,
					Copay:              p.Benefits.Copay,
					CoinsurancePercent: p.Benefits.Coinsurance,
					OutOfPocketMax:     p.Benefits.OutOfPocketMax,
				},
			})
		}
		out = append(out, insurer)
	}
	return out
}

func (l *JSONLoader) normalizeHospital(h jsonHospital, lookup *entities.ReferenceCatalog) entities.Facility {
	f := entities.Facility{
		ID:                firstNonEmpty(h.HospitalID, h.ID),
		Name:              firstNonEmpty(h.HospitalName, h.Name),
		Phone:             h.Phone,
		Location:          entities.Location{Latitude: h.Coordinates.Lat, Longitude: h.Coordinates.Lng},
		InNetworkInsurers: h.InNetworkInsurances,
		Charges:           make(map[string]entities.ChargeInfo),
	}
	if len(f.InNetworkInsurers) == 0 {
		f.InNetworkInsurers = h.InNetworkLegacy
	}
	if f.InNetworkInsurers == nil {
		f.InNetworkInsurers = []string{}
	}

	switch {
	case h.Address != nil:
		f.Address = entities.Address{Street: h.Address.Street, City: h.Address.City, State: h.Address.State, ZipCode: h.Address.Zip}
	case h.HospitalAddress != "":
		f.Address = parseAddressLine(h.HospitalAddress)
	}

	log := l.logger.With().Str("facility_id", f.ID).Logger()

	for _, info := range h.StandardChargeInformation {
		if len(info.CodeInformation) == 0 {
			continue
		}
		code := strings.TrimSpace(info.CodeInformation[0].Code)
		proc, ok := lookup.ProcedureByCode(code)
		if !ok {
			log.Debug().Str("code", code).Msg("skipping charge with unknown billing code")
			continue
		}
		if _, seen := f.Charges[proc.ID]; seen {
			continue
		}

		charge := entities.ChargeInfo{
			Setting:    entities.ParseCareSetting(info.Setting),
			Negotiated: make(map[string]float64),
		}
		if v, ok := info.StandardCharges.GrossCharge.positive(); ok {
			charge.GrossCharge = v
		} else if v, ok := info.StandardCharges.DiscountedCashPrice.positive(); ok {
			charge.GrossCharge = v
		}

		for _, payer := range info.StandardCharges.PayerSpecificNegotiatedCharges {
			insurer, ok := lookup.InsurerByPayerName(payer.PayerName)
			if !ok {
				log.Debug().Str("payer", payer.PayerName).Msg("skipping negotiated charge for unknown payer")
				continue
			}
			if v, ok := payer.StandardCharge.positive(); ok {
				charge.Negotiated[insurer.ID] = v
			} else if v, ok := payer.EstimatedAllowedAmount.positive(); ok {
				charge.Negotiated[insurer.ID] = v
			}
		}
		f.Charges[proc.ID] = charge
	}

	for procID, price := range h.Procedures {
		if _, ok := lookup.Procedure(procID); !ok {
			log.Debug().Str("procedure", procID).Msg("skipping legacy price for unknown procedure")
			continue
		}
		if _, seen := f.Charges[procID]; seen {
			continue
		}
		charge := entities.ChargeInfo{
			GrossCharge: price.WithoutInsurance,
			Setting:     entities.CareSettingOutpatient,
			Negotiated:  make(map[string]float64, len(price.WithInsurance)),
		}
		for insurerID, v := range price.WithInsurance {
			if v > 0 {
				charge.Negotiated[insurerID] = v
			}
		}
		f.Charges[procID] = charge
	}

	return f
}

// parseAddressLine splits "street, city, ST 12345"; anything else becomes the street
func parseAddressLine(line string) entities.Address {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 {
		return entities.Address{Street: strings.TrimSpace(line)}
	}

	addr := entities.Address{
		Street: strings.Join(parts[:len(parts)-2], ", "),
		City:   parts[len(parts)-2],
	}
	stateZip := strings.Fields(parts[len(parts)-1])
	if len(stateZip) > 0 {
		addr.State = stateZip[0]
	}
	if len(stateZip) > 1 {
		addr.ZipCode = stateZip[1]
	}
	return addr
}

func normalizeZips(raw map[string]jsonZip) []entities.ZipEntry {
	out := make([]entities.ZipEntry, 0, len(raw))
	for zip, z := range raw {
		out = append(out, entities.ZipEntry{
			ZipCode:  zip,
			City:     z.City,
			State:    z.State,
			Location: entities.Location{Latitude: z.Lat, Longitude: z.Lng},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZipCode < out[j].ZipCode })
	return out
}

func normalizePrograms(raw []jsonProgram) []entities.AssistanceProgram {
	out := make([]entities.AssistanceProgram, 0, len(raw))
	for _, p := range raw {
		program := entities.AssistanceProgram{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			CoverageType: entities.CoverageType(strings.ToLower(p.CoverageType)),
			Eligibility: entities.EligibilityRule{
				MaxIncomePercentOfFPL: p.EligibilityCriteria.MaxIncomePercentOfFPL,
				EmploymentStatuses:    p.EligibilityCriteria.EmploymentStatus,
			},
		}
		if p.CoverageAmount.Value != nil {
			program.CoverageAmount = *p.CoverageAmount.Value
		}
		out = append(out, program)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
