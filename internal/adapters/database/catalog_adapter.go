package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/internal/domain/repositories"
	"github.com/billharmony/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/billharmony/backend/pkg/errors"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

const (
	tableProcedures        = "procedures"
	tableProcedureCodes    = "procedure_codes"
	tableInsurers          = "insurers"
	tablePlans             = "plans"
	tableFacilities        = "facilities"
	tableFacilityCharges   = "facility_charges"
	tableNegotiatedCharges = "negotiated_charges"
	tableZipCodes          = "zip_codes"
	tablePrograms          = "assistance_programs"
)

// CatalogAdapter reads and writes the reference catalog in Postgres
type CatalogAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	logger zerolog.Logger
}

var (
	_ repositories.CatalogLoader = (*CatalogAdapter)(nil)
	_ repositories.CatalogWriter = (*CatalogAdapter)(nil)
)

// NewCatalogAdapter creates a new catalog adapter
func NewCatalogAdapter(client *postgres.Client, logger zerolog.Logger) *CatalogAdapter {
	return &CatalogAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		logger: logger.With().Str("component", "catalog_store").Logger(),
	}
}

// Load reads every catalog table and assembles a validated ReferenceCatalog
func (a *CatalogAdapter) Load(ctx context.Context) (*entities.ReferenceCatalog, error) {
	procedures, err := a.loadProcedures(ctx)
	if err != nil {
		return nil, err
	}
	insurers, err := a.loadInsurers(ctx)
	if err != nil {
		return nil, err
	}
	facilities, err := a.loadFacilities(ctx)
	if err != nil {
		return nil, err
	}
	zips, err := a.loadZips(ctx)
	if err != nil {
		return nil, err
	}
	programs, err := a.loadPrograms(ctx)
	if err != nil {
		return nil, err
	}

	catalog, err := entities.NewReferenceCatalog(procedures, insurers, facilities, zips, programs)
	if err != nil {
		return nil, fmt.Errorf("reference data: %w", err)
	}

	a.logger.Info().
		Int("procedures", len(procedures)).
		Int("insurers", len(insurers)).
		Int("facilities", len(facilities)).
		Msg("reference catalog loaded from postgres")
	return catalog, nil
}

func (a *CatalogAdapter) query(ctx context.Context, ds *goqu.SelectDataset) (*sql.Rows, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query catalog", err)
	}
	return rows, nil
}

func (a *CatalogAdapter) loadProcedures(ctx context.Context) ([]entities.Procedure, error) {
	rows, err := a.query(ctx, a.db.Select("id", "name", "category", "description").
		From(tableProcedures).Order(goqu.C("position").Asc()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var procedures []entities.Procedure
	for rows.Next() {
		var p entities.Procedure
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Description); err != nil {
			return nil, apperrors.NewInternalError("failed to scan procedure", err)
		}
		p.Codes = []entities.BillingCode{}
		procedures = append(procedures, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read procedures", err)
	}

	codeRows, err := a.query(ctx, a.db.Select("procedure_id", "code", "system").
		From(tableProcedureCodes).Order(goqu.C("procedure_id").Asc(), goqu.C("position").Asc()))
	if err != nil {
		return nil, err
	}
	defer codeRows.Close()

	byID := make(map[string]int, len(procedures))
	for i := range procedures {
		byID[procedures[i].ID] = i
	}
	for codeRows.Next() {
		var procID string
		var code entities.BillingCode
		if err := codeRows.Scan(&procID, &code.Code, &code.System); err != nil {
			return nil, apperrors.NewInternalError("failed to scan procedure code", err)
		}
		if i, ok := byID[procID]; ok {
			procedures[i].Codes = append(procedures[i].Codes, code)
		}
	}
	if err := codeRows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read procedure codes", err)
	}
	return procedures, nil
}

func (a *CatalogAdapter) loadInsurers(ctx context.Context) ([]entities.Insurer, error) {
	rows, err := a.query(ctx, a.db.Select("id", "name", "type", "payer_name").
		From(tableInsurers).Order(goqu.C("position").Asc()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var insurers []entities.Insurer
	for rows.Next() {
		var ins entities.Insurer
		if err := rows.Scan(&ins.ID, &ins.Name, &ins.Type, &ins.PayerName); err != nil {
			return nil, apperrors.NewInternalError("failed to scan insurer", err)
		}
		ins.Plans = []entities.Plan{}
		insurers = append(insurers, ins)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read insurers", err)
	}

	planRows, err := a.query(ctx, a.db.Select(
		"insurer_id", "id", "name", "network_type",
		"deductible", "copay", "coinsurance_percent", "out_of_pocket_max",
	).From(tablePlans).Order(goqu.C("insurer_id").Asc(), goqu.C("position").Asc()))
	if err != nil {
		return nil, err
	}
	defer planRows.Close()

	byID := make(map[string]int, len(insurers))
	for i := range insurers {
		byID[insurers[i].ID] = i
	}
	for planRows.Next() {
		var insurerID string
		var p entities.Plan
		if err := planRows.Scan(&insurerID, &p.ID, &p.Name, &p.NetworkType,
			&p.Benefits.Deductible, &p.Benefits.Copay, &p.Benefits.CoinsurancePercent, &p.Benefits.OutOfPocketMax); err != nil {
			return nil, apperrors.NewInternalError("failed to scan plan", err)
		}
		if i, ok := byID[insurerID]; ok {
			insurers[i].Plans = append(insurers[i].Plans, p)
		}
	}
	if err := planRows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read plans", err)
	}
	return insurers, nil
}

func (a *CatalogAdapter) loadFacilities(ctx context.Context) ([]entities.Facility, error) {
	rows, err := a.query(ctx, a.db.Select(
		"id", "name", "phone", "street", "city", "state", "zip_code",
		"latitude", "longitude", "in_network_insurers",
	).From(tableFacilities).Order(goqu.C("position").Asc()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facilities []entities.Facility
	for rows.Next() {
		var f entities.Facility
		var insurers []string
		if err := rows.Scan(&f.ID, &f.Name, &f.Phone,
			&f.Address.Street, &f.Address.City, &f.Address.State, &f.Address.ZipCode,
			&f.Location.Latitude, &f.Location.Longitude, pq.Array(&insurers)); err != nil {
			return nil, apperrors.NewInternalError("failed to scan facility", err)
		}
		if insurers == nil {
			insurers = []string{}
		}
		f.InNetworkInsurers = insurers
		f.Charges = make(map[string]entities.ChargeInfo)
		facilities = append(facilities, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read facilities", err)
	}

	byID := make(map[string]int, len(facilities))
	for i := range facilities {
		byID[facilities[i].ID] = i
	}

	chargeRows, err := a.query(ctx, a.db.Select("facility_id", "procedure_id", "gross_charge", "setting").
		From(tableFacilityCharges))
	if err != nil {
		return nil, err
	}
	defer chargeRows.Close()

	for chargeRows.Next() {
		var facilityID, procedureID, setting string
		var gross float64
		if err := chargeRows.Scan(&facilityID, &procedureID, &gross, &setting); err != nil {
			return nil, apperrors.NewInternalError("failed to scan facility charge", err)
		}
		if i, ok := byID[facilityID]; ok {
			facilities[i].Charges[procedureID] = entities.ChargeInfo{
				GrossCharge: gross,
				Setting:     entities.ParseCareSetting(setting),
				Negotiated:  make(map[string]float64),
			}
		}
	}
	if err := chargeRows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read facility charges", err)
	}

	negRows, err := a.query(ctx, a.db.Select("facility_id", "procedure_id", "insurer_id", "amount").
		From(tableNegotiatedCharges))
	if err != nil {
		return nil, err
	}
	defer negRows.Close()

	for negRows.Next() {
		var facilityID, procedureID, insurerID string
		var amount float64
		if err := negRows.Scan(&facilityID, &procedureID, &insurerID, &amount); err != nil {
			return nil, apperrors.NewInternalError("failed to scan negotiated charge", err)
		}
		i, ok := byID[facilityID]
		if !ok {
			continue
		}
		if charge, ok := facilities[i].Charges[procedureID]; ok {
			charge.Negotiated[insurerID] = amount
		}
	}
	if err := negRows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read negotiated charges", err)
	}
	return facilities, nil
}

func (a *CatalogAdapter) loadZips(ctx context.Context) ([]entities.ZipEntry, error) {
	rows, err := a.query(ctx, a.db.Select("zip_code", "city", "state", "latitude", "longitude").
		From(tableZipCodes).Order(goqu.C("zip_code").Asc()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zips []entities.ZipEntry
	for rows.Next() {
		var z entities.ZipEntry
		if err := rows.Scan(&z.ZipCode, &z.City, &z.State, &z.Location.Latitude, &z.Location.Longitude); err != nil {
			return nil, apperrors.NewInternalError("failed to scan zip code", err)
		}
		zips = append(zips, z)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read zip codes", err)
	}
	return zips, nil
}

func (a *CatalogAdapter) loadPrograms(ctx context.Context) ([]entities.AssistanceProgram, error) {
	rows, err := a.query(ctx, a.db.Select(
		"id", "name", "description", "coverage_type", "coverage_amount",
		"max_income_percent_of_fpl", "employment_statuses",
	).From(tablePrograms).Order(goqu.C("position").Asc()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var programs []entities.AssistanceProgram
	for rows.Next() {
		var p entities.AssistanceProgram
		var coverageType string
		var maxIncome sql.NullFloat64
		var statuses []string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &coverageType, &p.CoverageAmount,
			&maxIncome, pq.Array(&statuses)); err != nil {
			return nil, apperrors.NewInternalError("failed to scan assistance program", err)
		}
		p.CoverageType = entities.CoverageType(coverageType)
		if maxIncome.Valid {
			v := maxIncome.Float64
			p.Eligibility.MaxIncomePercentOfFPL = &v
		}
		if len(statuses) > 0 {
			p.Eligibility.EmploymentStatuses = statuses
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read assistance programs", err)
	}
	return programs, nil
}

// Save replaces the stored catalog with catalog in a single transaction
func (a *CatalogAdapter) Save(ctx context.Context, catalog *entities.ReferenceCatalog) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	truncate := fmt.Sprintf("TRUNCATE TABLE %s, %s, %s, %s, %s, %s, %s, %s, %s CASCADE",
		tableNegotiatedCharges, tableFacilityCharges, tableFacilities, tablePlans, tableInsurers,
		tableProcedureCodes, tableProcedures, tableZipCodes, tablePrograms)
	if _, err := tx.ExecContext(ctx, truncate); err != nil {
		return apperrors.NewInternalError("failed to clear catalog tables", err)
	}

	for _, batch := range catalogRecords(catalog) {
		if len(batch.rows) == 0 {
			continue
		}
		query, args, err := a.db.Insert(batch.table).Rows(batch.rows...).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewInternalError(fmt.Sprintf("failed to insert %s", batch.table), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit catalog", err)
	}

	a.logger.Info().
		Int("procedures", len(catalog.Procedures())).
		Int("insurers", len(catalog.Insurers())).
		Int("facilities", len(catalog.Facilities())).
		Msg("reference catalog saved to postgres")
	return nil
}

type recordBatch struct {
	table string
	rows  []interface{}
}

// catalogRecords flattens the catalog into per-table insert batches in
// foreign-key order
func catalogRecords(catalog *entities.ReferenceCatalog) []recordBatch {
	procedures := recordBatch{table: tableProcedures}
	codes := recordBatch{table: tableProcedureCodes}
	for i, p := range catalog.Procedures() {
		procedures.rows = append(procedures.rows, goqu.Record{
			"id": p.ID, "name": p.Name, "category": p.Category, "description": p.Description, "position": i,
		})
		for j, c := range p.Codes {
			codes.rows = append(codes.rows, goqu.Record{
				"procedure_id": p.ID, "code": c.Code, "system": c.System, "position": j,
			})
		}
	}

	insurers := recordBatch{table: tableInsurers}
	plans := recordBatch{table: tablePlans}
	for i, ins := range catalog.Insurers() {
		insurers.rows = append(insurers.rows, goqu.Record{
			"id": ins.ID, "name": ins.Name, "type": ins.Type, "payer_name": ins.PayerName, "position": i,
		})
		for j, p := range ins.Plans {
			plans.rows = append(plans.rows, goqu.Record{
				"insurer_id":          ins.ID,
				"id":                  p.ID,
				"name":                p.Name,
				"network_type":        p.NetworkType,
				"deductible":          p.Benefits.Deductible,
				"copay":               p.Benefits.Copay,
				"coinsurance_percent": p.Benefits.CoinsurancePercent,
				"out_of_pocket_max":   p.Benefits.OutOfPocketMax,
				"position":            j,
			})
		}
	}

	facilities := recordBatch{table: tableFacilities}
	charges := recordBatch{table: tableFacilityCharges}
	negotiated := recordBatch{table: tableNegotiatedCharges}
	for i, f := range catalog.Facilities() {
		facilities.rows = append(facilities.rows, goqu.Record{
			"id":                  f.ID,
			"name":                f.Name,
			"phone":               f.Phone,
			"street":              f.Address.Street,
			"city":                f.Address.City,
			"state":               f.Address.State,
			"zip_code":            f.Address.ZipCode,
			"latitude":            f.Location.Latitude,
			"longitude":           f.Location.Longitude,
			"in_network_insurers": pq.Array(f.InNetworkInsurers),
			"position":            i,
		})

		for _, procID := range sortedKeys(f.Charges) {
			charge := f.Charges[procID]
			charges.rows = append(charges.rows, goqu.Record{
				"facility_id": f.ID, "procedure_id": procID, "gross_charge": charge.GrossCharge, "setting": string(charge.Setting),
			})
			for _, insurerID := range sortedKeys(charge.Negotiated) {
				negotiated.rows = append(negotiated.rows, goqu.Record{
					"facility_id": f.ID, "procedure_id": procID, "insurer_id": insurerID, "amount": charge.Negotiated[insurerID],
				})
			}
		}
	}

	zips := recordBatch{table: tableZipCodes}
	for _, z := range catalog.Zips() {
		zips.rows = append(zips.rows, goqu.Record{
			"zip_code": z.ZipCode, "city": z.City, "state": z.State,
			"latitude": z.Location.Latitude, "longitude": z.Location.Longitude,
		})
	}

	programs := recordBatch{table: tablePrograms}
	for i, p := range catalog.Programs() {
		var maxIncome sql.NullFloat64
		if p.Eligibility.MaxIncomePercentOfFPL != nil {
			maxIncome = sql.NullFloat64{Float64: *p.Eligibility.MaxIncomePercentOfFPL, Valid: true}
		}
		statuses := p.Eligibility.EmploymentStatuses
		if statuses == nil {
			statuses = []string{}
		}
		programs.rows = append(programs.rows, goqu.Record{
			"id":                        p.ID,
			"name":                      p.Name,
			"description":               p.Description,
			"coverage_type":             string(p.CoverageType),
			"coverage_amount":           p.CoverageAmount,
			"max_income_percent_of_fpl": maxIncome,
			"employment_statuses":       pq.Array(statuses),
			"position":                  i,
		})
	}

	return []recordBatch{procedures, codes, insurers, plans, facilities, charges, negotiated, zips, programs}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
