package catalog

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// ChargeRow is one flattened (facility, procedure, payer) price. Procedures
// without any negotiated price produce a single row with an empty InsurerID.
type ChargeRow struct {
	FacilityID       string   `parquet:"facility_id"`
	FacilityName     string   `parquet:"facility_name"`
	City             string   `parquet:"city"`
	State            string   `parquet:"state"`
	ZipCode          string   `parquet:"zip_code"`
	Latitude         float64  `parquet:"latitude"`
	Longitude        float64  `parquet:"longitude"`
	ProcedureID      string   `parquet:"procedure_id"`
	ProcedureName    string   `parquet:"procedure_name"`
	BillingCode      string   `parquet:"billing_code"`
	Setting          string   `parquet:"setting"`
	GrossCharge      float64  `parquet:"gross_charge"`
	InsurerID        string   `parquet:"insurer_id"`
	NegotiatedCharge *float64 `parquet:"negotiated_charge,optional"`
	InNetwork        bool     `parquet:"in_network"`
}

const parquetFlushInterval = 10_000

// ChargeRows flattens the catalog's charge tables, sorted by facility,
// procedure, then insurer
func ChargeRows(catalog *entities.ReferenceCatalog) []ChargeRow {
	var rows []ChargeRow
	for _, f := range catalog.Facilities() {
		procIDs := make([]string, 0, len(f.Charges))
		for id := range f.Charges {
			procIDs = append(procIDs, id)
		}
		sort.Strings(procIDs)

		for _, procID := range procIDs {
			charge := f.Charges[procID]
			base := ChargeRow{
				FacilityID:   f.ID,
				FacilityName: f.Name,
				City:         f.Address.City,
				State:        f.Address.State,
				ZipCode:      f.Address.ZipCode,
				Latitude:     f.Location.Latitude,
				Longitude:    f.Location.Longitude,
				ProcedureID:  procID,
				Setting:      string(charge.Setting),
				GrossCharge:  charge.GrossCharge,
			}
			if p, ok := catalog.Procedure(procID); ok {
				base.ProcedureName = p.Name
				base.BillingCode = p.PrimaryCode()
			}

			if len(charge.Negotiated) == 0 {
				rows = append(rows, base)
				continue
			}

			insurers := make([]string, 0, len(charge.Negotiated))
			for id := range charge.Negotiated {
				insurers = append(insurers, id)
			}
			sort.Strings(insurers)
			for _, insurerID := range insurers {
				row := base
				v := charge.Negotiated[insurerID]
				row.InsurerID = insurerID
				row.NegotiatedCharge = &v
				row.InNetwork = f.AcceptsInsurer(insurerID)
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// ParquetExporter writes the catalog's charge tables as a Snappy-compressed Parquet file
type ParquetExporter struct {
	logger zerolog.Logger
}

// NewParquetExporter creates a new exporter
func NewParquetExporter(logger zerolog.Logger) *ParquetExporter {
	return &ParquetExporter{logger: logger.With().Str("component", "parquet_exporter").Logger()}
}

// Export writes every charge row to path and returns the row count
func (e *ParquetExporter) Export(ctx context.Context, catalog *entities.ReferenceCatalog, path string) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[ChargeRow](file,
		parquet.Compression(&parquet.Snappy),
		parquet.CreatedBy("billharmony", "1.0", ""),
	)

	rows := ChargeRows(catalog)
	written := 0
	for start := 0; start < len(rows); start += parquetFlushInterval {
		if err := ctx.Err(); err != nil {
			writer.Close()
			file.Close()
			return written, err
		}
		end := start + parquetFlushInterval
		if end > len(rows) {
			end = len(rows)
		}
		n, err := writer.Write(rows[start:end])
		written += n
		if err != nil {
			writer.Close()
			file.Close()
			return written, fmt.Errorf("write parquet rows: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		file.Close()
		return written, fmt.Errorf("close parquet writer: %w", err)
	}
	if err := file.Close(); err != nil {
		return written, err
	}

	e.logger.Info().Int("rows", written).Str("path", path).Msg("charge export complete")
	return written, nil
}
