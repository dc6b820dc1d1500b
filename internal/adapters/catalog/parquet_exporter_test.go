package catalog

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readChargeRows(t *testing.T, path string) []ChargeRow {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	reader := parquet.NewGenericReader[ChargeRow](f)
	defer reader.Close()

	rows := make([]ChargeRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		t.Fatalf("read parquet: %v", err)
	}
	return rows[:n]
}

func TestChargeRows_Flatten(t *testing.T) {
	rows := ChargeRows(loadTestCatalog(t))

	// cedars: CT (no negotiated) + MRI x2 payers; ucla: MRI x1 payer
	require.Len(t, rows, 4)

	assert.Equal(t, "cedars", rows[0].FacilityID)
	assert.Equal(t, "CT Scan", rows[0].ProcedureID)
	assert.Empty(t, rows[0].InsurerID)
	assert.Nil(t, rows[0].NegotiatedCharge)
	assert.Equal(t, "inpatient", rows[0].Setting)

	assert.Equal(t, "MRI", rows[1].ProcedureID)
	assert.Equal(t, "aetna", rows[1].InsurerID)
	require.NotNil(t, rows[1].NegotiatedCharge)
	assert.Equal(t, 1800.0, *rows[1].NegotiatedCharge)
	assert.True(t, rows[1].InNetwork)
	assert.Equal(t, "70551", rows[1].BillingCode)

	assert.Equal(t, "bluecross", rows[2].InsurerID)
	assert.Equal(t, "ucla", rows[3].FacilityID)
}

func TestParquetExporter_RoundTrip(t *testing.T) {
	catalog := loadTestCatalog(t)
	path := filepath.Join(t.TempDir(), "charges.parquet")

	n, err := NewParquetExporter(zerolog.Nop()).Export(context.Background(), catalog, path)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	got := readChargeRows(t, path)
	assert.Equal(t, ChargeRows(catalog), got)
}
