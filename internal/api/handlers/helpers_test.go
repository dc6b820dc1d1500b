package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/billharmony/backend/internal/domain/entities"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *entities.ReferenceCatalog {
	t.Helper()
	c, err := entities.NewReferenceCatalog(
		[]entities.Procedure{
			{ID: "MRI", Name: "MRI Brain without contrast", Category: "imaging"},
			{ID: "Blood Test", Name: "Complete Blood Count", Category: "lab"},
		},
		[]entities.Insurer{
			{ID: "aetna", Name: "Aetna", Type: "PPO", Plans: []entities.Plan{
				{ID: "aetna-gold", Name: "Aetna Gold", Benefits: entities.PlanBenefits{Deductible: 250, Copay: 25, CoinsurancePercent: 10, OutOfPocketMax: 2500}},
			}},
		},
		[]entities.Facility{
			{
				ID: "cedars", Name: "Cedars-Sinai Medical Center",
				Address:           entities.Address{City: "Los Angeles", State: "CA", ZipCode: "90048"},
				Location:          entities.Location{Latitude: 34.0753, Longitude: -118.3804},
				InNetworkInsurers: []string{"aetna"},
				Charges: map[string]entities.ChargeInfo{
					"MRI": {GrossCharge: 2500, Negotiated: map[string]float64{"aetna": 1800}, Setting: entities.CareSettingOutpatient},
				},
			},
		},
		[]entities.ZipEntry{
			{ZipCode: "90210", City: "Beverly Hills", State: "CA", Location: entities.Location{Latitude: 34.0736, Longitude: -118.4004}},
		},
		nil,
	)
	require.NoError(t, err)
	return c
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
