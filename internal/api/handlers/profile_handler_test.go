package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/billharmony/backend/internal/api/handlers"
	"github.com/billharmony/backend/internal/domain/entities"
	apperrors "github.com/billharmony/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPreferenceRepository struct {
	mock.Mock
}

func (m *MockPreferenceRepository) GetByID(ctx context.Context, id string) (*entities.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserProfile), args.Error(1)
}

func (m *MockPreferenceRepository) Upsert(ctx context.Context, profile *entities.UserProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func profileRequest(t *testing.T, method, id string, body interface{}) *http.Request {
	req := jsonRequest(t, method, "/api/profiles/"+id, body)
	req.SetPathValue("id", id)
	return req
}

func TestProfileHandler_Get(t *testing.T) {
	repo := new(MockPreferenceRepository)
	repo.On("GetByID", mock.Anything, "p-1").Return(&entities.UserProfile{ID: "p-1", InsurerID: "aetna", ZipCode: "90210"}, nil)
	repo.On("GetByID", mock.Anything, "ghost").Return(nil, apperrors.NewNotFoundError("profile not found"))
	h := handlers.NewProfileHandler(repo, testCatalog(t))

	rec := httptest.NewRecorder()
	h.GetProfile(rec, profileRequest(t, http.MethodGet, "p-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "aetna", body["insurance"])
	assert.Equal(t, "90210", body["zip_code"])

	rec = httptest.NewRecorder()
	h.GetProfile(rec, profileRequest(t, http.MethodGet, "ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfileHandler_Put(t *testing.T) {
	repo := new(MockPreferenceRepository)
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *entities.UserProfile) bool {
		return p.ID == "p-1" && p.InsurerID == "aetna" && p.PlanID == "aetna-gold" && p.ZipCode == "90210"
	})).Return(nil)
	h := handlers.NewProfileHandler(repo, testCatalog(t))

	rec := httptest.NewRecorder()
	h.PutProfile(rec, profileRequest(t, http.MethodPut, "p-1",
		`{"id":"ignored","insurance":" aetna ","insurance_plan":"aetna-gold","zip_code":"90210"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p-1", decodeBody(t, rec)["id"])
	repo.AssertExpectations(t)
}

func TestProfileHandler_PutValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad zip", `{"zip_code":"9021"}`, "zip_code"},
		{"plan without insurer", `{"insurance_plan":"aetna-gold"}`, "insurance_plan"},
		{"unknown insurer", `{"insurance":"acme"}`, "insurance"},
		{"unknown plan", `{"insurance":"aetna","insurance_plan":"aetna-tin"}`, "insurance_plan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPreferenceRepository)
			rec := httptest.NewRecorder()
			handlers.NewProfileHandler(repo, testCatalog(t)).PutProfile(rec, profileRequest(t, http.MethodPut, "p-1", tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.field, decodeBody(t, rec)["field"])
			repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		})
	}
}
