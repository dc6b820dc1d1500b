package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/billharmony/backend/internal/api/handlers"
	"github.com/billharmony/backend/internal/application/services"
	"github.com/billharmony/backend/internal/domain/entities"
	apperrors "github.com/billharmony/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPriceSearcher struct {
	mock.Mock
}

func (m *MockPriceSearcher) AISearch(ctx context.Context, req services.AISearchRequest) (*services.SearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SearchResponse), args.Error(1)
}

func (m *MockPriceSearcher) Search(ctx context.Context, req services.StructuredSearchRequest) (*services.SearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SearchResponse), args.Error(1)
}

func TestSearchHandler_AISearch(t *testing.T) {
	searcher := new(MockPriceSearcher)
	best := 0
	searcher.On("AISearch", mock.Anything, services.AISearchRequest{
		Query:   "mri near 90210",
		Profile: &entities.UserProfile{InsurerID: "aetna"},
	}).Return(&services.SearchResponse{
		Results:    []entities.SearchResultEntry{{Facility: entities.FacilitySummary{ID: "cedars"}, PriceWithoutInsurance: 2500}},
		ParsedData: services.ParsedData{Procedures: []string{"MRI"}, InsurerID: "aetna", Location: "90210", ZipCode: "90210", RadiusMiles: 100},
		Query:      "mri near 90210",
		BestOption: &best,
	}, nil)

	h := handlers.NewSearchHandler(searcher)
	rec := httptest.NewRecorder()
	h.AISearch(rec, jsonRequest(t, http.MethodPost, "/api/ai-search",
		`{"ai_query":"mri near 90210","user_profile":{"insurance":"aetna"}}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	parsed := body["parsed_data"].(map[string]interface{})
	assert.Equal(t, "aetna", parsed["insurance"])
	assert.Equal(t, "90210", parsed["zip_code"])
	assert.Equal(t, float64(0), body["best_option"])
	assert.Len(t, body["results"], 1)
	searcher.AssertExpectations(t)
}

func TestSearchHandler_AISearchMissingInfo(t *testing.T) {
	searcher := new(MockPriceSearcher)
	searcher.On("AISearch", mock.Anything, mock.Anything).Return(&services.SearchResponse{
		Results: []entities.SearchResultEntry{},
		MissingInfo: &services.MissingInfo{
			Required: []string{"insurance"},
			Message:  "What insurance do you have?",
			Context:  "cost_query",
		},
	}, nil)

	rec := httptest.NewRecorder()
	handlers.NewSearchHandler(searcher).AISearch(rec, jsonRequest(t, http.MethodPost, "/api/ai-search", `{"ai_query":"how much is an mri"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	missing := decodeBody(t, rec)["missing_info"].(map[string]interface{})
	assert.Equal(t, []interface{}{"insurance"}, missing["required"])
	assert.Equal(t, "cost_query", missing["context"])
}

func TestSearchHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", apperrors.NewFieldValidationError("ai_query", "AI query is required"), http.StatusBadRequest, "AI query is required"},
		{"not found", apperrors.NewNotFoundError("procedure not found: PET"), http.StatusNotFound, "procedure not found: PET"},
		{"conflict", apperrors.NewConflictError("duplicate"), http.StatusConflict, "duplicate"},
		{"external", apperrors.NewExternalError("typesense", errors.New("down")), http.StatusBadGateway, "upstream service unavailable"},
		{"internal", apperrors.NewInternalError("db", errors.New("boom")), http.StatusInternalServerError, "internal server error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := new(MockPriceSearcher)
			searcher.On("AISearch", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := httptest.NewRecorder()
			handlers.NewSearchHandler(searcher).AISearch(rec, jsonRequest(t, http.MethodPost, "/api/ai-search", `{"ai_query":"x"}`))

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.msg, decodeBody(t, rec)["error"])
		})
	}
}

func TestSearchHandler_ValidationErrorNamesField(t *testing.T) {
	searcher := new(MockPriceSearcher)
	searcher.On("AISearch", mock.Anything, mock.Anything).Return(nil, apperrors.NewFieldValidationError("ai_query", "AI query is required"))

	rec := httptest.NewRecorder()
	handlers.NewSearchHandler(searcher).AISearch(rec, jsonRequest(t, http.MethodPost, "/api/ai-search", `{"ai_query":""}`))

	assert.Equal(t, "ai_query", decodeBody(t, rec)["field"])
}

func TestSearchHandler_BadBody(t *testing.T) {
	searcher := new(MockPriceSearcher)
	h := handlers.NewSearchHandler(searcher)

	for _, body := range []string{"", "{not json"} {
		rec := httptest.NewRecorder()
		h.AISearch(rec, jsonRequest(t, http.MethodPost, "/api/ai-search", body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	searcher.AssertNotCalled(t, "AISearch", mock.Anything, mock.Anything)
}

func TestSearchHandler_Search(t *testing.T) {
	searcher := new(MockPriceSearcher)
	searcher.On("Search", mock.Anything, services.StructuredSearchRequest{
		Procedure: "MRI", Location: "90210", InsurerID: "aetna", PlanID: "aetna-gold", RadiusMiles: 25,
	}).Return(&services.SearchResponse{Results: []entities.SearchResultEntry{}}, nil)

	rec := httptest.NewRecorder()
	handlers.NewSearchHandler(searcher).Search(rec, jsonRequest(t, http.MethodPost, "/api/search",
		`{"procedure":"MRI","location":"90210","insurance":"aetna","insurance_plan":"aetna-gold","max_distance":25}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["results"])
	searcher.AssertExpectations(t)
}
