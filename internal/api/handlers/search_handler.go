package handlers

import (
	"context"
	"net/http"

	"github.com/billharmony/backend/internal/application/services"
)

// PriceSearcher runs free-text and structured price searches
type PriceSearcher interface {
	AISearch(ctx context.Context, req services.AISearchRequest) (*services.SearchResponse, error)
	Search(ctx context.Context, req services.StructuredSearchRequest) (*services.SearchResponse, error)
}

// SearchHandler handles price search requests
type SearchHandler struct {
	searcher PriceSearcher
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searcher PriceSearcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// AISearch handles POST /api/ai-search
func (h *SearchHandler) AISearch(w http.ResponseWriter, r *http.Request) {
	var req services.AISearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	resp, err := h.searcher.AISearch(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// Search handles POST /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req services.StructuredSearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	resp, err := h.searcher.Search(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
