package handlers

import (
	"context"
	"net/http"

	"github.com/billharmony/backend/internal/application/services"
	"github.com/billharmony/backend/internal/domain/entities"
)

// EligibilityChecker scores a household for charity care
type EligibilityChecker interface {
	Check(ctx context.Context, req services.EligibilityRequest) (*entities.EligibilityResult, error)
}

// EligibilityHandler handles charity eligibility requests
type EligibilityHandler struct {
	checker EligibilityChecker
}

// NewEligibilityHandler creates a new eligibility handler
func NewEligibilityHandler(checker EligibilityChecker) *EligibilityHandler {
	return &EligibilityHandler{checker: checker}
}

// Check handles POST /api/charity-eligibility
func (h *EligibilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req services.EligibilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.checker.Check(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
