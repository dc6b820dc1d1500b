package handlers

import (
	"errors"
	"io"
	"net/http"

	apperrors "github.com/billharmony/backend/pkg/errors"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// errorResponse is the body of every non-2xx response
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, errorResponse{Error: message})
}

// respondWithAppError maps an AppError type to its HTTP status. Internal
// details are logged, never returned.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: appErr.Message, Field: appErr.Field})
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, appErr.Message)
	case apperrors.ErrorTypeConflict:
		respondWithError(w, http.StatusConflict, appErr.Message)
	case apperrors.ErrorTypeExternal:
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("upstream failure")
		respondWithError(w, http.StatusBadGateway, "upstream service unavailable")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a bounded JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return apperrors.NewValidationError("request body too large or unreadable")
	}
	if len(body) == 0 {
		return apperrors.NewValidationError("request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.NewValidationError("invalid request body")
	}
	return nil
}
