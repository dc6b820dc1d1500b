package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/internal/domain/repositories"
	apperrors "github.com/billharmony/backend/pkg/errors"
)

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// ProfileHandler reads and saves per-user search defaults
type ProfileHandler struct {
	repo    repositories.PreferenceRepository
	catalog *entities.ReferenceCatalog
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(repo repositories.PreferenceRepository, catalog *entities.ReferenceCatalog) *ProfileHandler {
	return &ProfileHandler{repo: repo, catalog: catalog}
}

// GetProfile handles GET /api/profiles/{id}
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "profile ID is required")
		return
	}

	profile, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

// PutProfile handles PUT /api/profiles/{id}
func (h *ProfileHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "profile ID is required")
		return
	}

	var profile entities.UserProfile
	if err := decodeJSON(w, r, &profile); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	profile.ID = id

	if err := h.validate(&profile); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if err := h.repo.Upsert(r.Context(), &profile); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) validate(p *entities.UserProfile) error {
	p.InsurerID = strings.TrimSpace(p.InsurerID)
	p.PlanID = strings.TrimSpace(p.PlanID)
	p.ZipCode = strings.TrimSpace(p.ZipCode)

	if p.ZipCode != "" && !zipPattern.MatchString(p.ZipCode) {
		return apperrors.NewFieldValidationError("zip_code", "zip code must be 5 digits")
	}
	if p.PlanID != "" && p.InsurerID == "" {
		return apperrors.NewFieldValidationError("insurance_plan", "insurance plan requires an insurance provider")
	}
	if h.catalog == nil || p.InsurerID == "" {
		return nil
	}

	insurer, ok := h.catalog.Insurer(p.InsurerID)
	if !ok {
		return apperrors.NewFieldValidationError("insurance", "unknown insurance provider: "+p.InsurerID)
	}
	if p.PlanID != "" {
		if _, ok := insurer.Plan(p.PlanID); !ok {
			return apperrors.NewFieldValidationError("insurance_plan", "unknown plan for "+insurer.Name+": "+p.PlanID)
		}
	}
	return nil
}
