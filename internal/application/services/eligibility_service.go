package services

import (
	"context"
	"strings"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/internal/infrastructure/observability"
	apperrors "github.com/billharmony/backend/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// EligibilityRequest is a charity eligibility check. Pointer fields distinguish
// "missing" from zero.
type EligibilityRequest struct {
	HouseholdIncome  *float64 `json:"household_income"`
	FamilySize       *int     `json:"family_size"`
	EmploymentStatus string   `json:"employment_status"`
	ZipCode          string   `json:"zip_code,omitempty"`
	ProcedureCost    *float64 `json:"procedure_cost,omitempty"`
}

// EligibilityService validates eligibility requests and scores them against the catalog's programs
type EligibilityService struct {
	catalog *entities.ReferenceCatalog
	scorer  *EligibilityScorer
	metrics SearchMetrics
}

// NewEligibilityService creates a new eligibility service
func NewEligibilityService(catalog *entities.ReferenceCatalog, scorer *EligibilityScorer, metrics SearchMetrics) *EligibilityService {
	if scorer == nil {
		scorer = NewEligibilityScorer(nil, nil)
	}
	if metrics == nil {
		metrics = (*observability.DomainMetrics)(nil)
	}
	return &EligibilityService{catalog: catalog, scorer: scorer, metrics: metrics}
}

// Check scores the household in req
func (s *EligibilityService) Check(ctx context.Context, req EligibilityRequest) (*entities.EligibilityResult, error) {
	_, span := observability.StartSpan(ctx, "EligibilityService.Check")
	defer span.End()

	if req.HouseholdIncome == nil {
		return nil, apperrors.NewFieldValidationError("household_income", "household income is required")
	}
	if req.FamilySize == nil {
		return nil, apperrors.NewFieldValidationError("family_size", "family size is required")
	}
	if strings.TrimSpace(req.EmploymentStatus) == "" {
		return nil, apperrors.NewFieldValidationError("employment_status", "employment status is required")
	}

	cost := 0.0
	if req.ProcedureCost != nil {
		if *req.ProcedureCost < 0 {
			return nil, apperrors.NewFieldValidationError("procedure_cost", "procedure cost must be >= 0")
		}
		cost = *req.ProcedureCost
	}

	profile := entities.HouseholdProfile{
		Income:           *req.HouseholdIncome,
		FamilySize:       *req.FamilySize,
		EmploymentStatus: strings.ToLower(strings.TrimSpace(req.EmploymentStatus)),
		ZipCode:          req.ZipCode,
	}

	var programs []entities.AssistanceProgram
	if s.catalog != nil {
		programs = s.catalog.Programs()
	}

	result, err := s.scorer.Score(profile, cost, programs)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("eligibility.score", result.Score),
		attribute.Int("eligibility.qualified_programs", len(result.QualifiedPrograms)),
	)
	s.metrics.ObserveEligibility(len(result.QualifiedPrograms) > 0)
	return result, nil
}
