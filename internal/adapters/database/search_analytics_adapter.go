package database

import (
	"context"
	"time"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/internal/domain/repositories"
	"github.com/billharmony/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/billharmony/backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type SearchAnalyticsAdapter struct {
	client *postgres.Client
}

func NewSearchAnalyticsAdapter(client *postgres.Client) repositories.SearchAnalyticsRepository {
	return &SearchAnalyticsAdapter{client: client}
}

func (a *SearchAnalyticsAdapter) LogEvent(ctx context.Context, event *entities.SearchEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	procedures := event.Procedures
	if procedures == nil {
		procedures = []string{}
	}

	query := `
		INSERT INTO search_events
		(id, query, procedures, insurer_id, plan_id, location_token, location_source, radius_miles,
		 cash_only, missing_info, result_count, latency_ms, user_latitude, user_longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := a.client.DB().ExecContext(ctx, query,
		event.ID,
		event.Query,
		pq.Array(procedures),
		event.InsurerID,
		event.PlanID,
		event.LocationToken,
		event.LocationSource,
		event.RadiusMiles,
		event.CashOnly,
		event.MissingInfo,
		event.ResultCount,
		event.LatencyMs,
		event.UserLatitude,
		event.UserLongitude,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.NewInternalError("failed to log search event", err)
	}

	return nil
}

func (a *SearchAnalyticsAdapter) GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, query, procedures, insurer_id, plan_id, location_token, location_source, radius_miles,
		       cash_only, missing_info, result_count, latency_ms, user_latitude, user_longitude, created_at
		FROM search_events
		WHERE result_count = 0 AND missing_info = FALSE
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := a.client.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get zero result queries", err)
	}
	defer rows.Close()

	events := []*entities.SearchEvent{}
	for rows.Next() {
		e := &entities.SearchEvent{}
		err := rows.Scan(
			&e.ID,
			&e.Query,
			pq.Array(&e.Procedures),
			&e.InsurerID,
			&e.PlanID,
			&e.LocationToken,
			&e.LocationSource,
			&e.RadiusMiles,
			&e.CashOnly,
			&e.MissingInfo,
			&e.ResultCount,
			&e.LatencyMs,
			&e.UserLatitude,
			&e.UserLongitude,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan search event", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read search events", err)
	}

	return events, nil
}
