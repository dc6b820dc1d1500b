//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/internal/infrastructure/clients/postgres"
	"github.com/billharmony/backend/pkg/config"
	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	pg     *embeddedpostgres.EmbeddedPostgres
	client *postgres.Client
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.pg = embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		Username("test").
		Password("test").
		Database("billharmony_test").
		Port(15433).
		StartTimeout(60 * time.Second))
	s.Require().NoError(s.pg.Start())

	client, err := postgres.NewClient(&config.DatabaseConfig{
		Host: "localhost", Port: 15433, User: "test", Password: "test",
		Database: "billharmony_test", SSLMode: "disable",
	})
	s.Require().NoError(err)
	s.client = client
	s.Require().NoError(s.client.EnsureSchema(context.Background()))
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
	if s.pg != nil {
		_ = s.pg.Stop()
	}
}

func (s *PostgresIntegrationSuite) TestCatalogRoundTrip() {
	t := s.T()
	ctx := context.Background()
	adapter := NewCatalogAdapter(s.client, zerolog.Nop())

	want := saveFixture(t)
	require.NoError(t, adapter.Save(ctx, want))
	// saving twice replaces rather than duplicates
	require.NoError(t, adapter.Save(ctx, want))

	got, err := adapter.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, want.Procedures(), got.Procedures())
	assert.Equal(t, want.Insurers(), got.Insurers())
	assert.Equal(t, want.Facilities(), got.Facilities())
	assert.Equal(t, want.Zips(), got.Zips())
	assert.Equal(t, want.Programs(), got.Programs())
}

func (s *PostgresIntegrationSuite) TestProfileUpsert() {
	t := s.T()
	ctx := context.Background()
	repo := NewPreferenceAdapter(s.client)

	require.NoError(t, repo.Upsert(ctx, &entities.UserProfile{ID: "p-1", InsurerID: "aetna", ZipCode: "90210"}))
	require.NoError(t, repo.Upsert(ctx, &entities.UserProfile{ID: "p-1", InsurerID: "cigna", ZipCode: "92103"}))

	got, err := repo.GetByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "cigna", got.InsurerID)
	assert.Equal(t, "92103", got.ZipCode)
}

func (s *PostgresIntegrationSuite) TestZeroResultQueries() {
	t := s.T()
	ctx := context.Background()
	repo := NewSearchAnalyticsAdapter(s.client)

	require.NoError(t, repo.LogEvent(ctx, &entities.SearchEvent{Query: "hits", Procedures: []string{"MRI"}, RadiusMiles: 100, ResultCount: 2}))
	require.NoError(t, repo.LogEvent(ctx, &entities.SearchEvent{Query: "misses", Procedures: []string{"MRI", "CT Scan"}, RadiusMiles: 5}))

	events, err := repo.GetZeroResultQueries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "misses", events[0].Query)
	assert.Equal(t, []string{"MRI", "CT Scan"}, events[0].Procedures)
}
