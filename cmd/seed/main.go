package main

import (
	"context"
	"flag"
	"time"

	"github.com/billharmony/backend/internal/adapters/catalog"
	"github.com/billharmony/backend/internal/adapters/database"
	"github.com/billharmony/backend/internal/infrastructure/clients/postgres"
	"github.com/billharmony/backend/internal/infrastructure/observability"
	"github.com/billharmony/backend/pkg/config"
	"github.com/billharmony/backend/pkg/secrets"
	"github.com/rs/zerolog/log"
)

// seed copies the JSON reference catalog into Postgres so the API can run with CATALOG_SOURCE=postgres.
func main() {
	var dataDir string
	flag.StringVar(&dataDir, "data", "", "reference data directory (defaults to CATALOG_DATA_DIR)")
	flag.Parse()

	if res, err := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv()); err != nil {
		log.Fatal().Err(err).Msg("failed to load secrets from Vault")
	} else if res.Enabled {
		log.Info().Str("path", res.Path).Int("loaded", res.Loaded).Int("skipped", res.Skipped).Msg("secrets loaded from Vault")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger("billharmony-seed", cfg.Environment, cfg.LogLevel)

	if dataDir == "" {
		dataDir = cfg.Catalog.DataDir
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	refCatalog, err := catalog.NewJSONLoader(dataDir, log.Logger).Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("data_dir", dataDir).Msg("failed to load reference catalog")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer pgClient.Close()

	if err := pgClient.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to apply database schema")
	}

	if err := database.NewCatalogAdapter(pgClient, log.Logger).Save(ctx, refCatalog); err != nil {
		log.Fatal().Err(err).Msg("failed to seed catalog")
	}

	log.Info().
		Int("procedures", len(refCatalog.Procedures())).
		Int("insurers", len(refCatalog.Insurers())).
		Int("facilities", len(refCatalog.Facilities())).
		Int("programs", len(refCatalog.Programs())).
		Msg("catalog seeded")
}
