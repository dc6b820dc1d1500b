package main

import (
	"context"
	"flag"
	"time"

	"github.com/billharmony/backend/internal/adapters/catalog"
	"github.com/billharmony/backend/internal/adapters/database"
	"github.com/billharmony/backend/internal/domain/repositories"
	"github.com/billharmony/backend/internal/infrastructure/clients/postgres"
	"github.com/billharmony/backend/internal/infrastructure/observability"
	"github.com/billharmony/backend/pkg/config"
	"github.com/billharmony/backend/pkg/secrets"
	"github.com/rs/zerolog/log"
)

// export writes one Parquet row per facility and procedure for offline price analysis.
func main() {
	var out string
	flag.StringVar(&out, "out", "prices.parquet", "output Parquet file")
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
	observability.InitLogger("billharmony-export", cfg.Environment, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var loader repositories.CatalogLoader
	if cfg.Catalog.Source == config.CatalogSourcePostgres {
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
		}
		defer pgClient.Close()
		loader = database.NewCatalogAdapter(pgClient, log.Logger)
	} else {
		loader = catalog.NewJSONLoader(cfg.Catalog.DataDir, log.Logger)
	}

	refCatalog, err := loader.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load reference catalog")
	}

	rows, err := catalog.NewParquetExporter(log.Logger).Export(ctx, refCatalog, out)
	if err != nil {
		log.Fatal().Err(err).Str("out", out).Msg("export failed")
	}
	log.Info().Int("rows", rows).Str("out", out).Msg("export complete")
}
