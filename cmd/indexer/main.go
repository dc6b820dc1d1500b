package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/billharmony/backend/internal/adapters/catalog"
	"github.com/billharmony/backend/internal/adapters/database"
	"github.com/billharmony/backend/internal/adapters/search"
	"github.com/billharmony/backend/internal/domain/repositories"
	"github.com/billharmony/backend/internal/infrastructure/clients/postgres"
	"github.com/billharmony/backend/internal/infrastructure/clients/typesense"
	"github.com/billharmony/backend/internal/infrastructure/observability"
	"github.com/billharmony/backend/pkg/config"
	"github.com/billharmony/backend/pkg/secrets"
	"github.com/rs/zerolog/log"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
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
	observability.InitLogger("billharmony-indexer", cfg.Environment, cfg.LogLevel)

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Err(err).Str("interval", intervalValue).Msg("invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, reset); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("next_run_in", interval).Msg("reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, reset bool) error {
	var loader repositories.CatalogLoader
	if cfg.Catalog.Source == config.CatalogSourcePostgres {
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			return err
		}
		defer pgClient.Close()
		loader = database.NewCatalogAdapter(pgClient, log.Logger)
	} else {
		loader = catalog.NewJSONLoader(cfg.Catalog.DataDir, log.Logger)
	}

	refCatalog, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}
	index := search.NewTypesenseAdapter(tsClient, log.Logger)

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		if err := index.DropCollection(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to delete collection")
		}
	}

	if err := index.EnsureSchema(ctx); err != nil {
		return err
	}

	facilities := refCatalog.Facilities()
	log.Info().Int("facilities", len(facilities)).Msg("indexing facilities")
	return index.Upsert(ctx, facilities)
}
