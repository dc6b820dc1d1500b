package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/billharmony/backend/internal/adapters/catalog"
	"github.com/billharmony/backend/internal/application/services"
	"github.com/billharmony/backend/internal/domain/entities"
	"github.com/billharmony/backend/internal/evaluation"
	"github.com/billharmony/backend/internal/infrastructure/observability"
	"github.com/billharmony/backend/pkg/config"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

func main() {
	var goldenPath string
	flag.StringVar(&goldenPath, "golden", "", "golden query file (defaults to <CATALOG_DATA_DIR>/golden_queries.json)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger("billharmony-evaluate", cfg.Environment, cfg.LogLevel)

	if goldenPath == "" {
		goldenPath = filepath.Join(cfg.Catalog.DataDir, "golden_queries.json")
	}

	ctx := context.Background()

	refCatalog, err := catalog.NewJSONLoader(cfg.Catalog.DataDir, log.Logger).Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load reference catalog")
	}

	queries, err := evaluation.LoadGoldenQueries(goldenPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load golden queries")
	}
	if err := evaluation.ValidateGoldenQueries(queries); err != nil {
		log.Fatal().Err(err).Msg("invalid golden queries")
	}

	runner := evaluation.NewRunner(services.NewQueryInterpreter(nil, refCatalog), entities.DefaultRadiusMiles)
	summary, err := runner.Run(ctx, queries)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluation failed")
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to encode summary")
	}
	fmt.Println(string(out))

	violations := evaluation.NewGuardrails(evaluation.DefaultGuardrailConfig()).Check(summary)
	for _, v := range violations {
		log.Error().Str("metric", v.Metric).Float64("got", v.Got).Float64("min", v.Min).Msg("guardrail violated")
	}
	if len(violations) > 0 {
		os.Exit(1)
	}
	log.Info().Int("queries", summary.TotalQueries).Int("passed", summary.PassedQueries).Msg("all guardrails met")
}
