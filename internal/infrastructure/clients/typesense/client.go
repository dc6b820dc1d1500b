package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/billharmony/backend/pkg/config"
	"github.com/billharmony/backend/pkg/retry"
	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = 5
	err := retry.DoWithLog(
		context.Background(),
		retryCfg,
		"Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.Health(ctx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("typesense connection attempt failed")
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Info().Str("url", cfg.URL).Msg("connected to typesense")
	return &Client{client: client}, nil
}

// NewClientWithoutHealthCheck builds a client without probing the server
func NewClientWithoutHealthCheck(cfg *config.TypesenseConfig) *Client {
	return &Client{client: typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)}
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}
