// Package circuitbreaker wraps sony/gobreaker for calls to optional backing services.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// State represents the circuit breaker state
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// Config holds circuit breaker configuration
type Config struct {
	Name string
	// MaxRequests is the number of probes allowed while half-open
	MaxRequests uint32
	// Interval is the cyclic period for clearing counts while closed
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again
	Timeout time.Duration
	// FailureThreshold trips the breaker on consecutive failures below MinRequests
	FailureThreshold uint32
	// FailureRatio trips the breaker once MinRequests have been observed
	FailureRatio float64
	MinRequests  uint32
}

// DefaultConfig returns defaults suitable for a search backend that has a local fallback
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		FailureRatio:     0.6,
		MinRequests:      10,
	}
}

// StateListener is notified after every state transition
type StateListener func(name string, from, to State)

// CircuitBreaker wraps gobreaker with tracing, meters and structured logging
type CircuitBreaker struct {
	cb       *gobreaker.CircuitBreaker
	name     string
	logger   zerolog.Logger
	tracer   trace.Tracer
	requests metric.Int64Counter
	rejected metric.Int64Counter
	failures metric.Int64Counter

	mu        sync.RWMutex
	state     State
	listeners []StateListener
}

// New creates a new circuit breaker
func New(cfg Config, logger zerolog.Logger) (*CircuitBreaker, error) {
	meter := otel.Meter("circuit-breaker")

	c := &CircuitBreaker{
		name:   cfg.Name,
		logger: logger.With().Str("breaker", cfg.Name).Logger(),
		tracer: otel.Tracer("circuit-breaker"),
		state:  StateClosed,
	}

	var err error
	if c.requests, err = meter.Int64Counter("circuit_breaker.requests",
		metric.WithDescription("Requests routed through the circuit breaker")); err != nil {
		return nil, err
	}
	if c.rejected, err = meter.Int64Counter("circuit_breaker.rejected",
		metric.WithDescription("Requests rejected because the circuit was open")); err != nil {
		return nil, err
	}
	if c.failures, err = meter.Int64Counter("circuit_breaker.failures",
		metric.WithDescription("Requests that failed inside the circuit breaker")); err != nil {
		return nil, err
	}

	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return counts.ConsecutiveFailures >= cfg.FailureThreshold
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.onStateChange(mapState(from), mapState(to))
		},
	})

	return c, nil
}

// OnStateChange registers a listener for state transitions
func (c *CircuitBreaker) OnStateChange(l StateListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Execute runs fn through the breaker
func (c *CircuitBreaker) Execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	ctx, span := c.tracer.Start(ctx, "circuit_breaker.execute",
		trace.WithAttributes(
			attribute.String("breaker.name", c.name),
			attribute.String("breaker.state", string(c.State())),
		))
	defer span.End()

	attrs := metric.WithAttributes(attribute.String("name", c.name))
	c.requests.Add(ctx, 1, attrs)

	result, err := c.cb.Execute(fn)
	if err != nil {
		if IsOpen(err) {
			c.rejected.Add(ctx, 1, attrs)
			span.SetAttributes(attribute.Bool("breaker.open", true))
		} else {
			c.failures.Add(ctx, 1, attrs)
		}
		span.RecordError(err)
		return nil, err
	}
	return result, nil
}

// ExecuteWithFallback runs fn and calls fallback when fn fails or the circuit is open
func (c *CircuitBreaker) ExecuteWithFallback(ctx context.Context, fn func() (interface{}, error), fallback func(error) (interface{}, error)) (interface{}, error) {
	result, err := c.Execute(ctx, fn)
	if err == nil {
		return result, nil
	}
	c.logger.Warn().Err(err).Msg("circuit breaker call failed, using fallback")
	return fallback(err)
}

// State returns the current state
func (c *CircuitBreaker) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Name returns the breaker name
func (c *CircuitBreaker) Name() string {
	return c.name
}

// IsOpen reports whether err was produced by an open or saturated breaker rather than the wrapped call
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (c *CircuitBreaker) onStateChange(from, to State) {
	c.mu.Lock()
	c.state = to
	listeners := append([]StateListener(nil), c.listeners...)
	c.mu.Unlock()

	c.logger.Warn().
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("circuit breaker state changed")

	for _, l := range listeners {
		l(c.name, from, to)
	}
}

func mapState(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}
