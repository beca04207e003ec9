package persistence

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/felixgeelhaar/discipline/pkg/observability"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the circuit breaker around a remote gateway.
type BreakerConfig struct {
	// Name labels logs and metrics.
	Name string

	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold uint32

	// Timeout is how long the circuit stays open before probing again.
	Timeout time.Duration

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
}

// DefaultBreakerConfig returns the default breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "storage",
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
	}
}

// BreakerGateway fails fast while the wrapped gateway keeps failing.
// An open circuit surfaces gobreaker.ErrOpenState.
type BreakerGateway struct {
	inner   domain.Gateway
	breaker *gobreaker.CircuitBreaker[*domain.Snapshot]
}

// NewBreakerGateway wraps inner with a circuit breaker.
func NewBreakerGateway(inner domain.Gateway, cfg BreakerConfig, logger *slog.Logger, metrics observability.Metrics) *BreakerGateway {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	defaults := DefaultBreakerConfig()
	if cfg.Name == "" {
		cfg.Name = defaults.Name
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = defaults.MaxRequests
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("storage circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.Counter(observability.MetricBreakerStateChange, 1,
				observability.T("name", name),
				observability.T("state", to.String()),
			)
		},
	}

	return &BreakerGateway{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[*domain.Snapshot](settings),
	}
}

// State returns the current breaker state.
func (g *BreakerGateway) State() gobreaker.State {
	return g.breaker.State()
}

func (g *BreakerGateway) Load(ctx context.Context) (*domain.Snapshot, error) {
	return g.breaker.Execute(func() (*domain.Snapshot, error) {
		return g.inner.Load(ctx)
	})
}

func (g *BreakerGateway) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	_, err := g.breaker.Execute(func() (*domain.Snapshot, error) {
		return nil, g.inner.Save(ctx, snapshot)
	})
	return err
}

func (g *BreakerGateway) Clear(ctx context.Context) error {
	_, err := g.breaker.Execute(func() (*domain.Snapshot, error) {
		return nil, g.inner.Clear(ctx)
	})
	return err
}
