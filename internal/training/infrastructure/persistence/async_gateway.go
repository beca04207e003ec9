package persistence

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/felixgeelhaar/discipline/pkg/observability"
)

// ErrGatewayClosed is returned by writes after Close.
var ErrGatewayClosed = errors.New("gateway closed")

// DefaultWriteTimeout bounds a single background write.
const DefaultWriteTimeout = 10 * time.Second

// pendingWrite is the latest state waiting to be written.
type pendingWrite struct {
	ctx      context.Context
	snapshot *domain.Snapshot
	clear    bool
	seq      uint64
}

// AsyncGateway hands writes to a single background writer. Only the newest
// pending write is kept, so a slow backend sees the latest state and never
// the intermediate ones. Save and Clear return immediately.
type AsyncGateway struct {
	inner        domain.Gateway
	logger       *slog.Logger
	metrics      observability.Metrics
	writeTimeout time.Duration

	mu       sync.Mutex
	pending  *pendingWrite
	seq      uint64
	written  uint64
	progress chan struct{}
	wake     chan struct{}
	closed   bool
	done     chan struct{}
}

// NewAsyncGateway wraps inner and starts the writer goroutine.
func NewAsyncGateway(inner domain.Gateway, logger *slog.Logger, metrics observability.Metrics) *AsyncGateway {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	g := &AsyncGateway{
		inner:        inner,
		logger:       logger,
		metrics:      metrics,
		writeTimeout: DefaultWriteTimeout,
		progress:     make(chan struct{}),
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
	go g.run()
	return g
}

// Load waits for pending writes, then reads from the wrapped gateway.
func (g *AsyncGateway) Load(ctx context.Context) (*domain.Snapshot, error) {
	if err := g.Flush(ctx); err != nil {
		return nil, err
	}
	return g.inner.Load(ctx)
}

// Save queues the snapshot, replacing any write not yet started.
func (g *AsyncGateway) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	return g.enqueue(pendingWrite{ctx: context.WithoutCancel(ctx), snapshot: snapshot})
}

// Clear queues removal of the stored snapshot.
func (g *AsyncGateway) Clear(ctx context.Context) error {
	return g.enqueue(pendingWrite{ctx: context.WithoutCancel(ctx), clear: true})
}

// Flush blocks until every write queued before the call has been handled.
func (g *AsyncGateway) Flush(ctx context.Context) error {
	g.mu.Lock()
	target := g.seq
	g.mu.Unlock()

	for {
		g.mu.Lock()
		if g.written >= target {
			g.mu.Unlock()
			return nil
		}
		progress := g.progress
		g.mu.Unlock()

		select {
		case <-progress:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close drains pending writes and stops the writer.
func (g *AsyncGateway) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	close(g.wake)
	g.mu.Unlock()

	<-g.done
	return nil
}

func (g *AsyncGateway) enqueue(w pendingWrite) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrGatewayClosed
	}
	if g.pending != nil {
		g.metrics.Counter(observability.MetricAsyncCoalesced, 1)
	}
	g.seq++
	w.seq = g.seq
	g.pending = &w

	select {
	case g.wake <- struct{}{}:
	default:
	}
	return nil
}

func (g *AsyncGateway) run() {
	defer close(g.done)
	for range g.wake {
		g.drain()
	}
	g.drain()
}

func (g *AsyncGateway) drain() {
	for {
		g.mu.Lock()
		w := g.pending
		g.pending = nil
		g.mu.Unlock()

		if w == nil {
			return
		}
		g.write(w)

		g.mu.Lock()
		g.written = w.seq
		close(g.progress)
		g.progress = make(chan struct{})
		g.mu.Unlock()
	}
}

func (g *AsyncGateway) write(w *pendingWrite) {
	ctx, cancel := context.WithTimeout(w.ctx, g.writeTimeout)
	defer cancel()

	kind := "save"
	if w.clear {
		kind = "clear"
	}
	timer := observability.StartTimer("gateway.async.write").
		WithLogger(g.logger).
		WithMetrics(g.metrics).
		WithTags(observability.T("kind", kind))

	var err error
	if w.clear {
		err = g.inner.Clear(ctx)
	} else {
		err = g.inner.Save(ctx, w.snapshot)
	}
	timer.StopWithError(err)

	if err != nil {
		g.metrics.Counter(observability.MetricAsyncFailed, 1)
	}
}
