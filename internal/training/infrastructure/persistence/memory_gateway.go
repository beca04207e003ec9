package persistence

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/discipline/internal/training/domain"
)

// MemoryGateway keeps the encoded snapshot in memory. It round-trips through
// the JSON document so it behaves like the durable gateways.
type MemoryGateway struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{}
}

func (g *MemoryGateway) Load(ctx context.Context) (*domain.Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.data == nil {
		return nil, nil
	}
	return Decode(FormatJSON, g.data)
}

func (g *MemoryGateway) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	data, err := Encode(FormatJSON, snapshot)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.data = data
	g.mu.Unlock()
	return nil
}

func (g *MemoryGateway) Clear(ctx context.Context) error {
	g.mu.Lock()
	g.data = nil
	g.mu.Unlock()
	return nil
}

// Ping reports the context error, if any; memory storage is always reachable.
func (g *MemoryGateway) Ping(ctx context.Context) error {
	return ctx.Err()
}
