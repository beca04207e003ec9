package persistence_test

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/discipline/internal/training/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
)

func TestMemoryGateway_Contract(t *testing.T) {
	runGatewayContract(t, persistence.NewMemoryGateway())
}

func TestMemoryGateway_Ping(t *testing.T) {
	gw := persistence.NewMemoryGateway()
	assert.NoError(t, gw.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, gw.Ping(ctx), context.Canceled)
}
