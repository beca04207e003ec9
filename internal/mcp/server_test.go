package mcp

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/mcp-go/middleware"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/felixgeelhaar/discipline/adapter/cli"
	"github.com/felixgeelhaar/discipline/internal/app"
	"github.com/felixgeelhaar/discipline/pkg/config"
	"github.com/felixgeelhaar/discipline/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) *app.Container {
	t.Helper()

	cfg := &config.Config{
		AppEnv:         "test",
		UserID:         uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		StorageDriver:  config.DriverMemory,
		ReminderHour:   20,
		ReminderMinute: 0,
	}
	container, err := app.NewContainer(context.Background(), cfg, observability.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(container.Close)
	return container
}

func TestNewCLIApp(t *testing.T) {
	assert.Nil(t, NewCLIApp(nil))

	container := newTestContainer(t)
	cliApp := NewCLIApp(container)
	require.NotNil(t, cliApp)
	assert.Same(t, container.Store, cliApp.Store)
	assert.Same(t, container.Health, cliApp.Health)
	assert.Equal(t, container.Config.UserID, cliApp.UserID())
}

func TestNewServer_RegistersTrainingTools(t *testing.T) {
	srv, err := NewServer(NewCLIApp(newTestContainer(t)), observability.DiscardLogger())
	require.NoError(t, err)

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	found := false
	for _, tool := range tools {
		if tool["name"] == "training.checkin" {
			found = true
			break
		}
	}
	require.True(t, found, "training.checkin tool should be registered")
}

func TestNewServer_RequiresApp(t *testing.T) {
	_, err := NewServer(nil, nil)
	assert.Error(t, err)
}

func TestServe_RequiresConfigAndApp(t *testing.T) {
	ctx := context.Background()

	assert.Error(t, Serve(ctx, nil, &cli.App{}, nil))
	assert.Error(t, Serve(ctx, &config.Config{}, nil, nil))
}

func TestFieldsToArgs(t *testing.T) {
	args := fieldsToArgs([]middleware.Field{
		{Key: "method", Value: "tools/call"},
		{Key: "status", Value: 200},
	})
	assert.Equal(t, []any{"method", "tools/call", "status", 200}, args)
}
