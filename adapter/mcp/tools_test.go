package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/felixgeelhaar/discipline/adapter/cli"
	"github.com/felixgeelhaar/discipline/internal/training/application"
	"github.com/felixgeelhaar/discipline/internal/training/application/queries"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/felixgeelhaar/discipline/internal/training/infrastructure/persistence"
	"github.com/felixgeelhaar/discipline/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTools(t *testing.T) (*tools, *time.Time) {
	t.Helper()

	now := time.Date(2026, 7, 1, 19, 0, 0, 0, time.Local)
	clock := func() time.Time { return now }
	store := application.NewStore(context.Background(), persistence.NewMemoryGateway(), nil, nil,
		observability.DiscardLogger(), application.WithClock(clock))

	app := cli.NewApp(store, observability.NewHealthRegistry(), nil)
	app.Now = clock
	return &tools{app: app}, &now
}

func TestRegisterTools_ListTools(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools: true,
		},
	})

	tt, _ := newTestTools(t)
	require.NoError(t, RegisterTools(srv, ToolDependencies{App: tt.app}))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	list, err := tc.ListTools()
	require.NoError(t, err)

	names := make(map[any]bool, len(list))
	for _, tool := range list {
		names[tool["name"]] = true
	}
	for _, name := range []string{
		"training.checkin",
		"training.delete",
		"training.status",
		"training.stats",
		"training.trend",
		"training.onboard",
	} {
		assert.True(t, names[name], "%s should be registered", name)
	}
}

func TestRegisterTools_RequiresApp(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})

	assert.Error(t, RegisterTools(nil, ToolDependencies{}))
	assert.Error(t, RegisterTools(srv, ToolDependencies{}))
}

func TestTools_NotInitialized(t *testing.T) {
	empty := &tools{app: &cli.App{}}

	_, err := empty.status(context.Background(), struct{}{})
	assert.ErrorIs(t, err, cli.ErrNotInitialized)

	_, err = empty.checkIn(context.Background(), checkInInput{Completed: true})
	assert.ErrorIs(t, err, cli.ErrNotInitialized)
}

func TestTools_OnboardAndCheckIn(t *testing.T) {
	tt, _ := newTestTools(t)
	ctx := context.Background()

	status, err := tt.onboard(ctx, onboardInput{Name: "Kai", DaysPerWeek: 5, Experience: "Advanced", Reminder: "06:15"})
	require.NoError(t, err)
	assert.True(t, status.Onboarded)
	require.NotNil(t, status.Profile)
	assert.Equal(t, "Kai", status.Profile.DisplayName)
	assert.Equal(t, "06:15", status.Reminder.Time)
	assert.True(t, status.Reminder.Enabled)

	first, err := tt.checkIn(ctx, checkInInput{Completed: false})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.True(t, first.CheckIn.Planned)
	assert.Zero(t, first.Score)

	second, err := tt.checkIn(ctx, checkInInput{Completed: true, Note: "Hill sprints"})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.CheckIn.ID, second.CheckIn.ID)
	assert.Equal(t, 100, second.Score)
	assert.Equal(t, 1, second.Streak)
	assert.Equal(t, "Hill sprints", second.CheckIn.Note)

	rest := false
	third, err := tt.checkIn(ctx, checkInInput{Planned: &rest})
	require.NoError(t, err)
	assert.False(t, third.CheckIn.Planned)
}

func TestTools_OnboardRejectsBadInput(t *testing.T) {
	tt, _ := newTestTools(t)
	ctx := context.Background()

	_, err := tt.onboard(ctx, onboardInput{Experience: "pro"})
	assert.Error(t, err)

	_, err = tt.onboard(ctx, onboardInput{Reminder: "99:00"})
	assert.ErrorIs(t, err, domain.ErrInvalidReminderTime)

	assert.False(t, tt.app.Store.IsOnboarded())
}

func TestTools_Delete(t *testing.T) {
	tt, _ := newTestTools(t)
	ctx := context.Background()

	out, err := tt.checkIn(ctx, checkInInput{Completed: true})
	require.NoError(t, err)

	_, err = tt.delete(ctx, deleteInput{ID: out.CheckIn.ID.String()})
	require.NoError(t, err)
	assert.Empty(t, tt.app.Store.CheckIns())

	_, err = tt.delete(ctx, deleteInput{ID: uuid.NewString()})
	assert.NoError(t, err)

	_, err = tt.delete(ctx, deleteInput{})
	assert.Error(t, err)

	_, err = tt.delete(ctx, deleteInput{ID: "nope"})
	assert.Error(t, err)
}

func TestTools_StatsTrendHistory(t *testing.T) {
	tt, now := newTestTools(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := tt.checkIn(ctx, checkInInput{Completed: i != 2})
		require.NoError(t, err)
		*now = now.AddDate(0, 0, 1)
	}

	stats, err := tt.stats(ctx, daysInput{Days: 7})
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalWorkouts)
	assert.InDelta(t, 80.0, stats.CompletionRate, 0.001)
	assert.Equal(t, 2, stats.LongestStreak)

	trend, err := tt.trend(ctx, daysInput{})
	require.NoError(t, err)
	assert.Len(t, trend, 14)

	trend, err = tt.trend(ctx, daysInput{Days: -1})
	require.NoError(t, err)
	assert.Empty(t, trend)

	history, err := tt.history(ctx, historyInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2026-07-05", history[0].Date)
}

func TestTools_RejectOversizedWindow(t *testing.T) {
	tt, _ := newTestTools(t)
	ctx := context.Background()

	_, err := tt.trend(ctx, daysInput{Days: 100_000_000_000_000})
	assert.ErrorIs(t, err, queries.ErrWindowTooLarge)

	_, err = tt.stats(ctx, daysInput{Days: queries.MaxWindowDays + 1})
	assert.ErrorIs(t, err, queries.ErrWindowTooLarge)

	trend, err := tt.trend(ctx, daysInput{Days: queries.MaxWindowDays})
	require.NoError(t, err)
	assert.Len(t, trend, queries.MaxWindowDays)
}

func TestTools_Reminder(t *testing.T) {
	tt, _ := newTestTools(t)
	ctx := context.Background()

	out, err := tt.reminder(ctx, reminderInput{Enabled: true, Time: "21:30"})
	require.NoError(t, err)
	assert.Equal(t, "21:30", out.Time)
	assert.True(t, out.Enabled)

	out, err = tt.reminder(ctx, reminderInput{Enabled: false})
	require.NoError(t, err)
	assert.False(t, out.Enabled)
	assert.Equal(t, "21:30", out.Time)

	_, err = tt.reminder(ctx, reminderInput{Enabled: true, Time: "noon"})
	assert.ErrorIs(t, err, domain.ErrInvalidReminderTime)
}

func TestTools_Export(t *testing.T) {
	tt, _ := newTestTools(t)
	ctx := context.Background()

	_, err := tt.checkIn(ctx, checkInInput{Completed: true})
	require.NoError(t, err)

	out, err := tt.export(ctx, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "ics", out.Format)
	assert.Equal(t, 1, out.Events)
	assert.Contains(t, out.Calendar, "BEGIN:VEVENT")
}

func TestTools_Health(t *testing.T) {
	tt, _ := newTestTools(t)
	tt.app.Health.Register("storage", observability.PingChecker("storage", true, func(context.Context) error { return nil }))

	report, err := tt.health(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, observability.HealthStatusHealthy, report.Status)
	assert.Contains(t, report.Checks, "storage")
}
