package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/discipline/internal/training/application"
	"github.com/felixgeelhaar/discipline/internal/training/application/queries"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/felixgeelhaar/discipline/internal/training/infrastructure/persistence"
	"github.com/felixgeelhaar/discipline/pkg/config"
	"github.com/felixgeelhaar/discipline/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type testEnv struct {
	app     *App
	gateway *persistence.MemoryGateway
	now     time.Time
}

func setupTestApp(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		gateway: persistence.NewMemoryGateway(),
		now:     time.Date(2026, 5, 4, 18, 0, 0, 0, time.Local),
	}
	clock := func() time.Time { return env.now }

	store := application.NewStore(context.Background(), env.gateway, nil, nil,
		observability.DiscardLogger(),
		application.WithClock(clock),
		application.WithUserID(testUserID),
	)
	health := observability.NewHealthRegistry()
	health.Register("storage", observability.PingChecker("storage", true, func(context.Context) error { return nil }))

	env.app = NewApp(store, health, &config.Config{
		AppEnv:         "test",
		UserID:         testUserID,
		ReminderHour:   20,
		ReminderMinute: 0,
	})
	env.app.Now = clock

	SetApp(env.app)
	SetLogger(observability.DiscardLogger())
	t.Cleanup(func() { SetApp(nil) })
	return env
}

// run executes the root command with flags restored to their defaults, since
// cobra keeps parsed values between executions.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	err := Run(context.Background(), args, &out)
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func TestCommandsRequireApp(t *testing.T) {
	SetApp(nil)

	for _, args := range [][]string{
		{"status"},
		{"checkin", "--completed"},
		{"stats"},
		{"trend"},
		{"history"},
		{"reminder", "off"},
		{"reminder", "on"},
		{"export"},
		{"reset", "--yes"},
		{"health"},
		{"serve"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := run(t, args...)
			assert.ErrorIs(t, err, ErrNotInitialized)
		})
	}
}

func TestOnboard(t *testing.T) {
	env := setupTestApp(t)

	out, err := run(t, "onboard", "--name", "Sam", "--goal", "Run a 10k", "--days", "4",
		"--experience", "Intermediate", "--reminder", "07:30")
	require.NoError(t, err)

	assert.Contains(t, out, "Welcome, Sam!")
	assert.Contains(t, out, "Goal: Run a 10k")
	assert.Contains(t, out, "Daily reminder at 07:30.")

	store := env.app.Store
	require.True(t, store.IsOnboarded())
	assert.Equal(t, domain.Profile{
		Name:        "Sam",
		Goal:        "Run a 10k",
		DaysPerWeek: 4,
		Experience:  domain.ExperienceIntermediate,
	}, *store.Profile())
	assert.Equal(t, domain.ReminderSettings{Enabled: true, Hour: 7, Minute: 30}, store.Reminder())
}

func TestOnboard_InvalidInput(t *testing.T) {
	env := setupTestApp(t)

	_, err := run(t, "onboard", "--experience", "elite")
	require.Error(t, err)
	assert.False(t, env.app.Store.IsOnboarded())

	_, err = run(t, "onboard", "--reminder", "25:00")
	assert.ErrorIs(t, err, domain.ErrInvalidReminderTime)
}

func TestCheckIn_UpsertsToday(t *testing.T) {
	env := setupTestApp(t)

	out, err := run(t, "checkin", "--planned=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged check-in")

	out, err = run(t, "checkin", "--completed", "--note", "Tempo run")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated check-in")
	assert.Contains(t, out, "Score: 100  Streak: 1")

	checkIns := env.app.Store.CheckIns()
	require.Len(t, checkIns, 1)
	assert.True(t, checkIns[0].PlannedToTrain())
	assert.True(t, checkIns[0].CompletedTraining())
	require.NotNil(t, checkIns[0].Note())
	assert.Equal(t, "Tempo run", *checkIns[0].Note())
}

func TestCheckIn_JSON(t *testing.T) {
	setupTestApp(t)

	out, err := run(t, "checkin", "--completed", "--json")
	require.NoError(t, err)

	var payload struct {
		CheckIn queries.CheckInDTO `json:"check_in"`
		Created bool               `json:"created"`
		Score   int                `json:"score"`
		Streak  int                `json:"streak"`
		Message string             `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.True(t, payload.Created)
	assert.Equal(t, "2026-05-04", payload.CheckIn.Date)
	assert.Equal(t, 100, payload.Score)
	assert.Equal(t, 1, payload.Streak)
	assert.NotEmpty(t, payload.Message)
}

func TestDelete(t *testing.T) {
	env := setupTestApp(t)

	result := env.app.Store.LogCheckIn(context.Background(), true, true, nil)

	out, err := run(t, "delete", result.CheckIn.ID().String())
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted check-in")
	assert.Empty(t, env.app.Store.CheckIns())

	_, err = run(t, "delete", uuid.NewString())
	assert.NoError(t, err)

	_, err = run(t, "delete", "not-a-uuid")
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	env := setupTestApp(t)

	out, err := run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not set up yet")
	assert.Contains(t, out, "Today: no check-in yet")

	env.app.Store.CompleteOnboarding(context.Background(), domain.Profile{DaysPerWeek: 3})
	env.app.Store.LogCheckIn(context.Background(), true, false, nil)

	out, err = run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Athlete, 3 days per week")
	assert.Contains(t, out, "Today: planned, not done")
	assert.Contains(t, out, "Score: 0")
}

func TestStatsAndTrend(t *testing.T) {
	env := setupTestApp(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		env.app.Store.LogCheckIn(ctx, true, i%2 == 0, nil)
		env.now = env.now.AddDate(0, 0, 1)
	}

	out, err := run(t, "stats", "--days", "7", "--json")
	require.NoError(t, err)
	var stats queries.StatsDTO
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 7, stats.Days)
	assert.Equal(t, 2, stats.TotalWorkouts)
	assert.InDelta(t, 50.0, stats.CompletionRate, 0.001)

	out, err = run(t, "trend", "--days", "3")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)

	out, err = run(t, "trend", "--days", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "No trend")

	_, err = run(t, "trend", "--days", "1000000000")
	assert.ErrorIs(t, err, queries.ErrWindowTooLarge)

	_, err = run(t, "stats", "--days", "367")
	assert.ErrorIs(t, err, queries.ErrWindowTooLarge)
}

func TestHistory(t *testing.T) {
	env := setupTestApp(t)
	ctx := context.Background()

	out, err := run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No check-ins yet")

	for i := 0; i < 3; i++ {
		env.app.Store.LogCheckIn(ctx, true, true, nil)
		env.now = env.now.AddDate(0, 0, 1)
	}

	out, err = run(t, "history", "-n", "2", "--json")
	require.NoError(t, err)
	var history []queries.CheckInDTO
	require.NoError(t, json.Unmarshal([]byte(out), &history))
	require.Len(t, history, 2)
	assert.Equal(t, "2026-05-06", history[0].Date)
}

func TestReminder(t *testing.T) {
	env := setupTestApp(t)

	out, err := run(t, "reminder")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily reminder is off")

	out, err = run(t, "reminder", "set", "06:45")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily reminder at 06:45")

	out, err = run(t, "reminder", "off")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily reminder is off")
	assert.Equal(t, domain.ReminderSettings{Enabled: false, Hour: 6, Minute: 45}, env.app.Store.Reminder())

	env.app.Config.ReminderHour, env.app.Config.ReminderMinute = 21, 15
	out, err = run(t, "reminder", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily reminder at 21:15")

	_, err = run(t, "reminder", "set", "6pm")
	assert.ErrorIs(t, err, domain.ErrInvalidReminderTime)
}

func TestExport(t *testing.T) {
	env := setupTestApp(t)
	env.app.Store.LogCheckIn(context.Background(), true, true, nil)

	out, err := run(t, "export")
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "BEGIN:VEVENT")

	path := filepath.Join(t.TempDir(), "training.ics")
	_, err = run(t, "export", "--format", "ICS", "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "END:VCALENDAR")

	_, err = run(t, "export", "--format", "csv")
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	env := setupTestApp(t)
	ctx := context.Background()
	env.app.Store.CompleteOnboarding(ctx, domain.Profile{Name: "Sam"})
	env.app.Store.LogCheckIn(ctx, true, true, nil)

	out, err := run(t, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "--yes")
	assert.Len(t, env.app.Store.CheckIns(), 1)

	out, err = run(t, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "All data deleted.")
	assert.False(t, env.app.Store.IsOnboarded())
	assert.Empty(t, env.app.Store.CheckIns())

	snapshot, err := env.gateway.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestHealth(t *testing.T) {
	env := setupTestApp(t)

	out, err := run(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "status: healthy")
	assert.Contains(t, out, "storage")

	env.app.Health.Register("broker", observability.PingChecker("broker", true, func(context.Context) error {
		return assert.AnError
	}))
	out, err = run(t, "health")
	assert.Error(t, err)
	assert.Contains(t, out, "unhealthy")
}

func TestVersion(t *testing.T) {
	SetApp(nil)

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "discipline dev")
}
