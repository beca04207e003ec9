package persistence_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSnapshot() *domain.Snapshot {
	today := time.Date(2025, 11, 20, 18, 30, 0, 0, time.Local)
	return &domain.Snapshot{
		Profile: &domain.Profile{
			Name:        "Kari",
			Goal:        "Bench 100 kg",
			DaysPerWeek: 4,
			Experience:  domain.ExperienceAdvanced,
		},
		CheckIns: []*domain.CheckIn{
			domain.NewCheckIn(today.AddDate(0, 0, -2), true, true, domain.StringPtr("legs")),
			domain.NewCheckIn(today.AddDate(0, 0, -1), true, false, nil),
			domain.NewCheckIn(today, false, false, nil),
		},
		Onboarded: true,
		Reminder:  domain.ReminderSettings{Enabled: true, Hour: 19, Minute: 45},
	}
}

func assertSnapshotsEqual(t *testing.T, want, got *domain.Snapshot) {
	t.Helper()
	require.NotNil(t, got)

	if want.Profile == nil {
		assert.Nil(t, got.Profile)
	} else {
		require.NotNil(t, got.Profile)
		assert.Equal(t, *want.Profile, *got.Profile)
	}
	assert.Equal(t, want.Onboarded, got.Onboarded)
	assert.Equal(t, want.Reminder, got.Reminder)

	require.Len(t, got.CheckIns, len(want.CheckIns))
	for i := range want.CheckIns {
		w, g := want.CheckIns[i], got.CheckIns[i]
		assert.Equal(t, w.ID(), g.ID())
		assert.True(t, w.Date().Equal(g.Date()), "date %d: want %s got %s", i, w.Date(), g.Date())
		assert.Equal(t, w.PlannedToTrain(), g.PlannedToTrain())
		assert.Equal(t, w.CompletedTraining(), g.CompletedTraining())
		assert.Equal(t, w.Note(), g.Note())
	}
}

// runGatewayContract checks the load/save/clear behaviour every gateway shares.
func runGatewayContract(t *testing.T, gw domain.Gateway) {
	t.Helper()
	ctx := context.Background()

	t.Run("load before any save", func(t *testing.T) {
		snapshot, err := gw.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, snapshot)
	})

	t.Run("save then load round trips", func(t *testing.T) {
		want := sampleSnapshot()
		require.NoError(t, gw.Save(ctx, want))

		got, err := gw.Load(ctx)
		require.NoError(t, err)
		assertSnapshotsEqual(t, want, got)
	})

	t.Run("save replaces the previous snapshot", func(t *testing.T) {
		want := sampleSnapshot()
		want.CheckIns = want.CheckIns[:1]
		want.Profile = nil
		want.Onboarded = false
		require.NoError(t, gw.Save(ctx, want))

		got, err := gw.Load(ctx)
		require.NoError(t, err)
		assertSnapshotsEqual(t, want, got)
	})

	t.Run("empty snapshot round trips", func(t *testing.T) {
		want := domain.EmptySnapshot()
		require.NoError(t, gw.Save(ctx, want))

		got, err := gw.Load(ctx)
		require.NoError(t, err)
		assertSnapshotsEqual(t, want, got)
	})

	t.Run("clear removes the snapshot", func(t *testing.T) {
		require.NoError(t, gw.Save(ctx, sampleSnapshot()))
		require.NoError(t, gw.Clear(ctx))

		snapshot, err := gw.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, snapshot)

		require.NoError(t, gw.Clear(ctx))
	})
}
