package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	sharedDomain "github.com/felixgeelhaar/discipline/internal/shared/domain"
	"github.com/felixgeelhaar/discipline/internal/training/application/services"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/felixgeelhaar/discipline/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Load(ctx context.Context) (*domain.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *mockGateway) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *mockGateway) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, event sharedDomain.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advanceDays(n int) { c.now = c.now.AddDate(0, 0, n) }

func newTestClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 11, 20, 18, 0, 0, 0, time.Local)}
}

func newTestStore(t *testing.T, gw *mockGateway, pub *mockPublisher, clock *fakeClock, opts ...StoreOption) *Store {
	t.Helper()
	opts = append([]StoreOption{WithClock(clock.Now)}, opts...)
	var publisher EventPublisher
	if pub != nil {
		publisher = pub
	}
	return NewStore(context.Background(), gw, publisher, services.NewCoach(), discardLogger(), opts...)
}

func TestNewStore(t *testing.T) {
	t.Run("starts empty when nothing is stored", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("Load", mock.Anything).Return(nil, nil)

		store := newTestStore(t, gw, nil, newTestClock())

		assert.Nil(t, store.Profile())
		assert.False(t, store.IsOnboarded())
		assert.Empty(t, store.CheckIns())
		assert.Equal(t, domain.DefaultReminderSettings(), store.Reminder())
		_, ok := store.LastCoachMessage()
		assert.False(t, ok)
		gw.AssertExpectations(t)
	})

	t.Run("degrades to empty on load failure", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("Load", mock.Anything).Return(nil, errors.New("corrupt document"))
		metrics := observability.NewInMemoryMetrics()

		store := newTestStore(t, gw, nil, newTestClock(), WithMetrics(metrics))

		assert.Nil(t, store.Profile())
		assert.Empty(t, store.CheckIns())
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricStoreLoadFailed))
	})

	t.Run("restores a stored snapshot and collapses duplicate days", func(t *testing.T) {
		clock := newTestClock()
		yesterday := clock.now.AddDate(0, 0, -1)
		first := domain.NewCheckIn(yesterday.Add(-time.Hour), true, false, nil)
		second := domain.NewCheckIn(yesterday, true, true, nil)

		gw := new(mockGateway)
		gw.On("Load", mock.Anything).Return(&domain.Snapshot{
			Profile:   &domain.Profile{Name: "Kari", DaysPerWeek: 4, Experience: domain.ExperienceIntermediate},
			CheckIns:  []*domain.CheckIn{first, second},
			Onboarded: true,
			Reminder:  domain.ReminderSettings{Enabled: true, Hour: 7, Minute: 30},
		}, nil)

		store := newTestStore(t, gw, nil, clock)

		require.NotNil(t, store.Profile())
		assert.Equal(t, "Kari", store.Profile().Name)
		assert.True(t, store.IsOnboarded())
		require.Len(t, store.CheckIns(), 1)
		assert.Equal(t, second.ID(), store.CheckIns()[0].ID())
		assert.Equal(t, 7, store.Reminder().Hour)
	})

	t.Run("replaces an out of range reminder with the default", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("Load", mock.Anything).Return(&domain.Snapshot{
			Reminder: domain.ReminderSettings{Enabled: true, Hour: 31},
		}, nil)

		store := newTestStore(t, gw, nil, newTestClock())

		assert.Equal(t, domain.DefaultReminderSettings(), store.Reminder())
	})
}

func TestStore_CompleteOnboarding(t *testing.T) {
	gw := new(mockGateway)
	pub := new(mockPublisher)
	gw.On("Load", mock.Anything).Return(nil, nil)
	gw.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.Snapshot) bool {
		return s.Onboarded && s.Profile != nil && s.Profile.Name == "Ola"
	})).Return(nil).Once()
	pub.On("PublishEvent", mock.Anything, mock.MatchedBy(func(e sharedDomain.DomainEvent) bool {
		return e.RoutingKey() == domain.RoutingKeyOnboarded
	})).Return(nil).Once()

	userID := uuid.New()
	store := newTestStore(t, gw, pub, newTestClock(), WithUserID(userID))
	store.CompleteOnboarding(context.Background(), domain.Profile{
		Name:        "Ola",
		Goal:        "Run a 10k",
		DaysPerWeek: 3,
		Experience:  domain.ExperienceBeginner,
	})

	assert.True(t, store.IsOnboarded())
	require.NotNil(t, store.Profile())
	assert.Equal(t, "Run a 10k", store.Profile().Goal)
	gw.AssertExpectations(t)
	pub.AssertExpectations(t)

	event := pub.Calls[0].Arguments.Get(1).(sharedDomain.DomainEvent)
	assert.Equal(t, userID, event.Metadata().UserID)
}

func TestStore_LogCheckIn(t *testing.T) {
	t.Run("creates today's check-in and returns the coach message", func(t *testing.T) {
		gw := new(mockGateway)
		pub := new(mockPublisher)
		gw.On("Load", mock.Anything).Return(nil, nil)
		gw.On("Save", mock.Anything, mock.Anything).Return(nil)
		pub.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)

		store := newTestStore(t, gw, pub, newTestClock())
		result := store.LogCheckIn(context.Background(), true, true, domain.StringPtr("felt strong"))

		assert.True(t, result.Created)
		assert.Equal(t, 100, result.Score)
		assert.Equal(t, 1, result.Streak)
		assert.NotEmpty(t, result.Message)
		require.NotNil(t, result.CheckIn.Note())
		assert.Equal(t, "felt strong", *result.CheckIn.Note())

		msg, ok := store.LastCoachMessage()
		assert.True(t, ok)
		assert.Equal(t, result.Message, msg)
		gw.AssertNumberOfCalls(t, "Save", 1)
		pub.AssertNumberOfCalls(t, "PublishEvent", 1)
	})

	t.Run("updates the same day instead of appending", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("Load", mock.Anything).Return(nil, nil)
		gw.On("Save", mock.Anything, mock.Anything).Return(nil)

		store := newTestStore(t, gw, nil, newTestClock())
		first := store.LogCheckIn(context.Background(), true, false, nil)
		second := store.LogCheckIn(context.Background(), true, true, nil)

		assert.True(t, first.Created)
		assert.False(t, second.Created)
		assert.Equal(t, first.CheckIn.ID(), second.CheckIn.ID())
		require.Len(t, store.CheckIns(), 1)
		assert.True(t, store.CheckIns()[0].CompletedTraining())
	})

	t.Run("repeated identical calls leave a single entry", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("Load", mock.Anything).Return(nil, nil)
		gw.On("Save", mock.Anything, mock.Anything).Return(nil)

		store := newTestStore(t, gw, nil, newTestClock())
		for i := 0; i < 3; i++ {
			store.LogCheckIn(context.Background(), true, true, nil)
		}

		assert.Len(t, store.CheckIns(), 1)
	})

	t.Run("save failure is not surfaced", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("Load", mock.Anything).Return(nil, nil)
		gw.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		metrics := observability.NewInMemoryMetrics()

		store := newTestStore(t, gw, nil, newTestClock(), WithMetrics(metrics))
		result := store.LogCheckIn(context.Background(), true, true, nil)

		assert.True(t, result.Created)
		assert.Len(t, store.CheckIns(), 1)
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricStoreSaveFailed))
	})

	t.Run("publish failure is not surfaced", func(t *testing.T) {
		gw := new(mockGateway)
		pub := new(mockPublisher)
		gw.On("Load", mock.Anything).Return(nil, nil)
		gw.On("Save", mock.Anything, mock.Anything).Return(nil)
		pub.On("PublishEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))

		metrics := observability.NewInMemoryMetrics()

		store := newTestStore(t, gw, pub, newTestClock(), WithMetrics(metrics))
		result := store.LogCheckIn(context.Background(), false, false, nil)

		assert.True(t, result.Created)
		assert.Equal(t, 0, result.Score)
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricEventsFailed,
			observability.T("routing_key", "training.checkin.logged")))
	})
}

func TestStore_ThreeDayHistory(t *testing.T) {
	gw := new(mockGateway)
	gw.On("Load", mock.Anything).Return(nil, nil)
	gw.On("Save", mock.Anything, mock.Anything).Return(nil)

	clock := newTestClock()
	clock.advanceDays(-2)
	store := newTestStore(t, gw, nil, clock)
	ctx := context.Background()

	store.LogCheckIn(ctx, true, true, nil)
	clock.advanceDays(1)
	store.LogCheckIn(ctx, true, false, nil)
	clock.advanceDays(1)
	result := store.LogCheckIn(ctx, true, true, nil)

	assert.Equal(t, 67, result.Score)
	assert.Equal(t, 1, result.Streak)
	assert.Equal(t, 1, store.LongestStreak())
	assert.Equal(t, 2, store.TotalWorkouts(7))
	assert.InDelta(t, 66.67, store.CompletionRate(7), 0.01)
	assert.Equal(t, 67, store.DisciplineScore())
	assert.Equal(t, 1, store.CurrentStreak())

	var points []services.TrendPoint
	for p := range store.DisciplineTrend(3) {
		points = append(points, p)
	}
	require.Len(t, points, 3)
	assert.Equal(t, 100, points[0].Score)
	assert.Equal(t, 50, points[1].Score)
	assert.Equal(t, 67, points[2].Score)
}

func TestStore_TodaysCheckIn(t *testing.T) {
	gw := new(mockGateway)
	gw.On("Load", mock.Anything).Return(nil, nil)
	gw.On("Save", mock.Anything, mock.Anything).Return(nil)

	clock := newTestClock()
	store := newTestStore(t, gw, nil, clock)
	assert.Nil(t, store.TodaysCheckIn())

	store.LogCheckIn(context.Background(), true, false, nil)
	require.NotNil(t, store.TodaysCheckIn())

	clock.advanceDays(1)
	assert.Nil(t, store.TodaysCheckIn())
	assert.Equal(t, 0, store.CurrentStreak())
}

func TestStore_DeleteCheckIn(t *testing.T) {
	gw := new(mockGateway)
	pub := new(mockPublisher)
	gw.On("Load", mock.Anything).Return(nil, nil)
	gw.On("Save", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)

	store := newTestStore(t, gw, pub, newTestClock())
	ctx := context.Background()
	result := store.LogCheckIn(ctx, true, true, nil)

	store.DeleteCheckIn(ctx, result.CheckIn.ID())
	assert.Empty(t, store.CheckIns())

	store.DeleteCheckIn(ctx, result.CheckIn.ID())
	store.DeleteCheckIn(ctx, uuid.New())
	assert.Empty(t, store.CheckIns())

	// logged + one deletion; unknown ids publish nothing
	pub.AssertNumberOfCalls(t, "PublishEvent", 2)
	gw.AssertNumberOfCalls(t, "Save", 4)
}

func TestStore_ResetAll(t *testing.T) {
	gw := new(mockGateway)
	gw.On("Load", mock.Anything).Return(nil, nil)
	gw.On("Save", mock.Anything, mock.Anything).Return(nil)
	gw.On("Clear", mock.Anything).Return(nil).Once()

	store := newTestStore(t, gw, nil, newTestClock())
	ctx := context.Background()
	store.CompleteOnboarding(ctx, domain.Profile{Name: "Ola", DaysPerWeek: 3, Experience: domain.ExperienceBeginner})
	store.LogCheckIn(ctx, true, true, nil)
	require.NoError(t, store.UpdateReminder(ctx, domain.ReminderSettings{Enabled: true, Hour: 6}))

	store.ResetAll(ctx)

	assert.Nil(t, store.Profile())
	assert.False(t, store.IsOnboarded())
	assert.Empty(t, store.CheckIns())
	assert.Equal(t, domain.DefaultReminderSettings(), store.Reminder())
	_, ok := store.LastCoachMessage()
	assert.False(t, ok)
	gw.AssertExpectations(t)
}

func TestStore_UpdateReminder(t *testing.T) {
	t.Run("stores a valid time", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("Load", mock.Anything).Return(nil, nil)
		gw.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.Snapshot) bool {
			return s.Reminder.Enabled && s.Reminder.Hour == 21 && s.Reminder.Minute == 15
		})).Return(nil).Once()

		store := newTestStore(t, gw, nil, newTestClock())
		err := store.UpdateReminder(context.Background(), domain.ReminderSettings{Enabled: true, Hour: 21, Minute: 15})

		require.NoError(t, err)
		assert.Equal(t, 21, store.Reminder().Hour)
		gw.AssertExpectations(t)
	})

	t.Run("rejects an invalid time", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("Load", mock.Anything).Return(nil, nil)

		store := newTestStore(t, gw, nil, newTestClock())
		err := store.UpdateReminder(context.Background(), domain.ReminderSettings{Enabled: true, Hour: 24})

		assert.ErrorIs(t, err, domain.ErrInvalidReminderTime)
		assert.Equal(t, domain.DefaultReminderSettings(), store.Reminder())
		gw.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestStore_ReturnsCopies(t *testing.T) {
	gw := new(mockGateway)
	gw.On("Load", mock.Anything).Return(nil, nil)
	gw.On("Save", mock.Anything, mock.Anything).Return(nil)

	store := newTestStore(t, gw, nil, newTestClock())
	store.LogCheckIn(context.Background(), true, false, nil)

	store.CheckIns()[0].Update(true, true, nil)
	assert.False(t, store.CheckIns()[0].CompletedTraining())

	snapshot := store.Snapshot()
	snapshot.CheckIns = nil
	assert.Len(t, store.CheckIns(), 1)
}

func TestStore_Insight(t *testing.T) {
	gw := new(mockGateway)
	gw.On("Load", mock.Anything).Return(nil, nil)
	gw.On("Save", mock.Anything, mock.Anything).Return(nil)

	store := newTestStore(t, gw, nil, newTestClock())
	_, ok := store.Insight()
	assert.False(t, ok)

	store.LogCheckIn(context.Background(), true, true, nil)
	text, ok := store.Insight()
	assert.True(t, ok)
	assert.NotEmpty(t, text)
}

func TestStore_CoachMessageWithoutCheckIn(t *testing.T) {
	gw := new(mockGateway)
	gw.On("Load", mock.Anything).Return(nil, nil)

	store := newTestStore(t, gw, nil, newTestClock())
	assert.Equal(t, services.WelcomeBackMessage, store.CoachMessage())
}
