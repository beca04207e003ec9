package subscribers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/felixgeelhaar/discipline/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/discipline/internal/training/application/subscribers"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockScheduler struct {
	mock.Mock
}

func (m *mockScheduler) ScheduleDailyReminder(ctx context.Context, identifier string, hour, minute int) error {
	args := m.Called(ctx, identifier, hour, minute)
	return args.Error(0)
}

func (m *mockScheduler) CancelReminder(ctx context.Context, identifier string) error {
	args := m.Called(ctx, identifier)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func reminderEvent(t *testing.T, routingKey string, reminder domain.ReminderSettings) *eventbus.ConsumedEvent {
	t.Helper()
	payload, err := json.Marshal(domain.NewReminderChanged(reminder))
	require.NoError(t, err)
	return &eventbus.ConsumedEvent{RoutingKey: routingKey, Payload: payload}
}

func TestReminderSubscriber_EventTypes(t *testing.T) {
	sub := subscribers.NewReminderSubscriber(nil, testLogger())

	assert.ElementsMatch(t, []string{
		domain.RoutingKeyOnboarded,
		domain.RoutingKeyReminderChanged,
		domain.RoutingKeyStateReset,
	}, sub.EventTypes())
}

func TestReminderSubscriber_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("schedules an enabled reminder", func(t *testing.T) {
		scheduler := new(mockScheduler)
		scheduler.On("ScheduleDailyReminder", mock.Anything, domain.DailyReminderID, 21, 30).Return(nil).Once()
		sub := subscribers.NewReminderSubscriber(scheduler, testLogger())

		err := sub.Handle(ctx, reminderEvent(t, domain.RoutingKeyReminderChanged,
			domain.ReminderSettings{Enabled: true, Hour: 21, Minute: 30}))

		require.NoError(t, err)
		scheduler.AssertExpectations(t)
	})

	t.Run("cancels a disabled reminder", func(t *testing.T) {
		scheduler := new(mockScheduler)
		scheduler.On("CancelReminder", mock.Anything, domain.DailyReminderID).Return(nil).Once()
		sub := subscribers.NewReminderSubscriber(scheduler, testLogger())

		err := sub.Handle(ctx, reminderEvent(t, domain.RoutingKeyReminderChanged, domain.DefaultReminderSettings()))

		require.NoError(t, err)
		scheduler.AssertExpectations(t)
	})

	t.Run("schedules the reminder chosen during onboarding", func(t *testing.T) {
		scheduler := new(mockScheduler)
		scheduler.On("ScheduleDailyReminder", mock.Anything, domain.DailyReminderID, 20, 0).Return(nil).Once()
		sub := subscribers.NewReminderSubscriber(scheduler, testLogger())

		payload, err := json.Marshal(domain.NewOnboardingCompleted(
			domain.Profile{Name: "Ola", DaysPerWeek: 3, Experience: domain.ExperienceBeginner},
			domain.ReminderSettings{Enabled: true, Hour: 20},
		))
		require.NoError(t, err)

		err = sub.Handle(ctx, &eventbus.ConsumedEvent{RoutingKey: domain.RoutingKeyOnboarded, Payload: payload})

		require.NoError(t, err)
		scheduler.AssertExpectations(t)
	})

	t.Run("cancels on reset", func(t *testing.T) {
		scheduler := new(mockScheduler)
		scheduler.On("CancelReminder", mock.Anything, domain.DailyReminderID).Return(nil).Once()
		sub := subscribers.NewReminderSubscriber(scheduler, testLogger())

		err := sub.Handle(ctx, &eventbus.ConsumedEvent{RoutingKey: domain.RoutingKeyStateReset})

		require.NoError(t, err)
		scheduler.AssertExpectations(t)
	})

	t.Run("returns scheduler failures", func(t *testing.T) {
		scheduler := new(mockScheduler)
		scheduler.On("ScheduleDailyReminder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("permission denied"))
		sub := subscribers.NewReminderSubscriber(scheduler, testLogger())

		err := sub.Handle(ctx, reminderEvent(t, domain.RoutingKeyReminderChanged,
			domain.ReminderSettings{Enabled: true, Hour: 8}))

		assert.ErrorContains(t, err, "permission denied")
	})

	t.Run("skips undecodable payloads", func(t *testing.T) {
		scheduler := new(mockScheduler)
		sub := subscribers.NewReminderSubscriber(scheduler, testLogger())

		err := sub.Handle(ctx, &eventbus.ConsumedEvent{
			RoutingKey: domain.RoutingKeyReminderChanged,
			Payload:    []byte("{"),
		})

		require.NoError(t, err)
		scheduler.AssertNotCalled(t, "ScheduleDailyReminder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no scheduler configured", func(t *testing.T) {
		sub := subscribers.NewReminderSubscriber(nil, testLogger())

		err := sub.Handle(ctx, &eventbus.ConsumedEvent{RoutingKey: domain.RoutingKeyStateReset})

		assert.NoError(t, err)
	})
}
