package subscribers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/discipline/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
)

// ReminderSubscriber keeps the daily check-in reminder in line with the
// stored preference.
type ReminderSubscriber struct {
	scheduler domain.ReminderScheduler
	logger    *slog.Logger
}

// NewReminderSubscriber creates a new reminder subscriber.
func NewReminderSubscriber(scheduler domain.ReminderScheduler, logger *slog.Logger) *ReminderSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderSubscriber{
		scheduler: scheduler,
		logger:    logger,
	}
}

// EventTypes returns the event types this subscriber handles.
func (s *ReminderSubscriber) EventTypes() []string {
	return []string{
		domain.RoutingKeyOnboarded,
		domain.RoutingKeyReminderChanged,
		domain.RoutingKeyStateReset,
	}
}

// reminderPayload matches the reminder field of onboarding and reminder events.
type reminderPayload struct {
	Reminder domain.ReminderSettings `json:"reminder"`
}

// Handle processes a training event.
func (s *ReminderSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	if s.scheduler == nil {
		s.logger.Debug("reminder scheduler not configured, skipping event",
			"routing_key", event.RoutingKey,
		)
		return nil
	}

	switch event.RoutingKey {
	case domain.RoutingKeyOnboarded, domain.RoutingKeyReminderChanged:
		var payload reminderPayload
		if err := event.DecodePayload(&payload); err != nil {
			s.logger.Error("failed to decode reminder payload", "error", err)
			return nil
		}
		return s.apply(ctx, payload.Reminder)
	case domain.RoutingKeyStateReset:
		return s.cancel(ctx)
	default:
		s.logger.Warn("unknown event type", "routing_key", event.RoutingKey)
		return nil
	}
}

func (s *ReminderSubscriber) apply(ctx context.Context, reminder domain.ReminderSettings) error {
	if !reminder.Enabled {
		return s.cancel(ctx)
	}
	if err := reminder.Validate(); err != nil {
		s.logger.Warn("ignoring invalid reminder time",
			"hour", reminder.Hour,
			"minute", reminder.Minute,
		)
		return nil
	}

	if err := s.scheduler.ScheduleDailyReminder(ctx, domain.DailyReminderID, reminder.Hour, reminder.Minute); err != nil {
		return fmt.Errorf("failed to schedule daily reminder: %w", err)
	}

	s.logger.Info("daily reminder scheduled",
		"hour", reminder.Hour,
		"minute", reminder.Minute,
	)
	return nil
}

func (s *ReminderSubscriber) cancel(ctx context.Context) error {
	if err := s.scheduler.CancelReminder(ctx, domain.DailyReminderID); err != nil {
		return fmt.Errorf("failed to cancel daily reminder: %w", err)
	}
	s.logger.Info("daily reminder cancelled")
	return nil
}
