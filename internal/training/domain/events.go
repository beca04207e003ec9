package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/discipline/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "Training"

// Routing keys for training events.
const (
	RoutingKeyOnboarded       = "training.profile.onboarded"
	RoutingKeyCheckInLogged   = "training.checkin.logged"
	RoutingKeyCheckInDeleted  = "training.checkin.deleted"
	RoutingKeyStateReset      = "training.state.reset"
	RoutingKeyReminderChanged = "training.reminder.changed"
)

// OnboardingCompleted is emitted when the athlete finishes onboarding.
type OnboardingCompleted struct {
	sharedDomain.BaseEvent
	Name        string           `json:"name"`
	Goal        string           `json:"goal"`
	DaysPerWeek int              `json:"days_per_week"`
	Experience  string           `json:"experience"`
	Reminder    ReminderSettings `json:"reminder"`
}

// NewOnboardingCompleted creates an OnboardingCompleted event.
func NewOnboardingCompleted(p Profile, reminder ReminderSettings) *OnboardingCompleted {
	return &OnboardingCompleted{
		BaseEvent:   sharedDomain.NewBaseEvent(uuid.Nil, aggregateType, RoutingKeyOnboarded),
		Name:        p.Name,
		Goal:        p.Goal,
		DaysPerWeek: p.DaysPerWeek,
		Experience:  string(p.Experience),
		Reminder:    reminder,
	}
}

// CheckInLogged is emitted after a check-in is created or updated.
type CheckInLogged struct {
	sharedDomain.BaseEvent
	CheckInID         uuid.UUID `json:"check_in_id"`
	Date              time.Time `json:"date"`
	PlannedToTrain    bool      `json:"planned_to_train"`
	CompletedTraining bool      `json:"completed_training"`
	Created           bool      `json:"created"`
	Score             int       `json:"score"`
	Streak            int       `json:"streak"`
}

// NewCheckInLogged creates a CheckInLogged event.
func NewCheckInLogged(c *CheckIn, created bool, score, streak int) *CheckInLogged {
	return &CheckInLogged{
		BaseEvent:         sharedDomain.NewBaseEvent(c.ID(), aggregateType, RoutingKeyCheckInLogged),
		CheckInID:         c.ID(),
		Date:              c.Date(),
		PlannedToTrain:    c.PlannedToTrain(),
		CompletedTraining: c.CompletedTraining(),
		Created:           created,
		Score:             score,
		Streak:            streak,
	}
}

// CheckInDeleted is emitted when a check-in is removed.
type CheckInDeleted struct {
	sharedDomain.BaseEvent
	CheckInID uuid.UUID `json:"check_in_id"`
	Date      time.Time `json:"date"`
}

// NewCheckInDeleted creates a CheckInDeleted event.
func NewCheckInDeleted(c *CheckIn) *CheckInDeleted {
	return &CheckInDeleted{
		BaseEvent: sharedDomain.NewBaseEvent(c.ID(), aggregateType, RoutingKeyCheckInDeleted),
		CheckInID: c.ID(),
		Date:      c.Date(),
	}
}

// StateReset is emitted when all training data is wiped.
type StateReset struct {
	sharedDomain.BaseEvent
	RemovedCheckIns int `json:"removed_check_ins"`
}

// NewStateReset creates a StateReset event.
func NewStateReset(removed int) *StateReset {
	return &StateReset{
		BaseEvent:       sharedDomain.NewBaseEvent(uuid.Nil, aggregateType, RoutingKeyStateReset),
		RemovedCheckIns: removed,
	}
}

// ReminderChanged is emitted when the daily reminder preference changes.
type ReminderChanged struct {
	sharedDomain.BaseEvent
	Reminder ReminderSettings `json:"reminder"`
}

// NewReminderChanged creates a ReminderChanged event.
func NewReminderChanged(r ReminderSettings) *ReminderChanged {
	return &ReminderChanged{
		BaseEvent: sharedDomain.NewBaseEvent(uuid.Nil, aggregateType, RoutingKeyReminderChanged),
		Reminder:  r,
	}
}
