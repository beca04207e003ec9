package domain

import (
	"context"
	"errors"
)

// DailyReminderID is the stable identifier of the daily check-in reminder.
const DailyReminderID = "daily.checkin"

const (
	DefaultReminderHour   = 20
	DefaultReminderMinute = 0
)

var ErrInvalidReminderTime = errors.New("reminder time must be within 00:00-23:59")

// ReminderSettings holds the daily reminder preference.
type ReminderSettings struct {
	Enabled bool `json:"enabled"`
	Hour    int  `json:"hour"`
	Minute  int  `json:"minute"`
}

// DefaultReminderSettings returns a disabled reminder at the default time.
func DefaultReminderSettings() ReminderSettings {
	return ReminderSettings{Hour: DefaultReminderHour, Minute: DefaultReminderMinute}
}

// Validate checks the hour and minute ranges.
func (r ReminderSettings) Validate() error {
	if r.Hour < 0 || r.Hour > 23 || r.Minute < 0 || r.Minute > 59 {
		return ErrInvalidReminderTime
	}
	return nil
}

// ReminderScheduler delivers the daily reminder. Scheduling an identifier
// again replaces the previous schedule.
type ReminderScheduler interface {
	ScheduleDailyReminder(ctx context.Context, identifier string, hour, minute int) error
	CancelReminder(ctx context.Context, identifier string) error
}
