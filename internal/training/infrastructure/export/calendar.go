// Package export renders training history as iCalendar data.
package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/emersion/go-ical"

	"github.com/felixgeelhaar/discipline/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
)

// ProductID identifies calendars produced by this package.
const ProductID = "-//Discipline//Training Export//EN"

const (
	uidDomain       = "@discipline"
	floatingLayout  = "20060102T150405"
	reminderLength  = 10 * time.Minute
	workoutSummary  = "Workout completed"
	reminderSummary = "Daily check-in"
	reminderText    = "Time for today's check-in. Did you train?"
)

// Options selects what goes into the calendar.
type Options struct {
	Profile  *domain.Profile
	CheckIns []*domain.CheckIn
	Reminder domain.ReminderSettings
	Now      time.Time
}

// BuildCalendar creates one all-day event per completed workout and, when the
// reminder is enabled, a recurring daily event with a display alarm.
func BuildCalendar(opts Options) *ical.Calendar {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	for _, c := range opts.CheckIns {
		if c == nil || !c.CompletedTraining() {
			continue
		}
		cal.Children = append(cal.Children, workoutEvent(c, opts.Profile, now).Component)
	}

	if opts.Reminder.Enabled && opts.Reminder.Validate() == nil {
		cal.Children = append(cal.Children, reminderEvent(opts.Reminder, now).Component)
	}

	return cal
}

func workoutEvent(c *domain.CheckIn, profile *domain.Profile, now time.Time) *ical.Event {
	day := domain.StartOfDay(c.Date())

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, c.ID().String()+uidDomain)
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	event.Props.SetDate(ical.PropDateTimeStart, day)
	event.Props.SetDate(ical.PropDateTimeEnd, domain.AddDays(day, 1))
	event.Props.SetText(ical.PropSummary, workoutSummary)

	description := ""
	if profile != nil && profile.Goal != "" {
		description = "Goal: " + profile.Goal
	}
	if note := c.Note(); note != nil {
		if description != "" {
			description += "\n"
		}
		description += *note
	}
	if description != "" {
		event.Props.SetText(ical.PropDescription, description)
	}

	return event
}

// reminderEvent uses floating local times so the alarm follows the device clock.
func reminderEvent(r domain.ReminderSettings, now time.Time) *ical.Event {
	today := domain.StartOfDay(now)
	start := time.Date(today.Year(), today.Month(), today.Day(), r.Hour, r.Minute, 0, 0, today.Location())

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, domain.DailyReminderID+uidDomain)
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	setFloating(event.Props, ical.PropDateTimeStart, start)
	setFloating(event.Props, ical.PropDateTimeEnd, start.Add(reminderLength))
	event.Props.SetText(ical.PropSummary, reminderSummary)

	rrule := ical.NewProp(ical.PropRecurrenceRule)
	rrule.Value = "FREQ=DAILY"
	event.Props[ical.PropRecurrenceRule] = []ical.Prop{*rrule}

	alarm := ical.NewComponent(ical.CompAlarm)
	alarm.Props.SetText(ical.PropAction, "DISPLAY")
	alarm.Props.SetText(ical.PropDescription, reminderText)
	trigger := ical.NewProp(ical.PropTrigger)
	trigger.Value = "PT0M"
	alarm.Props[ical.PropTrigger] = []ical.Prop{*trigger}
	event.Children = append(event.Children, alarm)

	return event
}

func setFloating(props ical.Props, name string, t time.Time) {
	prop := ical.NewProp(name)
	prop.Value = t.Format(floatingLayout)
	props[name] = []ical.Prop{*prop}
}

// Encode writes the calendar to w.
func Encode(w io.Writer, cal *ical.Calendar) error {
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// WriteFile renders the calendar to path.
func WriteFile(path string, cal *ical.Calendar) (string, error) {
	cleanPath, err := security.ValidateFilePath(path)
	if err != nil {
		return "", fmt.Errorf("invalid export path: %w", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, cal); err != nil {
		return "", err
	}
	if err := os.WriteFile(cleanPath, buf.Bytes(), 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", cleanPath, err)
	}
	return cleanPath, nil
}
