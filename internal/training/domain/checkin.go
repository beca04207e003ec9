package domain

import (
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/discipline/internal/shared/domain"
	"github.com/google/uuid"
)

// CheckIn is a single day's record of planned and actual training.
type CheckIn struct {
	sharedDomain.BaseEntity
	date              time.Time
	plannedToTrain    bool
	completedTraining bool
	note              *string
}

// NewCheckIn creates a check-in for the calendar day of date with a fresh identifier.
func NewCheckIn(date time.Time, planned, completed bool, note *string) *CheckIn {
	return &CheckIn{
		BaseEntity:        sharedDomain.NewBaseEntity(),
		date:              StartOfDay(date),
		plannedToTrain:    planned,
		completedTraining: completed,
		note:              NormalizeNote(note),
	}
}

// RehydrateCheckIn recreates a check-in from persisted state.
func RehydrateCheckIn(id uuid.UUID, date time.Time, planned, completed bool, note *string) *CheckIn {
	day := StartOfDay(date)
	return &CheckIn{
		BaseEntity:        sharedDomain.RehydrateBaseEntity(id),
		date:              day,
		plannedToTrain:    planned,
		completedTraining: completed,
		note:              NormalizeNote(note),
	}
}

// Getters
func (c *CheckIn) Date() time.Time         { return c.date }
func (c *CheckIn) PlannedToTrain() bool    { return c.plannedToTrain }
func (c *CheckIn) CompletedTraining() bool { return c.completedTraining }

// Note returns a copy of the note, or nil when none was given.
func (c *CheckIn) Note() *string {
	if c.note == nil {
		return nil
	}
	n := *c.note
	return &n
}

// Update overwrites the mutable fields in place. Identity and date never change.
func (c *CheckIn) Update(planned, completed bool, note *string) {
	c.plannedToTrain = planned
	c.completedTraining = completed
	c.note = NormalizeNote(note)
}

// Clone returns an independent copy.
func (c *CheckIn) Clone() *CheckIn {
	clone := *c
	clone.note = c.Note()
	return &clone
}

// NormalizeNote maps blank notes to nil so "no note" has one representation.
func NormalizeNote(note *string) *string {
	if note == nil || strings.TrimSpace(*note) == "" {
		return nil
	}
	n := *note
	return &n
}

// StringPtr is a convenience for building optional notes.
func StringPtr(s string) *string {
	return &s
}
