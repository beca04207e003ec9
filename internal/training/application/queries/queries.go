// Package queries builds read models of the training state for the CLI and
// MCP hosts.
package queries

import (
	"fmt"
	"iter"
	"time"

	"github.com/felixgeelhaar/discipline/internal/training/application/services"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/google/uuid"
)

const (
	dateLayout = "2006-01-02"

	// DefaultStatsDays is the window used when stats are requested without one.
	DefaultStatsDays = 30
	// DefaultTrendDays is the window used when a trend is requested without one.
	DefaultTrendDays = 14
	// MaxWindowDays bounds the stats and trend windows callers may request.
	MaxWindowDays = 366
)

// ErrWindowTooLarge is returned by CheckWindow for windows over MaxWindowDays.
var ErrWindowTooLarge = fmt.Errorf("window must be at most %d days", MaxWindowDays)

// CheckWindow rejects windows longer than MaxWindowDays.
func CheckWindow(days int) error {
	if days > MaxWindowDays {
		return ErrWindowTooLarge
	}
	return nil
}

// Reader is the read side of the training store.
type Reader interface {
	Profile() *domain.Profile
	IsOnboarded() bool
	Reminder() domain.ReminderSettings
	CheckIns() []*domain.CheckIn
	TodaysCheckIn() *domain.CheckIn
	CoachMessage() string
	DisciplineScore() int
	CurrentStreak() int
	LongestStreak() int
	CompletionRate(lastDays int) float64
	TotalWorkouts(lastDays int) int
	AverageWorkoutsPerWeek(lastDays int) float64
	DisciplineTrend(lastDays int) iter.Seq[services.TrendPoint]
	Insight() (string, bool)
}

// ProfileDTO is the profile as shown to users.
type ProfileDTO struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Goal        string `json:"goal,omitempty"`
	DaysPerWeek int    `json:"days_per_week"`
	Experience  string `json:"experience,omitempty"`
}

// CheckInDTO is a check-in as shown to users.
type CheckInDTO struct {
	ID        uuid.UUID `json:"id"`
	Date      string    `json:"date"`
	Planned   bool      `json:"planned"`
	Completed bool      `json:"completed"`
	Note      string    `json:"note,omitempty"`
}

// ReminderDTO is the reminder preference.
type ReminderDTO struct {
	Enabled bool   `json:"enabled"`
	Time    string `json:"time"`
}

// StatusDTO summarizes today.
type StatusDTO struct {
	Onboarded     bool        `json:"onboarded"`
	Profile       *ProfileDTO `json:"profile,omitempty"`
	Today         *CheckInDTO `json:"today,omitempty"`
	Score         int         `json:"score"`
	CurrentStreak int         `json:"current_streak"`
	LongestStreak int         `json:"longest_streak"`
	Message       string      `json:"message"`
	Insight       string      `json:"insight,omitempty"`
	Reminder      ReminderDTO `json:"reminder"`
}

// StatsDTO summarizes a trailing window.
type StatsDTO struct {
	Days                   int     `json:"days"`
	CompletionRate         float64 `json:"completion_rate"`
	TotalWorkouts          int     `json:"total_workouts"`
	AverageWorkoutsPerWeek float64 `json:"average_workouts_per_week"`
	Score                  int     `json:"score"`
	CurrentStreak          int     `json:"current_streak"`
	LongestStreak          int     `json:"longest_streak"`
}

// TrendPointDTO is one day of the discipline trend.
type TrendPointDTO struct {
	Date  string `json:"date"`
	Score int    `json:"score"`
}

// Status returns today's summary.
func Status(r Reader) StatusDTO {
	status := StatusDTO{
		Onboarded:     r.IsOnboarded(),
		Profile:       ToProfileDTO(r.Profile()),
		Score:         r.DisciplineScore(),
		CurrentStreak: r.CurrentStreak(),
		LongestStreak: r.LongestStreak(),
		Message:       r.CoachMessage(),
		Reminder:      ToReminderDTO(r.Reminder()),
	}
	if today := r.TodaysCheckIn(); today != nil {
		dto := ToCheckInDTO(today)
		status.Today = &dto
	}
	if insight, ok := r.Insight(); ok {
		status.Insight = insight
	}
	return status
}

// Stats returns the window statistics. Non-positive days fall back to
// DefaultStatsDays; longer windows are capped at MaxWindowDays.
func Stats(r Reader, days int) StatsDTO {
	if days <= 0 {
		days = DefaultStatsDays
	}
	days = min(days, MaxWindowDays)
	return StatsDTO{
		Days:                   days,
		CompletionRate:         r.CompletionRate(days),
		TotalWorkouts:          r.TotalWorkouts(days),
		AverageWorkoutsPerWeek: r.AverageWorkoutsPerWeek(days),
		Score:                  r.DisciplineScore(),
		CurrentStreak:          r.CurrentStreak(),
		LongestStreak:          r.LongestStreak(),
	}
}

// Trend returns one point per day, oldest first, for at most MaxWindowDays days.
func Trend(r Reader, days int) []TrendPointDTO {
	days = min(days, MaxWindowDays)
	points := make([]TrendPointDTO, 0, max(days, 0))
	for p := range r.DisciplineTrend(days) {
		points = append(points, TrendPointDTO{Date: p.Date.Format(dateLayout), Score: p.Score})
	}
	return points
}

// History returns check-ins newest first. A positive limit caps the result.
func History(r Reader, limit int) []CheckInDTO {
	checkIns := r.CheckIns()
	history := make([]CheckInDTO, 0, len(checkIns))
	for i := len(checkIns) - 1; i >= 0; i-- {
		history = append(history, ToCheckInDTO(checkIns[i]))
		if limit > 0 && len(history) == limit {
			break
		}
	}
	return history
}

// ToProfileDTO converts a profile; nil stays nil.
func ToProfileDTO(p *domain.Profile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		Name:        p.Name,
		DisplayName: p.DisplayName(),
		Goal:        p.Goal,
		DaysPerWeek: p.DaysPerWeek,
		Experience:  string(p.Experience),
	}
}

// ToCheckInDTO converts a check-in.
func ToCheckInDTO(c *domain.CheckIn) CheckInDTO {
	dto := CheckInDTO{
		ID:        c.ID(),
		Date:      c.Date().Format(dateLayout),
		Planned:   c.PlannedToTrain(),
		Completed: c.CompletedTraining(),
	}
	if note := c.Note(); note != nil {
		dto.Note = *note
	}
	return dto
}

// ToReminderDTO converts reminder settings.
func ToReminderDTO(r domain.ReminderSettings) ReminderDTO {
	return ReminderDTO{Enabled: r.Enabled, Time: FormatClock(r.Hour, r.Minute)}
}

// FormatClock renders hour and minute as HH:MM.
func FormatClock(hour, minute int) string {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC).Format("15:04")
}

// ParseClock parses HH:MM into reminder settings that are enabled.
func ParseClock(value string) (domain.ReminderSettings, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return domain.ReminderSettings{}, domain.ErrInvalidReminderTime
	}
	return domain.ReminderSettings{Enabled: true, Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}
