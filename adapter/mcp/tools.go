package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/discipline/adapter/cli"
	"github.com/felixgeelhaar/discipline/internal/training/application/queries"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/felixgeelhaar/discipline/internal/training/infrastructure/export"
	"github.com/felixgeelhaar/discipline/pkg/observability"
	"github.com/google/uuid"
)

// ToolDependencies provides the application behind the MCP tools.
type ToolDependencies struct {
	App *cli.App
}

type onboardInput struct {
	Name        string `json:"name,omitempty"`
	Goal        string `json:"goal,omitempty"`
	DaysPerWeek int    `json:"days_per_week,omitempty"`
	Experience  string `json:"experience,omitempty"`
	Reminder    string `json:"reminder,omitempty"`
}

type checkInInput struct {
	Planned   *bool  `json:"planned,omitempty"`
	Completed bool   `json:"completed"`
	Note      string `json:"note,omitempty"`
}

type checkInOutput struct {
	CheckIn queries.CheckInDTO `json:"check_in"`
	Created bool               `json:"created"`
	Score   int                `json:"score"`
	Streak  int                `json:"streak"`
	Message string             `json:"message"`
}

type deleteInput struct {
	ID string `json:"id" jsonschema:"required"`
}

type daysInput struct {
	Days int `json:"days,omitempty"`
}

type historyInput struct {
	Limit int `json:"limit,omitempty"`
}

type reminderInput struct {
	Enabled bool   `json:"enabled"`
	Time    string `json:"time,omitempty"`
}

type exportOutput struct {
	Format   string `json:"format"`
	Events   int    `json:"events"`
	Calendar string `json:"calendar"`
}

type tools struct {
	app *cli.App
}

// RegisterTools registers the training tools.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}
	t := &tools{app: deps.App}

	srv.Tool("training.onboard").
		Description("Create or replace the training profile. Experience is beginner, intermediate or advanced; reminder is an optional HH:MM daily reminder.").
		Handler(t.onboard)

	srv.Tool("training.checkin").
		Description("Log today's check-in. A second call on the same day updates today's entry.").
		Handler(t.checkIn)

	srv.Tool("training.delete").
		Description("Delete a check-in by ID. Unknown IDs are ignored.").
		Handler(t.delete)

	srv.Tool("training.status").
		Description("Today's check-in, discipline score, streaks and coaching message").
		Handler(t.status)

	srv.Tool("training.stats").
		Description("Completion rate, workouts and weekly average over the last N days (default 30)").
		Handler(t.stats)

	srv.Tool("training.trend").
		Description("Daily discipline score for the last N days (default 14), oldest first").
		Handler(t.trend)

	srv.Tool("training.history").
		Description("Check-ins newest first, optionally limited").
		Handler(t.history)

	srv.Tool("training.reminder").
		Description("Enable the daily reminder at HH:MM, or disable it").
		Handler(t.reminder)

	srv.Tool("training.export").
		Description("Export completed workouts and the daily reminder as iCalendar text").
		Handler(t.export)

	srv.Tool("training.health").
		Description("Storage and broker health").
		Handler(t.health)

	return nil
}

func (t *tools) store() error {
	if t.app == nil || t.app.Store == nil {
		return cli.ErrNotInitialized
	}
	return nil
}

func (t *tools) onboard(ctx context.Context, input onboardInput) (*queries.StatusDTO, error) {
	if err := t.store(); err != nil {
		return nil, err
	}

	experience := domain.ExperienceBeginner
	if input.Experience != "" {
		experience = domain.Experience(strings.ToLower(strings.TrimSpace(input.Experience)))
		if !experience.IsValid() {
			return nil, fmt.Errorf("unknown experience %q", input.Experience)
		}
	}

	var reminder *domain.ReminderSettings
	if input.Reminder != "" {
		settings, err := queries.ParseClock(input.Reminder)
		if err != nil {
			return nil, err
		}
		reminder = &settings
	}

	t.app.Store.CompleteOnboarding(ctx, domain.Profile{
		Name:        strings.TrimSpace(input.Name),
		Goal:        strings.TrimSpace(input.Goal),
		DaysPerWeek: input.DaysPerWeek,
		Experience:  experience,
	})
	if reminder != nil {
		if err := t.app.Store.UpdateReminder(ctx, *reminder); err != nil {
			return nil, err
		}
	}

	status := queries.Status(t.app.Store)
	return &status, nil
}

func (t *tools) checkIn(ctx context.Context, input checkInInput) (*checkInOutput, error) {
	if err := t.store(); err != nil {
		return nil, err
	}

	planned := true
	if input.Planned != nil {
		planned = *input.Planned
	}
	var note *string
	if input.Note != "" {
		note = domain.StringPtr(input.Note)
	}

	result := t.app.Store.LogCheckIn(ctx, planned, input.Completed, note)
	return &checkInOutput{
		CheckIn: queries.ToCheckInDTO(result.CheckIn),
		Created: result.Created,
		Score:   result.Score,
		Streak:  result.Streak,
		Message: result.Message,
	}, nil
}

func (t *tools) delete(ctx context.Context, input deleteInput) (map[string]string, error) {
	if err := t.store(); err != nil {
		return nil, err
	}
	if input.ID == "" {
		return nil, errors.New("id is required")
	}
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid id: %w", err)
	}

	t.app.Store.DeleteCheckIn(ctx, id)
	return map[string]string{"deleted": id.String()}, nil
}

func (t *tools) status(ctx context.Context, input struct{}) (*queries.StatusDTO, error) {
	if err := t.store(); err != nil {
		return nil, err
	}
	status := queries.Status(t.app.Store)
	return &status, nil
}

func (t *tools) stats(ctx context.Context, input daysInput) (*queries.StatsDTO, error) {
	if err := t.store(); err != nil {
		return nil, err
	}
	if err := queries.CheckWindow(input.Days); err != nil {
		return nil, err
	}
	stats := queries.Stats(t.app.Store, input.Days)
	return &stats, nil
}

func (t *tools) trend(ctx context.Context, input daysInput) ([]queries.TrendPointDTO, error) {
	if err := t.store(); err != nil {
		return nil, err
	}
	days := input.Days
	if days == 0 {
		days = queries.DefaultTrendDays
	}
	if err := queries.CheckWindow(days); err != nil {
		return nil, err
	}
	return queries.Trend(t.app.Store, days), nil
}

func (t *tools) history(ctx context.Context, input historyInput) ([]queries.CheckInDTO, error) {
	if err := t.store(); err != nil {
		return nil, err
	}
	return queries.History(t.app.Store, input.Limit), nil
}

func (t *tools) reminder(ctx context.Context, input reminderInput) (*queries.ReminderDTO, error) {
	if err := t.store(); err != nil {
		return nil, err
	}

	settings := t.app.Store.Reminder()
	if input.Time != "" {
		parsed, err := queries.ParseClock(input.Time)
		if err != nil {
			return nil, err
		}
		settings.Hour, settings.Minute = parsed.Hour, parsed.Minute
	}
	settings.Enabled = input.Enabled

	if err := t.app.Store.UpdateReminder(ctx, settings); err != nil {
		return nil, err
	}
	dto := queries.ToReminderDTO(settings)
	return &dto, nil
}

func (t *tools) export(ctx context.Context, input struct{}) (*exportOutput, error) {
	if err := t.store(); err != nil {
		return nil, err
	}

	opts := export.Options{
		Profile:  t.app.Store.Profile(),
		CheckIns: t.app.Store.CheckIns(),
		Reminder: t.app.Store.Reminder(),
	}
	if t.app.Now != nil {
		opts.Now = t.app.Now()
	}
	cal := export.BuildCalendar(opts)

	var buf bytes.Buffer
	if err := export.Encode(&buf, cal); err != nil {
		return nil, err
	}
	return &exportOutput{Format: "ics", Events: len(cal.Children), Calendar: buf.String()}, nil
}

func (t *tools) health(ctx context.Context, input struct{}) (*observability.OverallHealth, error) {
	if t.app == nil {
		return nil, cli.ErrNotInitialized
	}
	if t.app.Health == nil {
		return &observability.OverallHealth{Status: observability.HealthStatusHealthy}, nil
	}
	report := t.app.Health.GetOverallHealth(ctx)
	return &report, nil
}
