package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/discipline/internal/training/application"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/felixgeelhaar/discipline/pkg/config"
	"github.com/felixgeelhaar/discipline/pkg/observability"
	"github.com/google/uuid"
)

// ErrNotInitialized is returned by commands that need storage when none was wired.
var ErrNotInitialized = errors.New("app not initialized")

// App holds the CLI application dependencies.
type App struct {
	Store  *application.Store
	Health *observability.HealthRegistry
	Config *config.Config

	// Now is the clock used for exports.
	Now func() time.Time
}

// NewApp creates a new CLI application with all dependencies.
func NewApp(store *application.Store, health *observability.HealthRegistry, cfg *config.Config) *App {
	return &App{
		Store:  store,
		Health: health,
		Config: cfg,
		Now:    time.Now,
	}
}

// UserID returns the configured user, or uuid.Nil without config.
func (a *App) UserID() uuid.UUID {
	if a == nil || a.Config == nil {
		return uuid.Nil
	}
	return a.Config.UserID
}

// DefaultReminder returns the configured hour and minute, 20:00 without config.
func (a *App) DefaultReminder() (int, int) {
	if a == nil || a.Config == nil {
		return domain.DefaultReminderHour, domain.DefaultReminderMinute
	}
	return a.Config.ReminderHour, a.Config.ReminderMinute
}

var currentApp *App

// SetApp sets the global app instance.
func SetApp(app *App) {
	currentApp = app
}

// GetApp returns the global app instance.
func GetApp() *App {
	return currentApp
}

// RequireStore returns the app when a store is wired.
func RequireStore() (*App, error) {
	app := GetApp()
	if app == nil || app.Store == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
