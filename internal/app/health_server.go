package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/felixgeelhaar/discipline/pkg/observability"
)

const readyTimeout = 2 * time.Second

// HealthHandler serves /healthz (all checks), /readyz (storage only) and
// /statsz (counters and reminder schedule).
func (c *Container) HealthHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		report := c.Health.GetOverallHealth(r.Context())
		status := http.StatusOK
		if report.Status == observability.HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, report)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		result, ok := c.Health.CheckOne(checkCtx, "storage")
		if ok && result.Status == observability.HealthStatusUnhealthy {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
				"error":  result.Message,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.HandleFunc("/statsz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.Stats())
	})

	return mux
}

// Stats is a point-in-time view of process counters.
type Stats struct {
	Counters  map[string]int64 `json:"counters"`
	Reminders []ReminderEntry  `json:"reminders"`
}

// ReminderEntry is one armed reminder.
type ReminderEntry struct {
	Identifier string    `json:"identifier"`
	Hour       int       `json:"hour"`
	Minute     int       `json:"minute"`
	NextFire   time.Time `json:"next_fire"`
}

// Stats returns counters and the armed reminders.
func (c *Container) Stats() Stats {
	stats := Stats{Counters: map[string]int64{}, Reminders: []ReminderEntry{}}
	if c.Metrics != nil {
		stats.Counters = c.Metrics.Counters()
	}
	if c.Reminders != nil {
		for _, e := range c.Reminders.Entries() {
			stats.Reminders = append(stats.Reminders, ReminderEntry{
				Identifier: e.Identifier,
				Hour:       e.Hour,
				Minute:     e.Minute,
				NextFire:   e.Next,
			})
		}
	}
	return stats
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
