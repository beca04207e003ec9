package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/discipline/internal/training/application"
	"github.com/felixgeelhaar/discipline/internal/training/application/queries"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/felixgeelhaar/discipline/internal/training/infrastructure/export"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 16

// TrainingHandler handles training API requests.
type TrainingHandler struct {
	store  *application.Store
	now    func() time.Time
	logger *slog.Logger
}

// TrainingHandlerConfig holds dependencies for the training handler.
type TrainingHandlerConfig struct {
	Store  *application.Store
	Now    func() time.Time
	Logger *slog.Logger
}

// NewTrainingHandler creates a new training handler.
func NewTrainingHandler(cfg TrainingHandlerConfig) *TrainingHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TrainingHandler{
		store:  cfg.Store,
		now:    cfg.Now,
		logger: cfg.Logger,
	}
}

type profileRequest struct {
	Name        string `json:"name"`
	Goal        string `json:"goal"`
	DaysPerWeek int    `json:"days_per_week"`
	Experience  string `json:"experience"`
}

type checkInRequest struct {
	Planned   *bool   `json:"planned"`
	Completed bool    `json:"completed"`
	Note      *string `json:"note"`
}

type checkInResponse struct {
	CheckIn queries.CheckInDTO `json:"check_in"`
	Created bool               `json:"created"`
	Score   int                `json:"score"`
	Streak  int                `json:"streak"`
	Message string             `json:"message"`
}

type reminderRequest struct {
	Enabled bool   `json:"enabled"`
	Time    string `json:"time"`
}

// GetStatus handles GET /api/v1/status
func (h *TrainingHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, queries.Status(h.store))
}

// GetStats handles GET /api/v1/stats
func (h *TrainingHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	days := parseIntParam(r, "days", queries.DefaultStatsDays)
	if err := queries.CheckWindow(days); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, queries.Stats(h.store, days))
}

// GetTrend handles GET /api/v1/trend
func (h *TrainingHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	days := parseIntParam(r, "days", queries.DefaultTrendDays)
	if err := queries.CheckWindow(days); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, queries.Trend(h.store, days))
}

// PutProfile handles PUT /api/v1/profile
func (h *TrainingHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	experience := domain.ExperienceBeginner
	if req.Experience != "" {
		experience = domain.Experience(strings.ToLower(strings.TrimSpace(req.Experience)))
		if !experience.IsValid() {
			writeError(w, http.StatusBadRequest, "experience must be beginner, intermediate or advanced")
			return
		}
	}

	h.store.CompleteOnboarding(r.Context(), domain.Profile{
		Name:        strings.TrimSpace(req.Name),
		Goal:        strings.TrimSpace(req.Goal),
		DaysPerWeek: req.DaysPerWeek,
		Experience:  experience,
	})
	writeJSON(w, http.StatusOK, queries.Status(h.store))
}

// PutReminder handles PUT /api/v1/reminder
func (h *TrainingHandler) PutReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings := h.store.Reminder()
	if req.Time != "" {
		parsed, err := queries.ParseClock(req.Time)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		settings.Hour, settings.Minute = parsed.Hour, parsed.Minute
	}
	settings.Enabled = req.Enabled

	if err := h.store.UpdateReminder(r.Context(), settings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, queries.ToReminderDTO(settings))
}

// ListCheckIns handles GET /api/v1/checkins
func (h *TrainingHandler) ListCheckIns(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 0)
	writeJSON(w, http.StatusOK, map[string]any{
		"check_ins": queries.History(h.store, limit),
	})
}

// LogCheckIn handles POST /api/v1/checkins
func (h *TrainingHandler) LogCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	planned := true
	if req.Planned != nil {
		planned = *req.Planned
	}

	result := h.store.LogCheckIn(r.Context(), planned, req.Completed, req.Note)

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, checkInResponse{
		CheckIn: queries.ToCheckInDTO(result.CheckIn),
		Created: result.Created,
		Score:   result.Score,
		Streak:  result.Streak,
		Message: result.Message,
	})
}

// DeleteCheckIn handles DELETE /api/v1/checkins/{id}
func (h *TrainingHandler) DeleteCheckIn(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid check-in ID")
		return
	}

	h.store.DeleteCheckIn(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// GetCalendar handles GET /api/v1/calendar.ics
func (h *TrainingHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	cal := export.BuildCalendar(export.Options{
		Profile:  h.store.Profile(),
		CheckIns: h.store.CheckIns(),
		Reminder: h.store.Reminder(),
		Now:      h.now(),
	})

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="training.ics"`)
	if err := export.Encode(w, cal); err != nil {
		h.logger.Error("failed to encode calendar", "error", err)
	}
}

// Reset handles POST /api/v1/reset
func (h *TrainingHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if !parseBoolParam(r, "confirm", false) {
		writeError(w, http.StatusBadRequest, "Reset requires confirm=true")
		return
	}
	h.store.ResetAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Helper functions

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func parseIntParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func parseBoolParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}
