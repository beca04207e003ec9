// Package reminder delivers the daily check-in reminder from a long-running process.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/felixgeelhaar/discipline/internal/training/domain"
)

// DefaultMessage is the text delivered with the daily reminder.
const DefaultMessage = "Time for today's check-in. Did you train?"

// Notifier delivers a reminder.
type Notifier interface {
	Notify(ctx context.Context, identifier, message string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, identifier, message string) error

func (f NotifierFunc) Notify(ctx context.Context, identifier, message string) error {
	return f(ctx, identifier, message)
}

// LogNotifier writes reminders to the log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs each reminder.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, identifier, message string) error {
	n.logger.InfoContext(ctx, "reminder", "identifier", identifier, "message", message)
	return nil
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithMessage overrides the reminder text.
func WithMessage(message string) Option {
	return func(s *Scheduler) {
		s.message = message
	}
}

// Entry describes a scheduled reminder.
type Entry struct {
	Identifier string
	Hour       int
	Minute     int
	Next       time.Time
}

type schedule struct {
	hour   int
	minute int
	next   time.Time
	timer  *time.Timer
}

// Scheduler fires daily reminders with in-process timers. Scheduling an
// identifier again replaces its previous schedule.
type Scheduler struct {
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
	message  string

	mu        sync.Mutex
	schedules map[string]*schedule
	closed    bool
}

// NewScheduler creates a scheduler that delivers through notifier.
func NewScheduler(notifier Notifier, logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}

	s := &Scheduler{
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
		message:   DefaultMessage,
		schedules: make(map[string]*schedule),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextOccurrence returns the first hour:minute strictly after now, in now's location.
func NextOccurrence(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}
	return next
}

// ScheduleDailyReminder arms identifier to fire every day at hour:minute.
func (s *Scheduler) ScheduleDailyReminder(ctx context.Context, identifier string, hour, minute int) error {
	if err := (domain.ReminderSettings{Hour: hour, Minute: minute}).Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("scheduler closed")
	}
	if existing, ok := s.schedules[identifier]; ok {
		existing.timer.Stop()
	}

	entry := &schedule{hour: hour, minute: minute}
	s.schedules[identifier] = entry
	s.armLocked(identifier, entry)

	s.logger.Debug("reminder armed",
		"identifier", identifier,
		"next", entry.next.Format(time.RFC3339),
	)
	return nil
}

// CancelReminder disarms identifier. Unknown identifiers are ignored.
func (s *Scheduler) CancelReminder(ctx context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.schedules[identifier]; ok {
		existing.timer.Stop()
		delete(s.schedules, identifier)
		s.logger.Debug("reminder cancelled", "identifier", identifier)
	}
	return nil
}

// Entries lists the armed reminders ordered by identifier.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.schedules))
	for id, sched := range s.schedules {
		entries = append(entries, Entry{
			Identifier: id,
			Hour:       sched.hour,
			Minute:     sched.minute,
			Next:       sched.next,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Identifier < entries[j].Identifier })
	return entries
}

// Close disarms every reminder.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sched := range s.schedules {
		sched.timer.Stop()
		delete(s.schedules, id)
	}
	s.closed = true
	return nil
}

func (s *Scheduler) armLocked(identifier string, entry *schedule) {
	entry.next = NextOccurrence(s.now(), entry.hour, entry.minute)
	entry.timer = time.AfterFunc(entry.next.Sub(s.now()), func() {
		s.fire(identifier, entry)
	})
}

func (s *Scheduler) fire(identifier string, entry *schedule) {
	if err := s.notifier.Notify(context.Background(), identifier, s.message); err != nil {
		s.logger.Warn("failed to deliver reminder",
			"identifier", identifier,
			"error", err,
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A replaced or cancelled schedule must not re-arm itself.
	if current, ok := s.schedules[identifier]; !ok || current != entry || s.closed {
		return
	}
	s.armLocked(identifier, entry)
}
