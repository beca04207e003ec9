package application

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"time"

	sharedApplication "github.com/felixgeelhaar/discipline/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/discipline/internal/shared/domain"
	"github.com/felixgeelhaar/discipline/internal/training/application/services"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/felixgeelhaar/discipline/pkg/observability"
	"github.com/google/uuid"
)

// EventPublisher publishes domain events produced by the store.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event sharedDomain.DomainEvent) error
}

// Clock returns the current time.
type Clock func() time.Time

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the time source.
func WithClock(clock Clock) StoreOption {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithUserID sets the user recorded in event metadata.
func WithUserID(id uuid.UUID) StoreOption {
	return func(s *Store) {
		s.userID = id
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m observability.Metrics) StoreOption {
	return func(s *Store) {
		s.metrics = m
	}
}

// CheckInResult is returned by LogCheckIn.
type CheckInResult struct {
	CheckIn *domain.CheckIn
	Created bool
	Score   int
	Streak  int
	Message string
}

// Store owns the profile and check-ins and mediates every mutation.
// Persistence and event publishing are side effects whose failures are
// logged and never returned.
type Store struct {
	gateway   domain.Gateway
	publisher EventPublisher
	coach     *services.Coach
	logger    *slog.Logger
	metrics   observability.Metrics
	clock     Clock
	userID    uuid.UUID

	mu               sync.Mutex
	profile          *domain.Profile
	checkIns         []*domain.CheckIn
	onboarded        bool
	reminder         domain.ReminderSettings
	lastCoachMessage string
}

// NewStore creates a store and loads the persisted snapshot. A missing or
// unreadable snapshot leaves the store empty.
func NewStore(
	ctx context.Context,
	gateway domain.Gateway,
	publisher EventPublisher,
	coach *services.Coach,
	logger *slog.Logger,
	opts ...StoreOption,
) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if coach == nil {
		coach = services.NewCoach()
	}

	s := &Store{
		gateway:   gateway,
		publisher: publisher,
		coach:     coach,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
		clock:     time.Now,
		checkIns:  make([]*domain.CheckIn, 0),
		reminder:  domain.DefaultReminderSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	if s.gateway == nil {
		return
	}

	snapshot, err := s.gateway.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load snapshot, starting empty", "error", err)
		s.metrics.Counter(observability.MetricStoreLoadFailed, 1)
		return
	}
	if snapshot == nil {
		s.logger.Debug("no snapshot stored, starting empty")
		return
	}

	snapshot.Normalize()
	if snapshot.Profile != nil {
		p := *snapshot.Profile
		s.profile = &p
	}
	s.checkIns = snapshot.CheckIns
	s.onboarded = snapshot.Onboarded
	s.reminder = snapshot.Reminder
	if s.reminder.Validate() != nil {
		s.reminder = domain.DefaultReminderSettings()
	}

	s.logger.Info("snapshot loaded",
		"check_ins", len(s.checkIns),
		"onboarded", s.onboarded,
	)
}

// CompleteOnboarding stores the profile and marks onboarding as done.
func (s *Store) CompleteOnboarding(ctx context.Context, profile domain.Profile) {
	s.mu.Lock()
	s.profile = &profile
	s.onboarded = true
	s.persistLocked(ctx)
	event := domain.NewOnboardingCompleted(profile, s.reminder)
	s.mu.Unlock()

	s.logger.Info("onboarding completed", "experience", profile.Experience, "days_per_week", profile.DaysPerWeek)
	s.publish(ctx, event)
}

// LogCheckIn records today's check-in. An existing check-in for today is
// updated in place, so repeated calls on one day leave a single entry.
func (s *Store) LogCheckIn(ctx context.Context, planned, completed bool, note *string) CheckInResult {
	s.mu.Lock()

	now := s.clock()
	checkIn, created := s.todaysCheckInLocked(now), false
	if checkIn != nil {
		checkIn.Update(planned, completed, note)
	} else {
		checkIn = domain.NewCheckIn(now, planned, completed, note)
		s.checkIns = append(s.checkIns, checkIn)
		created = true
	}

	s.persistLocked(ctx)

	score := services.DisciplineScore(s.checkIns, now)
	streak := services.CurrentStreak(s.checkIns, now)
	message := s.coach.Message(services.CoachInput{
		Score:           score,
		PlannedToday:    checkIn.PlannedToTrain(),
		CompletedToday:  checkIn.CompletedTraining(),
		Streak:          streak,
		HasCheckInToday: true,
	})
	s.lastCoachMessage = message

	result := CheckInResult{
		CheckIn: checkIn.Clone(),
		Created: created,
		Score:   score,
		Streak:  streak,
		Message: message,
	}
	event := domain.NewCheckInLogged(checkIn, created, score, streak)
	s.mu.Unlock()

	s.metrics.Counter(observability.MetricCheckInsLogged, 1)
	s.metrics.Gauge(observability.MetricDisciplineScore, float64(score))
	s.logger.Info("check-in logged",
		"check_in_id", result.CheckIn.ID(),
		"created", created,
		"score", score,
		"streak", streak,
	)
	s.publish(ctx, event)

	return result
}

// DeleteCheckIn removes the check-in with the given id. Unknown ids are ignored.
func (s *Store) DeleteCheckIn(ctx context.Context, id uuid.UUID) {
	s.mu.Lock()

	var removed *domain.CheckIn
	kept := s.checkIns[:0]
	for _, c := range s.checkIns {
		if c.ID() == id {
			removed = c
			continue
		}
		kept = append(kept, c)
	}
	s.checkIns = kept

	s.persistLocked(ctx)
	s.mu.Unlock()

	if removed == nil {
		s.logger.Debug("check-in not found, nothing deleted", "check_in_id", id)
		return
	}

	s.logger.Info("check-in deleted", "check_in_id", id)
	s.publish(ctx, domain.NewCheckInDeleted(removed))
}

// ResetAll clears profile, check-ins and settings, and removes the stored snapshot.
func (s *Store) ResetAll(ctx context.Context) {
	s.mu.Lock()

	removed := len(s.checkIns)
	s.profile = nil
	s.checkIns = make([]*domain.CheckIn, 0)
	s.onboarded = false
	s.reminder = domain.DefaultReminderSettings()
	s.lastCoachMessage = ""

	if s.gateway != nil {
		if err := s.gateway.Clear(ctx); err != nil {
			s.logger.Warn("failed to clear snapshot", "error", err)
			s.metrics.Counter(observability.MetricStoreClearFailed, 1)
		}
	}
	s.mu.Unlock()

	s.logger.Info("state reset", "removed_check_ins", removed)
	s.publish(ctx, domain.NewStateReset(removed))
}

// UpdateReminder changes the daily reminder preference.
func (s *Store) UpdateReminder(ctx context.Context, settings domain.ReminderSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.reminder = settings
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.Info("reminder updated",
		"enabled", settings.Enabled,
		"hour", settings.Hour,
		"minute", settings.Minute,
	)
	s.publish(ctx, domain.NewReminderChanged(settings))
	return nil
}

// Profile returns a copy of the profile, or nil before onboarding.
func (s *Store) Profile() *domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// IsOnboarded reports whether onboarding has been completed.
func (s *Store) IsOnboarded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onboarded
}

// Reminder returns the daily reminder preference.
func (s *Store) Reminder() domain.ReminderSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminder
}

// LastCoachMessage returns the message produced by the latest check-in, if any.
func (s *Store) LastCoachMessage() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCoachMessage, s.lastCoachMessage != ""
}

// CheckIns returns copies of all check-ins ordered by date.
func (s *Store) CheckIns() []*domain.CheckIn {
	s.mu.Lock()
	defer s.mu.Unlock()

	checkIns := s.cloneCheckInsLocked()
	domain.SortByDate(checkIns)
	return checkIns
}

// TodaysCheckIn returns a copy of today's check-in, or nil.
func (s *Store) TodaysCheckIn() *domain.CheckIn {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.todaysCheckInLocked(s.clock()); c != nil {
		return c.Clone()
	}
	return nil
}

// Snapshot returns the current state as a detached snapshot.
func (s *Store) Snapshot() *domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// CoachMessage evaluates the coach against the current state.
func (s *Store) CoachMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	in := services.CoachInput{
		Score:  services.DisciplineScore(s.checkIns, now),
		Streak: services.CurrentStreak(s.checkIns, now),
	}
	if today := s.todaysCheckInLocked(now); today != nil {
		in.HasCheckInToday = true
		in.PlannedToday = today.PlannedToTrain()
		in.CompletedToday = today.CompletedTraining()
	}
	return s.coach.Message(in)
}

// DisciplineScore returns the 14 day discipline score.
func (s *Store) DisciplineScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return services.DisciplineScore(s.checkIns, s.clock())
}

// CurrentStreak returns the streak ending today.
func (s *Store) CurrentStreak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return services.CurrentStreak(s.checkIns, s.clock())
}

// LongestStreak returns the longest streak in the history.
func (s *Store) LongestStreak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return services.LongestStreak(s.checkIns)
}

// CompletionRate returns the completed percentage over the last lastDays.
func (s *Store) CompletionRate(lastDays int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return services.CompletionRate(s.checkIns, lastDays, s.clock())
}

// TotalWorkouts returns the completed sessions over the last lastDays.
func (s *Store) TotalWorkouts(lastDays int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return services.TotalWorkouts(s.checkIns, lastDays, s.clock())
}

// AverageWorkoutsPerWeek returns the weekly workout rate over the last lastDays.
func (s *Store) AverageWorkoutsPerWeek(lastDays int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return services.AverageWorkoutsPerWeek(s.checkIns, lastDays, s.clock())
}

// DisciplineTrend returns the trend over the last lastDays, computed from the
// state at call time.
func (s *Store) DisciplineTrend(lastDays int) iter.Seq[services.TrendPoint] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return services.DisciplineTrend(s.cloneCheckInsLocked(), lastDays, s.clock())
}

// Insight returns a progress observation based on the last 30 days.
func (s *Store) Insight() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	return services.Insight(services.InsightInput{
		CheckInCount:   len(s.checkIns),
		CompletionRate: services.CompletionRate(s.checkIns, services.InsightWindowDays, now),
		CurrentStreak:  services.CurrentStreak(s.checkIns, now),
		LongestStreak:  services.LongestStreak(s.checkIns),
	})
}

func (s *Store) todaysCheckInLocked(now time.Time) *domain.CheckIn {
	for _, c := range s.checkIns {
		if domain.SameDay(c.Date(), now) {
			return c
		}
	}
	return nil
}

func (s *Store) cloneCheckInsLocked() []*domain.CheckIn {
	checkIns := make([]*domain.CheckIn, 0, len(s.checkIns))
	for _, c := range s.checkIns {
		checkIns = append(checkIns, c.Clone())
	}
	return checkIns
}

func (s *Store) snapshotLocked() *domain.Snapshot {
	snapshot := &domain.Snapshot{
		CheckIns:  s.cloneCheckInsLocked(),
		Onboarded: s.onboarded,
		Reminder:  s.reminder,
	}
	if s.profile != nil {
		p := *s.profile
		snapshot.Profile = &p
	}
	return snapshot
}

// persistLocked hands the current snapshot to the gateway. Errors are logged only.
func (s *Store) persistLocked(ctx context.Context) {
	if s.gateway == nil {
		return
	}
	timer := observability.StartTimer("store.save").WithMetrics(s.metrics)
	err := s.gateway.Save(ctx, s.snapshotLocked())
	timer.StopWithError(err)
	if err != nil {
		s.logger.Warn("failed to save snapshot", "error", err)
		s.metrics.Counter(observability.MetricStoreSaveFailed, 1)
		return
	}
	s.metrics.Counter(observability.MetricStoreSaveSucceeded, 1)
}

func (s *Store) publish(ctx context.Context, events ...sharedDomain.DomainEvent) {
	if s.publisher == nil {
		return
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.EventMetadataFromContext(ctx, s.userID))
	for _, event := range events {
		if err := s.publisher.PublishEvent(ctx, event); err != nil {
			s.metrics.Counter(observability.MetricEventsFailed, 1, observability.T("routing_key", event.RoutingKey()))
			s.logger.Warn("failed to publish event",
				"routing_key", event.RoutingKey(),
				"error", err,
			)
			continue
		}
		s.metrics.Counter(observability.MetricEventsPublished, 1, observability.T("routing_key", event.RoutingKey()))
	}
}
