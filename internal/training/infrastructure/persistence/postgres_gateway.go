package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/discipline/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresGateway stores the snapshot for one user in PostgreSQL.
type PostgresGateway struct {
	pool   *pgxpool.Pool
	userID uuid.UUID
}

// NewPostgresGateway creates a gateway for the given user.
func NewPostgresGateway(pool *pgxpool.Pool, userID uuid.UUID) *PostgresGateway {
	return &PostgresGateway{pool: pool, userID: userID}
}

// stateRow represents a row of training_state.
type stateRow struct {
	HasProfile      bool
	Name            string
	Goal            string
	DaysPerWeek     int
	Experience      string
	Onboarded       bool
	ReminderEnabled bool
	ReminderHour    int
	ReminderMinute  int
}

// checkInRow represents a row of training_check_ins.
type checkInRow struct {
	ID        uuid.UUID
	CheckedAt time.Time
	Planned   bool
	Completed bool
	Note      *string
}

// Load reads the user's state row and check-ins.
func (g *PostgresGateway) Load(ctx context.Context) (*domain.Snapshot, error) {
	var row stateRow
	err := g.pool.QueryRow(ctx, `
		SELECT has_profile, name, goal, days_per_week, experience,
		       onboarded, reminder_enabled, reminder_hour, reminder_minute
		FROM training_state WHERE user_id = $1`,
		g.userID,
	).Scan(&row.HasProfile, &row.Name, &row.Goal, &row.DaysPerWeek, &row.Experience,
		&row.Onboarded, &row.ReminderEnabled, &row.ReminderHour, &row.ReminderMinute)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load training state: %w", err)
	}

	snapshot := domain.EmptySnapshot()
	if row.HasProfile {
		snapshot.Profile = &domain.Profile{
			Name:        row.Name,
			Goal:        row.Goal,
			DaysPerWeek: row.DaysPerWeek,
			Experience:  domain.Experience(row.Experience),
		}
	}
	snapshot.Onboarded = row.Onboarded
	snapshot.Reminder = domain.ReminderSettings{
		Enabled: row.ReminderEnabled,
		Hour:    row.ReminderHour,
		Minute:  row.ReminderMinute,
	}

	rows, err := g.pool.Query(ctx, `
		SELECT id, checked_at, planned_to_train, completed_training, note
		FROM training_check_ins WHERE user_id = $1
		ORDER BY checked_at`,
		g.userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load check-ins: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c checkInRow
		if err := rows.Scan(&c.ID, &c.CheckedAt, &c.Planned, &c.Completed, &c.Note); err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		snapshot.CheckIns = append(snapshot.CheckIns,
			domain.RehydrateCheckIn(c.ID, c.CheckedAt.Local(), c.Planned, c.Completed, c.Note))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate check-ins: %w", err)
	}

	return snapshot, nil
}

// Save replaces the user's state and check-ins in one transaction.
func (g *PostgresGateway) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var profile domain.Profile
	if snapshot.Profile != nil {
		profile = *snapshot.Profile
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO training_state (
			user_id, has_profile, name, goal, days_per_week, experience,
			onboarded, reminder_enabled, reminder_hour, reminder_minute, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			has_profile = EXCLUDED.has_profile,
			name = EXCLUDED.name,
			goal = EXCLUDED.goal,
			days_per_week = EXCLUDED.days_per_week,
			experience = EXCLUDED.experience,
			onboarded = EXCLUDED.onboarded,
			reminder_enabled = EXCLUDED.reminder_enabled,
			reminder_hour = EXCLUDED.reminder_hour,
			reminder_minute = EXCLUDED.reminder_minute,
			updated_at = NOW()`,
		g.userID,
		snapshot.Profile != nil,
		profile.Name,
		profile.Goal,
		profile.DaysPerWeek,
		string(profile.Experience),
		snapshot.Onboarded,
		snapshot.Reminder.Enabled,
		snapshot.Reminder.Hour,
		snapshot.Reminder.Minute,
	)
	if err != nil {
		return fmt.Errorf("failed to save training state: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM training_check_ins WHERE user_id = $1`, g.userID); err != nil {
		return fmt.Errorf("failed to replace check-ins: %w", err)
	}

	batch := &pgx.Batch{}
	for _, c := range snapshot.CheckIns {
		if c == nil {
			continue
		}
		batch.Queue(`
			INSERT INTO training_check_ins (
				id, user_id, day, checked_at, planned_to_train, completed_training, note
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID(),
			g.userID,
			domain.DayKey(c.Date()),
			c.Date(),
			c.PlannedToTrain(),
			c.CompletedTraining(),
			c.Note(),
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save check-ins: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Clear deletes the user's rows. Check-ins go with the state row.
func (g *PostgresGateway) Clear(ctx context.Context) error {
	if _, err := g.pool.Exec(ctx, `DELETE FROM training_state WHERE user_id = $1`, g.userID); err != nil {
		return fmt.Errorf("failed to clear training state: %w", err)
	}
	return nil
}
