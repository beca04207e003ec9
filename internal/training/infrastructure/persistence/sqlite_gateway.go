package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/discipline/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/google/uuid"
)

// SQLiteGateway stores the snapshot for one user in SQLite.
type SQLiteGateway struct {
	db     *sql.DB
	userID uuid.UUID
}

// NewSQLiteGateway creates a gateway for the given user. The schema must
// already be migrated.
func NewSQLiteGateway(db *sql.DB, userID uuid.UUID) *SQLiteGateway {
	return &SQLiteGateway{db: db, userID: userID}
}

// Load reads the user's state row and check-ins.
func (g *SQLiteGateway) Load(ctx context.Context) (*domain.Snapshot, error) {
	snapshot := domain.EmptySnapshot()

	var (
		hasProfile, onboarded, reminderEnabled int64
		name, goal, experience                 string
		daysPerWeek, hour, minute              int64
	)
	err := g.db.QueryRowContext(ctx, `
		SELECT has_profile, name, goal, days_per_week, experience,
		       onboarded, reminder_enabled, reminder_hour, reminder_minute
		FROM training_state WHERE user_id = ?`,
		g.userID.String(),
	).Scan(&hasProfile, &name, &goal, &daysPerWeek, &experience,
		&onboarded, &reminderEnabled, &hour, &minute)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load training state: %w", err)
	}

	if hasProfile != 0 {
		snapshot.Profile = &domain.Profile{
			Name:        name,
			Goal:        goal,
			DaysPerWeek: int(daysPerWeek),
			Experience:  domain.Experience(experience),
		}
	}
	snapshot.Onboarded = onboarded != 0
	snapshot.Reminder = domain.ReminderSettings{
		Enabled: reminderEnabled != 0,
		Hour:    int(hour),
		Minute:  int(minute),
	}

	rows, err := g.db.QueryContext(ctx, `
		SELECT id, checked_at, planned_to_train, completed_training, note
		FROM training_check_ins WHERE user_id = ?
		ORDER BY checked_at`,
		g.userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load check-ins: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, checkedAt      string
			planned, completed int64
			note               sql.NullString
		)
		if err := rows.Scan(&id, &checkedAt, &planned, &completed, &note); err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}

		checkInID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid check-in id %q: %w", id, err)
		}
		date, err := time.Parse(time.RFC3339Nano, checkedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid check-in date %q: %w", checkedAt, err)
		}
		snapshot.CheckIns = append(snapshot.CheckIns, domain.RehydrateCheckIn(
			checkInID, date.Local(), planned != 0, completed != 0, fromNullString(note)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate check-ins: %w", err)
	}

	return snapshot, nil
}

// Save replaces the user's state and check-ins in one transaction.
func (g *SQLiteGateway) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var profile domain.Profile
	if snapshot.Profile != nil {
		profile = *snapshot.Profile
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO training_state (
			user_id, has_profile, name, goal, days_per_week, experience,
			onboarded, reminder_enabled, reminder_hour, reminder_minute, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			has_profile = excluded.has_profile,
			name = excluded.name,
			goal = excluded.goal,
			days_per_week = excluded.days_per_week,
			experience = excluded.experience,
			onboarded = excluded.onboarded,
			reminder_enabled = excluded.reminder_enabled,
			reminder_hour = excluded.reminder_hour,
			reminder_minute = excluded.reminder_minute,
			updated_at = excluded.updated_at`,
		g.userID.String(),
		boolToInt64(snapshot.Profile != nil),
		profile.Name,
		profile.Goal,
		profile.DaysPerWeek,
		string(profile.Experience),
		boolToInt64(snapshot.Onboarded),
		boolToInt64(snapshot.Reminder.Enabled),
		snapshot.Reminder.Hour,
		snapshot.Reminder.Minute,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save training state: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM training_check_ins WHERE user_id = ?`, g.userID.String()); err != nil {
		return fmt.Errorf("failed to replace check-ins: %w", err)
	}

	for _, c := range snapshot.CheckIns {
		if c == nil {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO training_check_ins (
				id, user_id, day, checked_at, planned_to_train, completed_training, note
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID().String(),
			g.userID.String(),
			domain.DayKey(c.Date()),
			c.Date().Format(time.RFC3339Nano),
			boolToInt64(c.PlannedToTrain()),
			boolToInt64(c.CompletedTraining()),
			toNullString(c.Note()),
		)
		if err != nil {
			return fmt.Errorf("failed to save check-in %s: %w", c.ID(), err)
		}
	}

	return tx.Commit()
}

// Clear deletes the user's rows.
func (g *SQLiteGateway) Clear(ctx context.Context) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM training_check_ins WHERE user_id = ?`, g.userID.String()); err != nil {
		return fmt.Errorf("failed to clear check-ins: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM training_state WHERE user_id = ?`, g.userID.String()); err != nil {
		return fmt.Errorf("failed to clear training state: %w", err)
	}
	return tx.Commit()
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
