package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
)

type reminderRow struct {
	UserID       string         `db:"user_id"`
	ReminderTime string         `db:"reminder_time"`
	NextFireAt   time.Time      `db:"next_fire_at"`
	LastFiredAt  sql.NullTime   `db:"last_fired_at"`
	LastStatus   sql.NullString `db:"last_status"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r reminderRow) toModel() models.ReminderSchedule {
	s := models.ReminderSchedule{
		UserID:       r.UserID,
		ReminderTime: r.ReminderTime,
		NextFireAt:   r.NextFireAt.UTC(),
		LastStatus:   r.LastStatus.String,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.LastFiredAt.Valid {
		t := r.LastFiredAt.Time.UTC()
		s.LastFiredAt = &t
	}
	return s
}

type reminderRepository struct {
	db *sqlx.DB
}

// NewReminderRepository creates a new reminder schedule repository
func NewReminderRepository(db *sqlx.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

// Upsert replaces the time and next fire of a user's schedule, keeping its firing history.
func (r *reminderRepository) Upsert(ctx context.Context, schedule *models.ReminderSchedule) error {
	now := time.Now().UTC()
	query := r.db.Rebind(`INSERT INTO reminder_schedules
		(user_id, reminder_time, next_fire_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			reminder_time = excluded.reminder_time,
			next_fire_at = excluded.next_fire_at,
			updated_at = excluded.updated_at`)

	_, err := r.db.ExecContext(ctx, query,
		schedule.UserID, schedule.ReminderTime, schedule.NextFireAt.UTC(), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert reminder schedule: %w", err)
	}
	return nil
}

func (r *reminderRepository) Get(ctx context.Context, userID string) (*models.ReminderSchedule, error) {
	var row reminderRow
	query := r.db.Rebind(`SELECT * FROM reminder_schedules WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reminder schedule: %w", err)
	}
	s := row.toModel()
	return &s, nil
}

func (r *reminderRepository) Delete(ctx context.Context, userID string) (bool, error) {
	query := r.db.Rebind(`DELETE FROM reminder_schedules WHERE user_id = ?`)
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete reminder schedule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete reminder schedule: %w", err)
	}
	return n > 0, nil
}

func (r *reminderRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]models.ReminderSchedule, error) {
	var rows []reminderRow
	query := r.db.Rebind(`SELECT * FROM reminder_schedules
		WHERE next_fire_at <= ? ORDER BY next_fire_at ASC LIMIT ?`)
	if err := r.db.SelectContext(ctx, &rows, query, now.UTC(), limit); err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}

	schedules := make([]models.ReminderSchedule, 0, len(rows))
	for _, row := range rows {
		schedules = append(schedules, row.toModel())
	}
	return schedules, nil
}

func (r *reminderRepository) MarkFired(ctx context.Context, userID string, firedAt, next time.Time, status string) error {
	query := r.db.Rebind(`UPDATE reminder_schedules
		SET last_fired_at = ?, last_status = ?, next_fire_at = ?, updated_at = ?
		WHERE user_id = ?`)
	res, err := r.db.ExecContext(ctx, query, firedAt.UTC(), status, next.UTC(), time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to mark reminder fired: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
