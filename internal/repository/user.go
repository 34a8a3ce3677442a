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

const userColumns = `id, name, email, password_hash, current_streak, focus_area, reminder_time,
	reminders_enabled, dark_mode, step_goal, water_goal, sleep_goal, created_at, updated_at`

type userRow struct {
	ID               string          `db:"id"`
	Name             string          `db:"name"`
	Email            string          `db:"email"`
	PasswordHash     string          `db:"password_hash"`
	CurrentStreak    int             `db:"current_streak"`
	FocusArea        sql.NullString  `db:"focus_area"`
	ReminderTime     sql.NullString  `db:"reminder_time"`
	RemindersEnabled bool            `db:"reminders_enabled"`
	DarkMode         bool            `db:"dark_mode"`
	StepGoal         sql.NullInt64   `db:"step_goal"`
	WaterGoal        sql.NullFloat64 `db:"water_goal"`
	SleepGoal        sql.NullFloat64 `db:"sleep_goal"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (r userRow) toModel() *models.User {
	u := &models.User{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email,
		PasswordHash:  r.PasswordHash,
		CurrentStreak: r.CurrentStreak,
		Preferences: models.Preferences{
			FocusArea:        r.FocusArea.String,
			RemindersEnabled: r.RemindersEnabled,
			DarkMode:         r.DarkMode,
			StepGoal:         int(r.StepGoal.Int64),
			WaterGoal:        r.WaterGoal.Float64,
			SleepGoal:        r.SleepGoal.Float64,
		},
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.ReminderTime.Valid {
		rt := r.ReminderTime.String
		u.Preferences.ReminderTime = &rt
	}
	return u
}

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC()
	p := user.Preferences
	query := r.db.Rebind(`INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.CurrentStreak,
		nullString(p.FocusArea), p.ReminderTime, p.RemindersEnabled, p.DarkMode,
		nullInt(p.StepGoal), nullFloat(p.WaterGoal), nullFloat(p.SleepGoal),
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return r.GetByID(ctx, user.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *userRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	var row userRow
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ?`)
	if err := r.db.GetContext(ctx, &row, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return row.toModel(), nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	p := user.Preferences
	query := r.db.Rebind(`UPDATE users SET name = ?, focus_area = ?, reminder_time = ?,
		reminders_enabled = ?, dark_mode = ?, step_goal = ?, water_goal = ?, sleep_goal = ?,
		updated_at = ? WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query,
		user.Name, nullString(p.FocusArea), p.ReminderTime, p.RemindersEnabled, p.DarkMode,
		nullInt(p.StepGoal), nullFloat(p.WaterGoal), nullFloat(p.SleepGoal),
		time.Now().UTC(), user.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, user.ID)
}

func (r *userRepository) SetCurrentStreak(ctx context.Context, id string, streak int) error {
	query := r.db.Rebind(`UPDATE users SET current_streak = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, streak, id)
	if err != nil {
		return fmt.Errorf("failed to set current streak: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n > 0}
}

func nullFloat(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: f > 0}
}
