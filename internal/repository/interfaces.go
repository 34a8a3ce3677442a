package repository

import (
	"context"
	"time"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Update persists name and preferences. Email, password and streak are untouched.
	Update(ctx context.Context, user *models.User) (*models.User, error)
	SetCurrentStreak(ctx context.Context, id string, streak int) error
}

// EntryRepository defines the interface for entry data access.
// Range bounds are inclusive calendar days.
type EntryRepository interface {
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	GetByID(ctx context.Context, userID, id string) (*models.Entry, error)
	GetByUserAndDay(ctx context.Context, userID string, day time.Time) (*models.Entry, error)
	Update(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	Delete(ctx context.Context, userID, id string) error
	// List returns a page sorted by date descending.
	List(ctx context.Context, userID string, filter models.EntryFilter) ([]models.Entry, error)
	Count(ctx context.Context, userID string, from, to *time.Time) (int64, error)
	// ListByDateRange returns entries sorted by date ascending.
	ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]models.Entry, error)
	// ListAll returns every entry sorted by date ascending.
	ListAll(ctx context.Context, userID string) ([]models.Entry, error)
	ListDates(ctx context.Context, userID string) ([]time.Time, error)
	// ListUpdatedSince returns entries sorted by date descending. A nil since returns all.
	ListUpdatedSince(ctx context.Context, userID string, since *time.Time) ([]models.Entry, error)
}

// DeviceRepository defines the interface for sync device data access
type DeviceRepository interface {
	Create(ctx context.Context, device *models.Device) (*models.Device, error)
	ListByUser(ctx context.Context, userID string) ([]models.Device, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, userID, id string) (bool, error)
	TouchLastSync(ctx context.Context, userID, id string, at time.Time) error
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// ReminderRepository defines the interface for reminder schedule data access
type ReminderRepository interface {
	Upsert(ctx context.Context, schedule *models.ReminderSchedule) error
	Get(ctx context.Context, userID string) (*models.ReminderSchedule, error)
	Delete(ctx context.Context, userID string) (bool, error)
	// ListDue returns schedules with next_fire_at <= now, oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]models.ReminderSchedule, error)
	MarkFired(ctx context.Context, userID string, firedAt, next time.Time, status string) error
}

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// Get returns nil, nil when no record exists
	Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error)
	Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error
}
