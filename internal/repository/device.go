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

type deviceRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	Platform  string    `db:"platform"`
	LastSync  time.Time `db:"last_sync"`
	CreatedAt time.Time `db:"created_at"`
}

func (r deviceRow) toModel() models.Device {
	return models.Device{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		Platform:  r.Platform,
		LastSync:  r.LastSync.UTC(),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type deviceRepository struct {
	db *sqlx.DB
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db *sqlx.DB) DeviceRepository {
	return &deviceRepository{db: db}
}

func (r *deviceRepository) Create(ctx context.Context, device *models.Device) (*models.Device, error) {
	now := time.Now().UTC()
	query := r.db.Rebind(`INSERT INTO devices (id, user_id, name, platform, last_sync, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, device.ID, device.UserID, device.Name, device.Platform, now, now); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	var row deviceRow
	query = r.db.Rebind(`SELECT * FROM devices WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, device.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read device: %w", err)
	}
	d := row.toModel()
	return &d, nil
}

func (r *deviceRepository) ListByUser(ctx context.Context, userID string) ([]models.Device, error) {
	var rows []deviceRow
	query := r.db.Rebind(`SELECT * FROM devices WHERE user_id = ? ORDER BY created_at ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]models.Device, 0, len(rows))
	for _, row := range rows {
		devices = append(devices, row.toModel())
	}
	return devices, nil
}

func (r *deviceRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	query := r.db.Rebind(`DELETE FROM devices WHERE id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete device: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete device: %w", err)
	}
	return n > 0, nil
}

func (r *deviceRepository) TouchLastSync(ctx context.Context, userID, id string, at time.Time) error {
	query := r.db.Rebind(`UPDATE devices SET last_sync = ? WHERE id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query, at.UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to update device sync time: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *deviceRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	query := r.db.Rebind(`SELECT COUNT(*) FROM devices WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &n, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count devices: %w", err)
	}
	return n, nil
}
