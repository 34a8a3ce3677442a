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

type idempotencyRow struct {
	Key          string    `db:"idem_key"`
	Route        string    `db:"route"`
	UserID       string    `db:"user_id"`
	ResponseBody string    `db:"response_body"`
	StatusCode   int       `db:"status_code"`
	CreatedAt    time.Time `db:"created_at"`
}

type idempotencyRepository struct {
	db *sqlx.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *sqlx.DB) IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error) {
	var row idempotencyRow
	query := r.db.Rebind(`SELECT * FROM idempotency_keys WHERE idem_key = ? AND route = ? AND user_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, key, route, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query idempotency key: %w", err)
	}

	return &models.IdempotencyKey{
		Key:          row.Key,
		Route:        row.Route,
		UserID:       row.UserID,
		ResponseBody: []byte(row.ResponseBody),
		StatusCode:   row.StatusCode,
		CreatedAt:    row.CreatedAt.UTC(),
	}, nil
}

// Store keeps the first response for a key; a concurrent duplicate is ignored.
func (r *idempotencyRepository) Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error {
	query := r.db.Rebind(`INSERT INTO idempotency_keys
		(idem_key, route, user_id, response_body, status_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query, key, route, userID, string(responseBody), statusCode, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}
