package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/JonnyWalker81/pulse/backend/internal/analytics"
	"github.com/JonnyWalker81/pulse/backend/internal/models"
)

const entryColumns = `id, user_id, day, mood, sleep, steps, water, notes, created_at, updated_at`

type entryRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Day       string    `db:"day"`
	Mood      int       `db:"mood"`
	Sleep     float64   `db:"sleep"`
	Steps     int       `db:"steps"`
	Water     float64   `db:"water"`
	Notes     string    `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r entryRow) toModel() (models.Entry, error) {
	day, err := analytics.ParseDay(r.Day)
	if err != nil {
		return models.Entry{}, fmt.Errorf("invalid stored day %q: %w", r.Day, err)
	}
	return models.Entry{
		ID:        r.ID,
		UserID:    r.UserID,
		Date:      day,
		Mood:      r.Mood,
		Sleep:     r.Sleep,
		Steps:     r.Steps,
		Water:     r.Water,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}, nil
}

func toEntries(rows []entryRow) ([]models.Entry, error) {
	entries := make([]models.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := row.toModel()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

type entryRepository struct {
	db *sqlx.DB
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *sqlx.DB) EntryRepository {
	return &entryRepository{db: db}
}

func (r *entryRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	now := time.Now().UTC()
	query := r.db.Rebind(`INSERT INTO entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, analytics.FormatDay(entry.Date),
		entry.Mood, entry.Sleep, entry.Steps, entry.Water, entry.Notes,
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	return r.GetByID(ctx, entry.UserID, entry.ID)
}

func (r *entryRepository) GetByID(ctx context.Context, userID, id string) (*models.Entry, error) {
	query := r.db.Rebind(`SELECT ` + entryColumns + ` FROM entries WHERE id = ? AND user_id = ?`)
	return r.getOne(ctx, query, id, userID)
}

func (r *entryRepository) GetByUserAndDay(ctx context.Context, userID string, day time.Time) (*models.Entry, error) {
	query := r.db.Rebind(`SELECT ` + entryColumns + ` FROM entries WHERE user_id = ? AND day = ?`)
	return r.getOne(ctx, query, userID, analytics.FormatDay(day))
}

func (r *entryRepository) getOne(ctx context.Context, query string, args ...any) (*models.Entry, error) {
	var row entryRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	e, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *entryRepository) Update(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	query := r.db.Rebind(`UPDATE entries SET day = ?, mood = ?, sleep = ?, steps = ?, water = ?,
		notes = ?, updated_at = ? WHERE id = ? AND user_id = ?`)

	res, err := r.db.ExecContext(ctx, query,
		analytics.FormatDay(entry.Date), entry.Mood, entry.Sleep, entry.Steps, entry.Water,
		entry.Notes, time.Now().UTC(), entry.ID, entry.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, entry.UserID, entry.ID)
}

func (r *entryRepository) Delete(ctx context.Context, userID, id string) error {
	query := r.db.Rebind(`DELETE FROM entries WHERE id = ? AND user_id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id, userID); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

// rangeClause builds the optional day bounds shared by List and Count.
func rangeClause(from, to *time.Time) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if from != nil {
		clauses = append(clauses, "day >= ?")
		args = append(args, analytics.FormatDay(*from))
	}
	if to != nil {
		clauses = append(clauses, "day <= ?")
		args = append(args, analytics.FormatDay(*to))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

func (r *entryRepository) List(ctx context.Context, userID string, filter models.EntryFilter) ([]models.Entry, error) {
	where, rangeArgs := rangeClause(filter.From, filter.To)
	args := append([]any{userID}, rangeArgs...)

	query := `SELECT ` + entryColumns + ` FROM entries WHERE user_id = ?` + where + ` ORDER BY day DESC`
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	var rows []entryRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return toEntries(rows)
}

func (r *entryRepository) Count(ctx context.Context, userID string, from, to *time.Time) (int64, error) {
	where, rangeArgs := rangeClause(from, to)
	args := append([]any{userID}, rangeArgs...)

	var n int64
	query := r.db.Rebind(`SELECT COUNT(*) FROM entries WHERE user_id = ?` + where)
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

func (r *entryRepository) ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]models.Entry, error) {
	var rows []entryRow
	query := r.db.Rebind(`SELECT ` + entryColumns + ` FROM entries
		WHERE user_id = ? AND day >= ? AND day <= ? ORDER BY day ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, userID, analytics.FormatDay(start), analytics.FormatDay(end)); err != nil {
		return nil, fmt.Errorf("failed to list entries by date range: %w", err)
	}
	return toEntries(rows)
}

func (r *entryRepository) ListAll(ctx context.Context, userID string) ([]models.Entry, error) {
	var rows []entryRow
	query := r.db.Rebind(`SELECT ` + entryColumns + ` FROM entries WHERE user_id = ? ORDER BY day ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return toEntries(rows)
}

func (r *entryRepository) ListDates(ctx context.Context, userID string) ([]time.Time, error) {
	var days []string
	query := r.db.Rebind(`SELECT day FROM entries WHERE user_id = ? ORDER BY day ASC`)
	if err := r.db.SelectContext(ctx, &days, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list entry dates: %w", err)
	}

	dates := make([]time.Time, 0, len(days))
	for _, d := range days {
		t, err := analytics.ParseDay(d)
		if err != nil {
			return nil, fmt.Errorf("invalid stored day %q: %w", d, err)
		}
		dates = append(dates, t)
	}
	return dates, nil
}

func (r *entryRepository) ListUpdatedSince(ctx context.Context, userID string, since *time.Time) ([]models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE user_id = ?`
	args := []any{userID}
	if since != nil {
		query += ` AND updated_at > ?`
		args = append(args, since.UTC())
	}
	query += ` ORDER BY day DESC`

	var rows []entryRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list updated entries: %w", err)
	}
	return toEntries(rows)
}
