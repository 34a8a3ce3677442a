package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/JonnyWalker81/pulse/backend/internal/analytics"
	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/repository"
)

const (
	// EditWindowDays is how long after its day an entry stays mutable.
	EditWindowDays = 7
	// MaxListRangeDays bounds from/to on entry listing.
	MaxListRangeDays = 365

	defaultPageLimit = 20
	maxPageLimit     = 100
)

type entryService struct {
	entryRepo repository.EntryRepository
	streaks   StreakService
	now       func() time.Time
}

// NewEntryService creates a new entry service
func NewEntryService(entryRepo repository.EntryRepository, streaks StreakService) EntryService {
	return &entryService{
		entryRepo: entryRepo,
		streaks:   streaks,
		now:       time.Now,
	}
}

func (s *entryService) Create(ctx context.Context, userID string, req *models.EntryRequest) (*models.Entry, error) {
	day, err := ParseEntryDate(req.Date)
	if err != nil {
		return nil, err
	}

	id := NewID()
	if req.ID != nil && *req.ID != "" {
		if err := ValidateUUIDv7(*req.ID, s.now()); err != nil {
			return nil, err
		}
		id = *req.ID
	}

	entry := &models.Entry{ID: id, UserID: userID, Date: day}
	applyEntryRequest(entry, req)

	created, err := s.entryRepo.Create(ctx, entry)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEntryConflict
		}
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	if _, err := s.streaks.RecomputeStreaks(ctx, userID); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *entryService) Get(ctx context.Context, userID, id string) (*models.Entry, error) {
	entry, err := s.entryRepo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

func (s *entryService) Update(ctx context.Context, userID, id string, req *models.EntryRequest) (*models.Entry, error) {
	entry, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkEditWindow(entry.Date); err != nil {
		return nil, err
	}

	day, err := ParseEntryDate(req.Date)
	if err != nil {
		return nil, err
	}
	entry.Date = day
	applyEntryRequest(entry, req)

	updated, err := s.entryRepo.Update(ctx, entry)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrEntryConflict
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}

	if _, err := s.streaks.RecomputeStreaks(ctx, userID); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete is idempotent: a missing entry is not an error.
func (s *entryService) Delete(ctx context.Context, userID, id string) error {
	entry, err := s.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return nil
		}
		return err
	}
	if err := s.checkEditWindow(entry.Date); err != nil {
		return err
	}

	if err := s.entryRepo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	_, err = s.streaks.RecomputeStreaks(ctx, userID)
	return err
}

func (s *entryService) List(ctx context.Context, userID string, filter models.EntryFilter) (*models.EntryPage, error) {
	if filter.From != nil {
		from := analytics.StartOfDay(*filter.From)
		filter.From = &from
	}
	if filter.To != nil {
		to := analytics.StartOfDay(*filter.To)
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil {
		if filter.From.After(*filter.To) {
			return nil, fmt.Errorf("%w: from is after to", ErrInvalidRange)
		}
		if analytics.DaysBetween(*filter.From, *filter.To) > MaxListRangeDays {
			return nil, fmt.Errorf("%w: range cannot exceed %d days", ErrInvalidRange, MaxListRangeDays)
		}
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	var (
		items []models.Entry
		total int64
	)
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		items, err = s.entryRepo.List(ctx, userID, filter)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		total, err = s.entryRepo.Count(ctx, userID, filter.From, filter.To)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	if items == nil {
		items = []models.Entry{}
	}
	return &models.EntryPage{Items: items, Page: filter.Page, Limit: filter.Limit, Total: total}, nil
}

func (s *entryService) checkEditWindow(day time.Time) error {
	if analytics.DaysBetween(day, s.now()) > EditWindowDays-1 {
		return ErrEditWindowExceeded
	}
	return nil
}

func applyEntryRequest(entry *models.Entry, req *models.EntryRequest) {
	entry.Mood = *req.Mood
	entry.Sleep = *req.Sleep
	entry.Steps = *req.Steps
	entry.Water = *req.Water
	entry.Notes = ""
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}
}

// ParseEntryDate accepts a YYYY-MM-DD day or an RFC 3339 timestamp and
// returns the UTC day start.
func ParseEntryDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if day, err := analytics.ParseDay(s); err == nil {
		return day, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return analytics.StartOfDay(t), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}
