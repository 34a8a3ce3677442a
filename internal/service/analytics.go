package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/JonnyWalker81/pulse/backend/internal/analytics"
	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/repository"
)

type analyticsService struct {
	entryRepo repository.EntryRepository
	streaks   StreakService
	now       func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(entryRepo repository.EntryRepository, streaks StreakService) AnalyticsService {
	return &analyticsService{
		entryRepo: entryRepo,
		streaks:   streaks,
		now:       time.Now,
	}
}

// GetStats loads the current window, the previous window and the streaks in
// parallel, then aggregates.
func (s *analyticsService) GetStats(ctx context.Context, userID string, window int) (*models.WindowStats, error) {
	window = analytics.NormalizeWindow(window, analytics.DefaultStatsWindow)
	today := s.now()
	curStart, curEnd, prevStart, prevEnd := analytics.WindowRanges(today, window)

	var (
		current, previous []models.Entry
		streaks           models.Streaks
	)
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		current, err = s.entryRepo.ListByDateRange(ctx, userID, curStart, curEnd)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		previous, err = s.entryRepo.ListByDateRange(ctx, userID, prevStart, prevEnd)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		streaks, err = s.streaks.GetStreaks(ctx, userID)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load stats inputs: %w", err)
	}

	return analytics.BuildStats(window, current, previous, streaks, today), nil
}

func (s *analyticsService) GetCorrelations(ctx context.Context, userID string, window int) (*models.CorrelationReport, error) {
	window = analytics.NormalizeWindow(window, analytics.DefaultCorrelationWindow)
	today := s.now()
	start, end := analytics.InclusiveRange(today, window)

	entries, err := s.entryRepo.ListByDateRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	return analytics.Correlate(entries, window, today), nil
}

func (s *analyticsService) GetAchievements(ctx context.Context, userID string) (*models.AchievementsReport, error) {
	var (
		entries []models.Entry
		streaks models.Streaks
	)
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		entries, err = s.entryRepo.ListAll(ctx, userID)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		streaks, err = s.streaks.GetStreaks(ctx, userID)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load achievement inputs: %w", err)
	}

	return analytics.Achievements(entries, streaks, s.now()), nil
}
