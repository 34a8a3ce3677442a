package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/pulse/backend/internal/analytics"
	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/repository"
)

type streakService struct {
	entryRepo repository.EntryRepository
	userRepo  repository.UserRepository
	now       func() time.Time
}

// NewStreakService creates a new streak service
func NewStreakService(entryRepo repository.EntryRepository, userRepo repository.UserRepository) StreakService {
	return &streakService{
		entryRepo: entryRepo,
		userRepo:  userRepo,
		now:       time.Now,
	}
}

func (s *streakService) GetStreaks(ctx context.Context, userID string) (models.Streaks, error) {
	days, err := s.entryRepo.ListDates(ctx, userID)
	if err != nil {
		return models.Streaks{}, fmt.Errorf("failed to load entry dates: %w", err)
	}
	return analytics.ComputeStreaks(days, s.now()), nil
}

func (s *streakService) RecomputeStreaks(ctx context.Context, userID string) (models.Streaks, error) {
	streaks, err := s.GetStreaks(ctx, userID)
	if err != nil {
		return models.Streaks{}, err
	}
	if err := s.userRepo.SetCurrentStreak(ctx, userID, streaks.Current); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Streaks{}, ErrUserNotFound
		}
		return models.Streaks{}, fmt.Errorf("failed to persist streak: %w", err)
	}
	return streaks, nil
}
