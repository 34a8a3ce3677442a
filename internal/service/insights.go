package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/JonnyWalker81/pulse/backend/internal/analytics"
	"github.com/JonnyWalker81/pulse/backend/internal/logger"
	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/repository"
)

type insightsService struct {
	userRepo  repository.UserRepository
	analytics AnalyticsService
	rules     SuggestionProvider
	ai        SuggestionProvider
	now       func() time.Time
}

// NewInsightsService creates a new insights service. ai may be nil, in which
// case every request is answered by the rules.
func NewInsightsService(userRepo repository.UserRepository, analyticsService AnalyticsService, ai SuggestionProvider) InsightsService {
	return &insightsService{
		userRepo:  userRepo,
		analytics: analyticsService,
		rules:     NewRuleProvider(),
		ai:        ai,
		now:       time.Now,
	}
}

func (s *insightsService) GetInsights(ctx context.Context, userID string, window int, useAI bool) (*models.InsightsReport, error) {
	window = analytics.NormalizeWindow(window, analytics.DefaultInsightsWindow)

	var (
		stats *models.WindowStats
		user  *models.User
	)
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		stats, err = s.analytics.GetStats(ctx, userID, window)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		user, err = s.userRepo.GetByID(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	})
	if err := p.Wait(); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load insight inputs: %w", err)
	}

	in := analytics.TipInput{Window: window, Stats: stats, Preferences: user.Preferences}
	provider := s.rules
	if useAI && s.ai != nil {
		provider = s.ai
	}

	tips, err := provider.Suggest(ctx, in)
	if err != nil {
		logger.Ctx(ctx).Warn("suggestion provider failed, falling back to rules",
			logger.String("source", string(provider.Source())),
			logger.Err(err),
		)
		provider = s.rules
		tips, _ = provider.Suggest(ctx, in)
	}

	return &models.InsightsReport{
		Window:      window,
		Source:      provider.Source(),
		Tips:        analytics.Truncate(tips, analytics.MaxTips),
		GeneratedAt: s.now().UTC(),
	}, nil
}
