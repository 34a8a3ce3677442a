package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/reminder"
	"github.com/JonnyWalker81/pulse/backend/internal/repository"
)

type reminderService struct {
	userRepo     repository.UserRepository
	reminderRepo repository.ReminderRepository
	now          func() time.Time
}

// NewReminderService creates a new reminder service
func NewReminderService(userRepo repository.UserRepository, reminderRepo repository.ReminderRepository) ReminderService {
	return &reminderService{
		userRepo:     userRepo,
		reminderRepo: reminderRepo,
		now:          time.Now,
	}
}

func (s *reminderService) Update(ctx context.Context, userID string, req *models.ReminderRequest) (*models.ReminderResult, error) {
	if req.ReminderTime == nil && req.RemindersEnabled == nil {
		return nil, ErrInvalidReminder
	}
	if req.ReminderTime != nil && !reminder.ValidClock(*req.ReminderTime) {
		return nil, ErrInvalidClock
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.RemindersEnabled != nil && !*req.RemindersEnabled {
		user.Preferences.RemindersEnabled = false
		if req.ReminderTime != nil {
			user.Preferences.ReminderTime = req.ReminderTime
		}
		if _, err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to save reminder preferences: %w", err)
		}
		if _, err := s.reminderRepo.Delete(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to cancel reminder: %w", err)
		}
		return &models.ReminderResult{Scheduled: false}, nil
	}

	hhmm := models.DefaultReminderTime
	switch {
	case req.ReminderTime != nil:
		hhmm = *req.ReminderTime
	case user.Preferences.ReminderTime != nil && reminder.ValidClock(*user.Preferences.ReminderTime):
		hhmm = *user.Preferences.ReminderTime
	}

	user.Preferences.ReminderTime = &hhmm
	user.Preferences.RemindersEnabled = true
	if _, err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save reminder preferences: %w", err)
	}

	next, err := s.schedule(ctx, userID, hhmm)
	if err != nil {
		return nil, err
	}
	return &models.ReminderResult{Scheduled: true, Time: hhmm, NextFireAt: &next}, nil
}

func (s *reminderService) Status(ctx context.Context, userID string) (*models.ReminderStatus, error) {
	schedule, err := s.reminderRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &models.ReminderStatus{Scheduled: false}, nil
		}
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	next := schedule.NextFireAt
	return &models.ReminderStatus{
		Scheduled:   true,
		Time:        schedule.ReminderTime,
		NextFireAt:  &next,
		LastFiredAt: schedule.LastFiredAt,
	}, nil
}

// Cancel removes the schedule and turns reminders off in the preferences.
func (s *reminderService) Cancel(ctx context.Context, userID string) (bool, error) {
	removed, err := s.reminderRepo.Delete(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to cancel reminder: %w", err)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return removed, err
	}
	if user.Preferences.RemindersEnabled {
		user.Preferences.RemindersEnabled = false
		if _, err := s.userRepo.Update(ctx, user); err != nil {
			return removed, fmt.Errorf("failed to save reminder preferences: %w", err)
		}
	}
	return removed, nil
}

func (s *reminderService) Reconcile(ctx context.Context, user *models.User) error {
	p := user.Preferences
	if !p.RemindersEnabled {
		if _, err := s.reminderRepo.Delete(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to cancel reminder: %w", err)
		}
		return nil
	}

	hhmm := models.DefaultReminderTime
	if p.ReminderTime != nil && *p.ReminderTime != "" {
		hhmm = *p.ReminderTime
	}
	_, err := s.schedule(ctx, user.ID, hhmm)
	return err
}

func (s *reminderService) schedule(ctx context.Context, userID, hhmm string) (time.Time, error) {
	next, err := reminder.NextOccurrence(hhmm, s.now())
	if err != nil {
		return time.Time{}, ErrInvalidClock
	}
	err = s.reminderRepo.Upsert(ctx, &models.ReminderSchedule{
		UserID:       userID,
		ReminderTime: hhmm,
		NextFireAt:   next,
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to schedule reminder: %w", err)
	}
	return next, nil
}

func (s *reminderService) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
