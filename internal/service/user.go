package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/reminder"
	"github.com/JonnyWalker81/pulse/backend/internal/repository"
)

type userService struct {
	userRepo  repository.UserRepository
	reminders ReminderService
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, reminders ReminderService) UserService {
	return &userService{userRepo: userRepo, reminders: reminders}
}

func (s *userService) GetMe(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateMe applies name and preference changes. A change to the reminder
// time or the enabled flag reschedules the reminder.
func (s *userService) UpdateMe(ctx context.Context, userID string, req *models.UpdateMeRequest) (*models.User, error) {
	user, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}

	reschedule := false
	if pr := req.Preferences; pr != nil {
		p := &user.Preferences
		if pr.FocusArea != nil {
			p.FocusArea = *pr.FocusArea
		}
		if pr.ReminderTime.Set {
			if pr.ReminderTime.Valid && !reminder.ValidClock(pr.ReminderTime.Value) {
				return nil, ErrInvalidClock
			}
			pr.ReminderTime.Apply(&p.ReminderTime)
			reschedule = true
		}
		if pr.RemindersEnabled != nil {
			reschedule = reschedule || p.RemindersEnabled != *pr.RemindersEnabled
			p.RemindersEnabled = *pr.RemindersEnabled
		}
		if pr.DarkMode != nil {
			p.DarkMode = *pr.DarkMode
		}
		if pr.StepGoal != nil {
			p.StepGoal = *pr.StepGoal
		}
		if pr.WaterGoal != nil {
			p.WaterGoal = *pr.WaterGoal
		}
		if pr.SleepGoal != nil {
			p.SleepGoal = *pr.SleepGoal
		}
	}

	updated, err := s.userRepo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if reschedule {
		if err := s.reminders.Reconcile(ctx, updated); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// DeleteMe is not supported yet.
func (s *userService) DeleteMe(ctx context.Context, userID string) error {
	return ErrNotImplemented
}
