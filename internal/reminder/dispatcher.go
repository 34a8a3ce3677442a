package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/pulse/backend/internal/analytics"
	"github.com/JonnyWalker81/pulse/backend/internal/logger"
	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/repository"
)

const (
	DefaultPollInterval = time.Minute
	defaultBatchSize    = 500
)

// Result counts the outcomes of one dispatch pass.
type Result struct {
	Due     int `json:"due"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Dispatcher polls reminder_schedules and fires the due rows. It is the only
// writer of next_fire_at besides scheduling.
type Dispatcher struct {
	reminders repository.ReminderRepository
	entries   repository.EntryRepository
	users     repository.UserRepository
	notifier  Notifier
	log       logger.Logger
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

// NewDispatcher creates a dispatcher. A non-positive interval uses DefaultPollInterval.
func NewDispatcher(
	reminders repository.ReminderRepository,
	entries repository.EntryRepository,
	users repository.UserRepository,
	notifier Notifier,
	log logger.Logger,
	interval time.Duration,
) *Dispatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Dispatcher{
		reminders: reminders,
		entries:   entries,
		users:     users,
		notifier:  notifier,
		log:       log,
		interval:  interval,
		batchSize: defaultBatchSize,
		now:       time.Now,
	}
}

// Run dispatches immediately and then on every tick until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.log.Info("reminder dispatcher started", logger.Duration("interval", d.interval))

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if res, err := d.RunOnce(ctx); err != nil {
			d.log.Error("reminder dispatch failed", logger.Err(err))
		} else if res.Due > 0 {
			d.log.Info("reminder dispatch complete",
				logger.Int("due", res.Due),
				logger.Int("sent", res.Sent),
				logger.Int("skipped", res.Skipped),
				logger.Int("failed", res.Failed),
			)
		}

		select {
		case <-ctx.Done():
			d.log.Info("reminder dispatcher stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce fires every schedule due at now. Overdue schedules fire once; missed
// days are not replayed because the next fire time is computed from now.
func (d *Dispatcher) RunOnce(ctx context.Context) (Result, error) {
	now := d.now().UTC()

	due, err := d.reminders.ListDue(ctx, now, d.batchSize)
	if err != nil {
		return Result{}, err
	}

	res := Result{Due: len(due)}
	for _, schedule := range due {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		status, err := d.fire(ctx, schedule, now)
		switch {
		case err != nil:
			res.Failed++
			d.log.Warn("reminder delivery failed",
				logger.String("user_id", schedule.UserID),
				logger.Err(err),
			)
		case status == models.ReminderStatusSent:
			res.Sent++
		default:
			res.Skipped++
		}
		if status == "" {
			continue
		}

		next, err := NextOccurrence(schedule.ReminderTime, now)
		if err != nil {
			d.log.Error("invalid stored reminder time, removing schedule",
				logger.String("user_id", schedule.UserID),
				logger.String("reminder_time", schedule.ReminderTime),
			)
			if _, err := d.reminders.Delete(ctx, schedule.UserID); err != nil {
				return res, err
			}
			continue
		}
		if err := d.reminders.MarkFired(ctx, schedule.UserID, now, next, status); err != nil {
			return res, fmt.Errorf("failed to advance schedule for %s: %w", schedule.UserID, err)
		}
	}

	return res, nil
}

// fire returns the status to record. An empty status means the schedule was removed.
func (d *Dispatcher) fire(ctx context.Context, schedule models.ReminderSchedule, now time.Time) (string, error) {
	user, err := d.users.GetByID(ctx, schedule.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_, err := d.reminders.Delete(ctx, schedule.UserID)
			return "", err
		}
		return models.ReminderStatusFailed, err
	}
	if !user.Preferences.RemindersEnabled {
		_, err := d.reminders.Delete(ctx, schedule.UserID)
		return "", err
	}

	_, err = d.entries.GetByUserAndDay(ctx, schedule.UserID, analytics.StartOfDay(now))
	switch {
	case err == nil:
		return models.ReminderStatusAlreadyCheckedIn, nil
	case !errors.Is(err, repository.ErrNotFound):
		return models.ReminderStatusFailed, err
	}

	err = d.notifier.Notify(ctx, Reminder{
		UserID:  user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Time:    schedule.ReminderTime,
		Message: DefaultMessage,
	})
	if err != nil {
		return models.ReminderStatusFailed, err
	}
	return models.ReminderStatusSent, nil
}
