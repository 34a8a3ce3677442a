package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/JonnyWalker81/pulse/backend/internal/config"
	"github.com/JonnyWalker81/pulse/backend/internal/db"
	"github.com/JonnyWalker81/pulse/backend/internal/logger"
	"github.com/JonnyWalker81/pulse/backend/internal/reminder"
	"github.com/JonnyWalker81/pulse/backend/internal/repository"
	"github.com/JonnyWalker81/pulse/backend/internal/service"
	"github.com/JonnyWalker81/pulse/backend/pkg/completion"
)

// app holds the wired repositories and services shared by the subcommands.
type app struct {
	db *sqlx.DB

	userRepo        repository.UserRepository
	entryRepo       repository.EntryRepository
	deviceRepo      repository.DeviceRepository
	reminderRepo    repository.ReminderRepository
	idempotencyRepo repository.IdempotencyRepository

	auth      service.AuthService
	users     service.UserService
	entries   service.EntryService
	streaks   service.StreakService
	analytics service.AnalyticsService
	insights  service.InsightsService
	sync      service.SyncService
	export    service.ExportService
	reminders service.ReminderService
}

func openDB(cfg *config.Config) (*sqlx.DB, error) {
	conn, err := db.Open(cfg.Database.Driver, cfg.Database.DSN, db.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return conn, nil
}

// newApp opens and migrates the database and wires every service.
func newApp(cfg *config.Config, log logger.Logger) (*app, error) {
	conn, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn.DB, cfg.Database.Driver); err != nil {
		conn.Close()
		return nil, err
	}

	a := &app{
		db:              conn,
		userRepo:        repository.NewUserRepository(conn),
		entryRepo:       repository.NewEntryRepository(conn),
		deviceRepo:      repository.NewDeviceRepository(conn),
		reminderRepo:    repository.NewReminderRepository(conn),
		idempotencyRepo: repository.NewIdempotencyRepository(conn),
	}

	var ai service.SuggestionProvider
	if cfg.AI.APIKey != "" {
		ai = service.NewAIProvider(completion.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey), service.AIConfig{Model: cfg.AI.Model})
		log.Info("AI suggestions enabled", logger.String("model", cfg.AI.Model))
	}

	a.streaks = service.NewStreakService(a.entryRepo, a.userRepo)
	a.auth = service.NewAuthService(a.userRepo, service.AuthConfig{
		JWTSecret:  cfg.Auth.JWTSecret,
		JWTExpiry:  cfg.Auth.JWTExpiry,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	a.reminders = service.NewReminderService(a.userRepo, a.reminderRepo)
	a.users = service.NewUserService(a.userRepo, a.reminders)
	a.entries = service.NewEntryService(a.entryRepo, a.streaks)
	a.analytics = service.NewAnalyticsService(a.entryRepo, a.streaks)
	a.insights = service.NewInsightsService(a.userRepo, a.analytics, ai)
	a.sync = service.NewSyncService(a.userRepo, a.entryRepo, a.deviceRepo)
	a.export = service.NewExportService(a.userRepo, a.entryRepo)

	return a, nil
}

// newDispatcher picks the Resend notifier when an API key is configured.
func (a *app) newDispatcher(cfg *config.Config, log logger.Logger) *reminder.Dispatcher {
	var notifier reminder.Notifier = reminder.NewLogNotifier(log)
	if cfg.Email.ResendAPIKey != "" {
		notifier = reminder.NewResendNotifier(cfg.Email.ResendAPIKey, cfg.Email.From)
	}
	return reminder.NewDispatcher(a.reminderRepo, a.entryRepo, a.userRepo, notifier, log, cfg.Reminders.PollInterval)
}

func (a *app) Close() error {
	return db.Close(a.db)
}
