package service

import (
	"context"
	"time"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
)

// AuthService defines the interface for account and token business logic
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	IssueToken(user *models.User) (string, error)
	VerifyToken(token string) (*Claims, error)
}

// UserService defines the interface for profile business logic
type UserService interface {
	GetMe(ctx context.Context, userID string) (*models.User, error)
	UpdateMe(ctx context.Context, userID string, req *models.UpdateMeRequest) (*models.User, error)
	DeleteMe(ctx context.Context, userID string) error
}

// EntryService defines the interface for daily check-in business logic
type EntryService interface {
	Create(ctx context.Context, userID string, req *models.EntryRequest) (*models.Entry, error)
	Get(ctx context.Context, userID, id string) (*models.Entry, error)
	Update(ctx context.Context, userID, id string, req *models.EntryRequest) (*models.Entry, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, filter models.EntryFilter) (*models.EntryPage, error)
}

// StreakService defines the interface for streak computation
type StreakService interface {
	GetStreaks(ctx context.Context, userID string) (models.Streaks, error)
	// RecomputeStreaks also persists the current streak onto the user.
	RecomputeStreaks(ctx context.Context, userID string) (models.Streaks, error)
}

// AnalyticsService defines the interface for windowed stats, correlations and achievements
type AnalyticsService interface {
	GetStats(ctx context.Context, userID string, window int) (*models.WindowStats, error)
	GetCorrelations(ctx context.Context, userID string, window int) (*models.CorrelationReport, error)
	GetAchievements(ctx context.Context, userID string) (*models.AchievementsReport, error)
}

// InsightsService defines the interface for tip generation
type InsightsService interface {
	GetInsights(ctx context.Context, userID string, window int, useAI bool) (*models.InsightsReport, error)
}

// SyncService defines the interface for device sync
type SyncService interface {
	RegisterDevice(ctx context.Context, userID string, req *models.RegisterDeviceRequest) (*models.RegisterDeviceResponse, error)
	ListDevices(ctx context.Context, userID string) ([]models.Device, error)
	RemoveDevice(ctx context.Context, userID, deviceID string) (*models.RemoveDeviceResponse, error)
	GetSyncData(ctx context.Context, userID string, lastSync *time.Time, deviceID string) (*models.SyncData, error)
	GetStatus(ctx context.Context, userID string) (*models.SyncStatus, error)
}

// ExportService defines the interface for account export
type ExportService interface {
	Export(ctx context.Context, userID string, format models.ExportFormat) (*ExportFile, error)
}

// ReminderService defines the interface for reminder scheduling
type ReminderService interface {
	Update(ctx context.Context, userID string, req *models.ReminderRequest) (*models.ReminderResult, error)
	Status(ctx context.Context, userID string) (*models.ReminderStatus, error)
	Cancel(ctx context.Context, userID string) (bool, error)
	// Reconcile makes the stored schedule match the user's preferences.
	Reconcile(ctx context.Context, user *models.User) error
}
