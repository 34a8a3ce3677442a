package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/repository"
)

const (
	defaultDeviceName     = "Unknown Device"
	defaultDevicePlatform = "web"
	syncStatusSynced      = "synced"
)

type syncService struct {
	userRepo   repository.UserRepository
	entryRepo  repository.EntryRepository
	deviceRepo repository.DeviceRepository
	now        func() time.Time
}

// NewSyncService creates a new sync service
func NewSyncService(
	userRepo repository.UserRepository,
	entryRepo repository.EntryRepository,
	deviceRepo repository.DeviceRepository,
) SyncService {
	return &syncService{
		userRepo:   userRepo,
		entryRepo:  entryRepo,
		deviceRepo: deviceRepo,
		now:        time.Now,
	}
}

func (s *syncService) RegisterDevice(ctx context.Context, userID string, req *models.RegisterDeviceRequest) (*models.RegisterDeviceResponse, error) {
	name := req.DeviceName
	if name == "" {
		name = defaultDeviceName
	}
	platform := req.Platform
	if platform == "" {
		platform = defaultDevicePlatform
	}

	device, err := s.deviceRepo.Create(ctx, &models.Device{
		ID:       newDeviceID(),
		UserID:   userID,
		Name:     name,
		Platform: platform,
		LastSync: s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register device: %w", err)
	}

	return &models.RegisterDeviceResponse{
		DeviceID:   device.ID,
		DeviceName: device.Name,
		Platform:   device.Platform,
		Message:    "Device registered successfully",
	}, nil
}

func (s *syncService) ListDevices(ctx context.Context, userID string) ([]models.Device, error) {
	devices, err := s.deviceRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	if devices == nil {
		devices = []models.Device{}
	}
	return devices, nil
}

// RemoveDevice reports removed=false for an unknown device instead of failing.
func (s *syncService) RemoveDevice(ctx context.Context, userID, deviceID string) (*models.RemoveDeviceResponse, error) {
	removed, err := s.deviceRepo.Delete(ctx, userID, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove device: %w", err)
	}
	msg := "Device removed successfully"
	if !removed {
		msg = "Device not found"
	}
	return &models.RemoveDeviceResponse{Removed: removed, Message: msg}, nil
}

// GetSyncData returns the user and every entry updated after lastSync. A nil
// lastSync returns everything. When deviceID is set that device's last sync
// is bumped.
func (s *syncService) GetSyncData(ctx context.Context, userID string, lastSync *time.Time, deviceID string) (*models.SyncData, error) {
	syncedAt := s.now().UTC()

	var (
		user    *models.User
		entries []models.Entry
	)
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		user, err = s.userRepo.GetByID(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		entries, err = s.entryRepo.ListUpdatedSince(ctx, userID, lastSync)
		return err
	})
	if err := p.Wait(); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load sync data: %w", err)
	}

	if deviceID != "" {
		if err := s.deviceRepo.TouchLastSync(ctx, userID, deviceID, syncedAt); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrDeviceNotFound
			}
			return nil, fmt.Errorf("failed to update device sync time: %w", err)
		}
	}

	if entries == nil {
		entries = []models.Entry{}
	}
	return &models.SyncData{
		User:        *user,
		Entries:     entries,
		SyncedAt:    syncedAt,
		DataVersion: models.DataVersion,
	}, nil
}

// GetStatus reports the user's last profile change as the last sync time.
func (s *syncService) GetStatus(ctx context.Context, userID string) (*models.SyncStatus, error) {
	var (
		user                    *models.User
		entryCount, deviceCount int64
	)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		user, err = s.userRepo.GetByID(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		entryCount, err = s.entryRepo.Count(ctx, userID, nil, nil)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		deviceCount, err = s.deviceRepo.CountByUser(ctx, userID)
		return err
	})
	if err := p.Wait(); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}

	return &models.SyncStatus{
		UserID:           userID,
		LastSyncedAt:     user.UpdatedAt,
		TotalDataPoints:  entryCount,
		DevicesConnected: deviceCount,
		SyncStatus:       syncStatusSynced,
	}, nil
}
