package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/JonnyWalker81/pulse/backend/internal/analytics"
	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/repository"
)

// fixed clock shared by the service tests
var testNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func ptr[T any](v T) *T { return &v }

// mockUserRepository is a map-backed UserRepository
type mockUserRepository struct {
	mu          sync.Mutex
	users       map[string]*models.User
	updateCalls int
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, repository.ErrDuplicate
		}
	}
	cp := *user
	cp.CreatedAt, cp.UpdatedAt = testNow, testNow
	m.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	existing, ok := m.users[user.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	existing.Name = user.Name
	existing.Preferences = user.Preferences
	existing.UpdatedAt = testNow
	cp := *existing
	return &cp, nil
}

func (m *mockUserRepository) SetCurrentStreak(ctx context.Context, id string, streak int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.CurrentStreak = streak
	return nil
}

// mockEntryRepository is a map-backed EntryRepository
type mockEntryRepository struct {
	mu      sync.Mutex
	entries map[string]*models.Entry
}

func newMockEntryRepository(entries ...models.Entry) *mockEntryRepository {
	m := &mockEntryRepository{entries: make(map[string]*models.Entry)}
	for i := range entries {
		e := entries[i]
		m.entries[e.ID] = &e
	}
	return m
}

func (m *mockEntryRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == entry.ID || (e.UserID == entry.UserID && e.Date.Equal(entry.Date)) {
			return nil, repository.ErrDuplicate
		}
	}
	cp := *entry
	cp.CreatedAt, cp.UpdatedAt = testNow, testNow
	m.entries[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockEntryRepository) GetByID(ctx context.Context, userID, id string) (*models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok && e.UserID == userID {
		cp := *e
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockEntryRepository) GetByUserAndDay(ctx context.Context, userID string, day time.Time) (*models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.UserID == userID && e.Date.Equal(analytics.StartOfDay(day)) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockEntryRepository) Update(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	for _, e := range m.entries {
		if e.ID != entry.ID && e.UserID == entry.UserID && e.Date.Equal(entry.Date) {
			return nil, repository.ErrDuplicate
		}
	}
	cp := *entry
	cp.UpdatedAt = testNow
	m.entries[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockEntryRepository) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok && e.UserID == userID {
		delete(m.entries, id)
	}
	return nil
}

// stored returns a copy of what the repository currently holds for id.
func (m *mockEntryRepository) stored(id string) (models.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return models.Entry{}, false
	}
	return *e, true
}

// sorted returns the user's entries within [from, to], ascending by date.
func (m *mockEntryRepository) sorted(userID string, from, to *time.Time) []models.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Entry
	for _, e := range m.entries {
		if e.UserID != userID {
			continue
		}
		if from != nil && e.Date.Before(*from) {
			continue
		}
		if to != nil && e.Date.After(*to) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func reversed(entries []models.Entry) []models.Entry {
	out := make([]models.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

func (m *mockEntryRepository) List(ctx context.Context, userID string, filter models.EntryFilter) ([]models.Entry, error) {
	all := reversed(m.sorted(userID, filter.From, filter.To))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(all) {
		return nil, nil
	}
	end := start + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (m *mockEntryRepository) Count(ctx context.Context, userID string, from, to *time.Time) (int64, error) {
	return int64(len(m.sorted(userID, from, to))), nil
}

func (m *mockEntryRepository) ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]models.Entry, error) {
	return m.sorted(userID, &start, &end), nil
}

func (m *mockEntryRepository) ListAll(ctx context.Context, userID string) ([]models.Entry, error) {
	return m.sorted(userID, nil, nil), nil
}

func (m *mockEntryRepository) ListDates(ctx context.Context, userID string) ([]time.Time, error) {
	entries := m.sorted(userID, nil, nil)
	days := make([]time.Time, len(entries))
	for i, e := range entries {
		days[i] = e.Date
	}
	return days, nil
}

func (m *mockEntryRepository) ListUpdatedSince(ctx context.Context, userID string, since *time.Time) ([]models.Entry, error) {
	var out []models.Entry
	for _, e := range reversed(m.sorted(userID, nil, nil)) {
		if since == nil || e.UpdatedAt.After(*since) {
			out = append(out, e)
		}
	}
	return out, nil
}

// mockDeviceRepository is a map-backed DeviceRepository
type mockDeviceRepository struct {
	mu      sync.Mutex
	devices map[string]*models.Device
}

func newMockDeviceRepository() *mockDeviceRepository {
	return &mockDeviceRepository{devices: make(map[string]*models.Device)}
}

func (m *mockDeviceRepository) Create(ctx context.Context, device *models.Device) (*models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *device
	cp.CreatedAt = testNow
	m.devices[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockDeviceRepository) ListByUser(ctx context.Context, userID string) ([]models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Device
	for _, d := range m.devices {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *mockDeviceRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.devices[id]; ok && d.UserID == userID {
		delete(m.devices, id)
		return true, nil
	}
	return false, nil
}

func (m *mockDeviceRepository) TouchLastSync(ctx context.Context, userID, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[id]
	if !ok || d.UserID != userID {
		return repository.ErrNotFound
	}
	d.LastSync = at
	return nil
}

func (m *mockDeviceRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	devices, _ := m.ListByUser(ctx, userID)
	return int64(len(devices)), nil
}

// mockReminderRepository is a map-backed ReminderRepository
type mockReminderRepository struct {
	mu        sync.Mutex
	schedules map[string]*models.ReminderSchedule
}

func newMockReminderRepository() *mockReminderRepository {
	return &mockReminderRepository{schedules: make(map[string]*models.ReminderSchedule)}
}

func (m *mockReminderRepository) Upsert(ctx context.Context, schedule *models.ReminderSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.schedules[schedule.UserID]; ok {
		existing.ReminderTime = schedule.ReminderTime
		existing.NextFireAt = schedule.NextFireAt
		return nil
	}
	cp := *schedule
	m.schedules[cp.UserID] = &cp
	return nil
}

func (m *mockReminderRepository) Get(ctx context.Context, userID string) (*models.ReminderSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.schedules[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockReminderRepository) Delete(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.schedules[userID]
	delete(m.schedules, userID)
	return ok, nil
}

func (m *mockReminderRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]models.ReminderSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ReminderSchedule
	for _, s := range m.schedules {
		if !s.NextFireAt.After(now) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockReminderRepository) MarkFired(ctx context.Context, userID string, firedAt, next time.Time, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[userID]
	if !ok {
		return repository.ErrNotFound
	}
	s.LastFiredAt = &firedAt
	s.NextFireAt = next
	s.LastStatus = status
	return nil
}

// test helpers

func testUser(id string) *models.User {
	return &models.User{ID: id, Name: "Test " + id, Email: id + "@example.com", CreatedAt: testNow, UpdatedAt: testNow}
}

func testEntry(id, userID string, daysBack, mood int) models.Entry {
	return models.Entry{
		ID:        id,
		UserID:    userID,
		Date:      analytics.AddDays(testNow, -daysBack),
		Mood:      mood,
		Sleep:     7,
		Steps:     8000,
		Water:     2.5,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
}

func entryRequest(date string) *models.EntryRequest {
	return &models.EntryRequest{
		Date:  date,
		Mood:  ptr(4),
		Sleep: ptr(7.5),
		Steps: ptr(9000),
		Water: ptr(2.0),
	}
}

func newTestStreakService(entries *mockEntryRepository, users *mockUserRepository) *streakService {
	return &streakService{entryRepo: entries, userRepo: users, now: fixedNow}
}
