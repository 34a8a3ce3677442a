package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/pulse/backend/internal/analytics"
	"github.com/JonnyWalker81/pulse/backend/internal/db"
	"github.com/JonnyWalker81/pulse/backend/internal/models"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conn, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func seedUser(t *testing.T, repo UserRepository, id, email string) *models.User {
	t.Helper()
	u, err := repo.Create(context.Background(), &models.User{
		ID:           id,
		Name:         "Test " + id,
		Email:        email,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return u
}

func day(s string) time.Time {
	t, err := analytics.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))

	created := seedUser(t, repo, "u1", "a@example.com")
	assert.Equal(t, "a@example.com", created.Email)
	assert.Equal(t, "hash", created.PasswordHash)
	assert.Nil(t, created.Preferences.ReminderTime)
	assert.False(t, created.CreatedAt.IsZero())

	_, err := repo.Create(ctx, &models.User{ID: "u2", Name: "dup", Email: "a@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)

	byEmail, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	rt := "07:45"
	created.Name = "Renamed"
	created.Preferences = models.Preferences{
		FocusArea:        "sleep",
		ReminderTime:     &rt,
		RemindersEnabled: true,
		DarkMode:         true,
		StepGoal:         8000,
		WaterGoal:        2.5,
		SleepGoal:        8,
	}
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, created.Preferences, updated.Preferences)

	require.NoError(t, repo.SetCurrentStreak(ctx, "u1", 4))
	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.CurrentStreak)

	assert.ErrorIs(t, repo.SetCurrentStreak(ctx, "missing", 1), ErrNotFound)
}

func TestEntryRepository(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	users := NewUserRepository(conn)
	repo := NewEntryRepository(conn)
	seedUser(t, users, "u1", "a@example.com")
	seedUser(t, users, "u2", "b@example.com")

	for i, d := range []string{"2025-03-10", "2025-03-12", "2025-03-11", "2025-02-01"} {
		_, err := repo.Create(ctx, &models.Entry{
			ID:     "e" + string(rune('a'+i)),
			UserID: "u1",
			Date:   day(d),
			Mood:   3,
			Sleep:  7.5,
			Steps:  1000 * (i + 1),
			Water:  2,
			Notes:  "note",
		})
		require.NoError(t, err)
	}

	t.Run("unique per user and day", func(t *testing.T) {
		_, err := repo.Create(ctx, &models.Entry{ID: "dup", UserID: "u1", Date: day("2025-03-10"), Mood: 1})
		assert.ErrorIs(t, err, ErrDuplicate)

		_, err = repo.Create(ctx, &models.Entry{ID: "other", UserID: "u2", Date: day("2025-03-10"), Mood: 1})
		assert.NoError(t, err)
	})

	t.Run("get enforces owner", func(t *testing.T) {
		e, err := repo.GetByID(ctx, "u1", "ea")
		require.NoError(t, err)
		assert.True(t, e.Date.Equal(day("2025-03-10")))
		assert.Equal(t, 7.5, e.Sleep)

		_, err = repo.GetByID(ctx, "u2", "ea")
		assert.ErrorIs(t, err, ErrNotFound)

		byDay, err := repo.GetByUserAndDay(ctx, "u1", day("2025-03-11").Add(5*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "ec", byDay.ID)
	})

	t.Run("list sorts descending and paginates", func(t *testing.T) {
		from := day("2025-03-01")
		items, err := repo.List(ctx, "u1", models.EntryFilter{From: &from, Page: 1, Limit: 2})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "eb", items[0].ID)
		assert.Equal(t, "ec", items[1].ID)

		items, err = repo.List(ctx, "u1", models.EntryFilter{From: &from, Page: 2, Limit: 2})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "ea", items[0].ID)

		n, err := repo.Count(ctx, "u1", &from, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		n, err = repo.Count(ctx, "u1", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	t.Run("date range is inclusive and ascending", func(t *testing.T) {
		items, err := repo.ListByDateRange(ctx, "u1", day("2025-03-10"), day("2025-03-11"))
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "ea", items[0].ID)
		assert.Equal(t, "ec", items[1].ID)

		dates, err := repo.ListDates(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, dates, 4)
		assert.True(t, dates[0].Equal(day("2025-02-01")))
	})

	t.Run("update moves the day and detects collisions", func(t *testing.T) {
		e, err := repo.GetByID(ctx, "u1", "ed")
		require.NoError(t, err)

		e.Date = day("2025-03-12")
		_, err = repo.Update(ctx, e)
		assert.ErrorIs(t, err, ErrDuplicate)

		e.Date = day("2025-03-13")
		e.Mood = 5
		updated, err := repo.Update(ctx, e)
		require.NoError(t, err)
		assert.Equal(t, 5, updated.Mood)
		assert.True(t, updated.Date.Equal(day("2025-03-13")))
		assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
	})

	t.Run("updated since", func(t *testing.T) {
		all, err := repo.ListUpdatedSince(ctx, "u1", nil)
		require.NoError(t, err)
		assert.Len(t, all, 4)

		future := time.Now().Add(time.Hour)
		none, err := repo.ListUpdatedSince(ctx, "u1", &future)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "u1", "ea"))
		require.NoError(t, repo.Delete(ctx, "u1", "ea"))
		_, err := repo.GetByID(ctx, "u1", "ea")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeviceRepository(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	seedUser(t, NewUserRepository(conn), "u1", "a@example.com")
	repo := NewDeviceRepository(conn)

	d, err := repo.Create(ctx, &models.Device{ID: "d1", UserID: "u1", Name: "Phone", Platform: "ios"})
	require.NoError(t, err)
	assert.Equal(t, "Phone", d.Name)

	_, err = repo.Create(ctx, &models.Device{ID: "d2", UserID: "u1", Name: "Laptop", Platform: "web"})
	require.NoError(t, err)

	devices, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, devices, 2)

	n, err := repo.CountByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	at := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastSync(ctx, "u1", "d1", at))
	assert.ErrorIs(t, repo.TouchLastSync(ctx, "u1", "nope", at), ErrNotFound)

	removed, err := repo.Delete(ctx, "u1", "d1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, "u1", "d1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestReminderRepository(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	users := NewUserRepository(conn)
	seedUser(t, users, "u1", "a@example.com")
	seedUser(t, users, "u2", "b@example.com")
	repo := NewReminderRepository(conn)

	base := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, &models.ReminderSchedule{UserID: "u1", ReminderTime: "09:00", NextFireAt: base}))
	require.NoError(t, repo.Upsert(ctx, &models.ReminderSchedule{UserID: "u2", ReminderTime: "21:00", NextFireAt: base.Add(12 * time.Hour)}))

	due, err := repo.ListDue(ctx, base.Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "u1", due[0].UserID)
	assert.Nil(t, due[0].LastFiredAt)

	next := base.Add(24 * time.Hour)
	require.NoError(t, repo.MarkFired(ctx, "u1", base.Add(time.Minute), next, models.ReminderStatusSent))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.NextFireAt.Equal(next))
	require.NotNil(t, got.LastFiredAt)
	assert.Equal(t, models.ReminderStatusSent, got.LastStatus)

	// rescheduling keeps the firing history
	require.NoError(t, repo.Upsert(ctx, &models.ReminderSchedule{UserID: "u1", ReminderTime: "10:30", NextFireAt: next.Add(90 * time.Minute)}))
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "10:30", got.ReminderTime)
	assert.NotNil(t, got.LastFiredAt)

	removed, err := repo.Delete(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, removed)
	_, err = repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIdempotencyRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewIdempotencyRepository(openTestDB(t))

	got, err := repo.Get(ctx, "k1", "POST /api/entries", "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Store(ctx, "k1", "POST /api/entries", "u1", []byte(`{"id":"e1"}`), 201))
	require.NoError(t, repo.Store(ctx, "k1", "POST /api/entries", "u1", []byte(`{"id":"e2"}`), 201))

	got, err = repo.Get(ctx, "k1", "POST /api/entries", "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.StatusCode)
	assert.JSONEq(t, `{"id":"e1"}`, string(got.ResponseBody))

	other, err := repo.Get(ctx, "k1", "POST /api/entries", "u2")
	require.NoError(t, err)
	assert.Nil(t, other)
}
