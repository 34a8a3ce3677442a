package service

import (
	"context"
	"errors"
	"testing"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
)

func newTestAnalyticsService(entries *mockEntryRepository, users *mockUserRepository) *analyticsService {
	return &analyticsService{
		entryRepo: entries,
		streaks:   newTestStreakService(entries, users),
		now:       fixedNow,
	}
}

func TestStreakService_RecomputePersists(t *testing.T) {
	ctx := context.Background()
	users := newMockUserRepository(testUser("u1"))
	entries := newMockEntryRepository(
		testEntry("a", "u1", 0, 3),
		testEntry("b", "u1", 1, 3),
		testEntry("c", "u1", 3, 3),
		testEntry("d", "u1", 4, 3),
		testEntry("e", "u1", 5, 3),
	)
	svc := newTestStreakService(entries, users)

	streaks, err := svc.RecomputeStreaks(ctx, "u1")
	if err != nil {
		t.Fatalf("RecomputeStreaks: %v", err)
	}
	if streaks != (models.Streaks{Current: 2, Longest: 3}) {
		t.Errorf("streaks = %+v, want 2/3", streaks)
	}
	if users.users["u1"].CurrentStreak != 2 {
		t.Errorf("persisted streak = %d", users.users["u1"].CurrentStreak)
	}

	if _, err := svc.RecomputeStreaks(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user = %v, want ErrUserNotFound", err)
	}
}

func TestAnalyticsService_GetStats(t *testing.T) {
	ctx := context.Background()
	var seed []models.Entry
	for i := 0; i < 10; i++ {
		e := testEntry("e"+string(rune('a'+i)), "u1", i, 3)
		e.Steps = (i + 1) * 100
		seed = append(seed, e)
	}
	svc := newTestAnalyticsService(newMockEntryRepository(seed...), newMockUserRepository(testUser("u1")))

	stats, err := svc.GetStats(ctx, "u1", 7)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Window != 7 || stats.TotalSteps != 2800 || stats.Previous.TotalSteps != 2700 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Trend.StepsDelta != 100 || stats.Streak.Current != 10 {
		t.Errorf("trend = %+v streak = %+v", stats.Trend, stats.Streak)
	}

	// unsupported windows fall back to 7
	stats, err = svc.GetStats(ctx, "u1", 9)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Window != 7 {
		t.Errorf("window = %d, want 7", stats.Window)
	}
}

func TestAnalyticsService_GetCorrelations(t *testing.T) {
	ctx := context.Background()
	entries := newMockEntryRepository(testEntry("a", "u1", 0, 5), testEntry("b", "u1", 1, 3))
	svc := newTestAnalyticsService(entries, newMockUserRepository(testUser("u1")))

	report, err := svc.GetCorrelations(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("GetCorrelations: %v", err)
	}
	if report.Window != 30 {
		t.Errorf("window = %d, want default 30", report.Window)
	}
	// sleep is constant across the seed entries
	if c := report.Correlations.SleepMood; c.N != 2 || c.R != 0 || c.Strength != models.StrengthNone {
		t.Errorf("sleep_mood = %+v", c)
	}
}

func TestAnalyticsService_GetAchievements(t *testing.T) {
	ctx := context.Background()
	var seed []models.Entry
	for i := 0; i < 7; i++ {
		seed = append(seed, testEntry("e"+string(rune('a'+i)), "u1", i, 4))
	}
	svc := newTestAnalyticsService(newMockEntryRepository(seed...), newMockUserRepository(testUser("u1")))

	report, err := svc.GetAchievements(ctx, "u1")
	if err != nil {
		t.Fatalf("GetAchievements: %v", err)
	}
	if report.Totals.Count != 7 || report.Totals.TotalSteps != 56000 {
		t.Errorf("totals = %+v", report.Totals)
	}
	earned := map[string]bool{}
	for _, a := range report.Achievements {
		earned[a.ID] = a.Earned
	}
	for id, want := range map[string]bool{
		"first-checkin":    true,
		"streak-7":         true,
		"streak-30":        false,
		"steps-10k-day":    false,
		"steps-100k-total": false,
		"sleep-7n":         true,
		"hydration-avg":    true,
	} {
		if earned[id] != want {
			t.Errorf("%s earned = %v, want %v", id, earned[id], want)
		}
	}
}
