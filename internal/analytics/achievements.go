package analytics

import (
	"fmt"
	"time"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
)

// Achievement thresholds.
const (
	StreakWeek          = 7
	StreakMonth         = 30
	BigStepDay          = 10000
	LifetimeSteps       = 100000
	RestedNightHours    = 7.0
	RestedNightsNeeded  = 7
	RestedLookbackDays  = 30
	HydrationAverageMin = 2.5
)

// ComputeTotals aggregates count, total steps and average water over all
// entries. The average is left unrounded.
func ComputeTotals(entries []models.Entry) models.Totals {
	t := models.Totals{Count: len(entries)}
	if t.Count == 0 {
		return t
	}
	var water float64
	for _, e := range entries {
		t.TotalSteps += e.Steps
		water += e.Water
	}
	t.AvgWater = water / float64(t.Count)
	return t
}

// Achievements evaluates every badge against the user's lifetime entries.
func Achievements(entries []models.Entry, streaks models.Streaks, today time.Time) *models.AchievementsReport {
	totals := ComputeTotals(entries)

	var first, best *models.Entry
	for i := range entries {
		e := &entries[i]
		if first == nil || e.Date.Before(first.Date) {
			first = e
		}
		if best == nil || e.Steps > best.Steps || (e.Steps == best.Steps && e.Date.Before(best.Date)) {
			best = e
		}
	}

	lookbackStart, lookbackEnd := InclusiveRange(today, RestedLookbackDays)
	restedNights := 0
	for _, e := range entries {
		if InRange(e.Date, lookbackStart, lookbackEnd) && e.Sleep >= RestedNightHours {
			restedNights++
		}
	}

	var firstDate, bestDate any
	maxSteps := 0
	if first != nil {
		firstDate = first.Date
	}
	if best != nil {
		bestDate = best.Date
		maxSteps = best.Steps
	}

	list := []models.Achievement{
		{
			ID:          "first-checkin",
			Title:       "First Check-In",
			Description: "Logged your first day",
			Earned:      totals.Count >= 1,
			Meta:        firstDate,
		},
		{
			ID:          "streak-7",
			Title:       "7-Day Streak",
			Description: "Checked in 7 days in a row",
			Earned:      streaks.Longest >= StreakWeek,
			Meta:        streaks.Longest,
		},
		{
			ID:          "streak-30",
			Title:       "30-Day Streak",
			Description: "Consistency over a month",
			Earned:      streaks.Longest >= StreakMonth,
			Meta:        streaks.Longest,
		},
		{
			ID:          "steps-10k-day",
			Title:       "10k Day",
			Description: "Hit 10,000 steps in a day",
			Earned:      maxSteps >= BigStepDay,
			Meta:        bestDate,
		},
		{
			ID:          "steps-100k-total",
			Title:       "100k Total Steps",
			Description: "Reached 100,000 all-time steps",
			Earned:      totals.TotalSteps >= LifetimeSteps,
			Meta:        totals.TotalSteps,
		},
		{
			ID:          "sleep-7n",
			Title:       "Rested Week",
			Description: fmt.Sprintf("%d nights of ≥%gh sleep", RestedNightsNeeded, RestedNightHours),
			Earned:      restedNights >= RestedNightsNeeded,
			Meta:        restedNights,
		},
		{
			ID:          "hydration-avg",
			Title:       "Hydration Hero",
			Description: fmt.Sprintf("Average ≥%gL water intake", HydrationAverageMin),
			Earned:      totals.AvgWater >= HydrationAverageMin,
			Meta:        totals.AvgWater,
		},
	}

	return &models.AchievementsReport{
		Streaks:      streaks,
		Totals:       totals,
		Achievements: list,
	}
}
