package analytics

import (
	"math"
	"time"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
)

// Default window sizes per report.
const (
	DefaultStatsWindow       = 7
	DefaultCorrelationWindow = 30
	DefaultInsightsWindow    = 14
)

// NormalizeWindow coerces a requested window size to one of 7, 14 or 30,
// falling back to def for anything else.
func NormalizeWindow(requested, def int) int {
	switch requested {
	case 7, 14, 30:
		return requested
	default:
		return def
	}
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Aggregate averages mood, sleep and water and sums steps over entries whose
// day lies in [start, end]. An empty window yields zeros.
func Aggregate(entries []models.Entry, start, end time.Time) models.WindowAggregate {
	var n int
	var mood, sleep, water float64
	var steps int
	for _, e := range entries {
		if !InRange(e.Date, start, end) {
			continue
		}
		n++
		mood += float64(e.Mood)
		sleep += e.Sleep
		water += e.Water
		steps += e.Steps
	}
	if n == 0 {
		return models.WindowAggregate{}
	}
	div := float64(n)
	return models.WindowAggregate{
		Averages: models.Averages{
			Mood:  Round(mood/div, 2),
			Sleep: Round(sleep/div, 2),
			Water: Round(water/div, 2),
		},
		TotalSteps: steps,
	}
}

// ComputeTrend returns current minus previous, rounded to 2 decimals for
// averages and as a plain integer for steps.
func ComputeTrend(current, previous models.WindowAggregate) models.Trend {
	return models.Trend{
		MoodDelta:  Round(current.Averages.Mood-previous.Averages.Mood, 2),
		SleepDelta: Round(current.Averages.Sleep-previous.Averages.Sleep, 2),
		StepsDelta: current.TotalSteps - previous.TotalSteps,
		WaterDelta: Round(current.Averages.Water-previous.Averages.Water, 2),
	}
}

// WindowRanges returns the current window ending on today and the
// immediately preceding window of equal length.
func WindowRanges(today time.Time, window int) (curStart, curEnd, prevStart, prevEnd time.Time) {
	curStart, curEnd = InclusiveRange(today, window)
	return curStart, curEnd, AddDays(curStart, -window), AddDays(curEnd, -window)
}

// BuildStats composes the stats report from the two window snapshots and streaks.
func BuildStats(window int, current, previous []models.Entry, streaks models.Streaks, today time.Time) *models.WindowStats {
	curStart, curEnd, prevStart, prevEnd := WindowRanges(today, window)
	cur := Aggregate(current, curStart, curEnd)
	prev := Aggregate(previous, prevStart, prevEnd)
	return &models.WindowStats{
		Window:     window,
		Averages:   cur.Averages,
		TotalSteps: cur.TotalSteps,
		Previous:   prev,
		Streak:     streaks,
		Trend:      ComputeTrend(cur, prev),
	}
}
