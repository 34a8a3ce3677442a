package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"gonum.org/v1/gonum/stat"
)

// Correlation strength thresholds on |r|.
const (
	StrongThreshold   = 0.7
	ModerateThreshold = 0.4
	WeakThreshold     = 0.2
)

// Pearson returns the product-moment correlation of x and y rounded to 3
// decimals. Zero variance or fewer than two samples yield 0.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n < 2 {
		return 0
	}
	r := stat.Correlation(x[:n], y[:n], nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	r = math.Max(-1, math.Min(1, r))
	r = Round(r, 3)
	if r == 0 {
		// normalize negative zero
		return 0
	}
	return r
}

// Classify labels a coefficient by magnitude.
func Classify(r float64) models.Strength {
	a := math.Abs(r)
	switch {
	case a >= StrongThreshold:
		return models.StrengthStrong
	case a >= ModerateThreshold:
		return models.StrengthModerate
	case a >= WeakThreshold:
		return models.StrengthWeak
	default:
		return models.StrengthNone
	}
}

func correlate(x, y []float64) models.Correlation {
	r := Pearson(x, y)
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	return models.Correlation{R: r, N: n, Strength: Classify(r)}
}

// Correlate builds the fixed metric-pair correlations from entries in the
// window ending today, ordered by day ascending.
func Correlate(entries []models.Entry, window int, today time.Time) *models.CorrelationReport {
	start, end := InclusiveRange(today, window)

	inWindow := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if InRange(e.Date, start, end) {
			inWindow = append(inWindow, e)
		}
	}
	sort.Slice(inWindow, func(i, j int) bool { return inWindow[i].Date.Before(inWindow[j].Date) })

	n := len(inWindow)
	sleep := make([]float64, n)
	mood := make([]float64, n)
	steps := make([]float64, n)
	water := make([]float64, n)
	for i, e := range inWindow {
		sleep[i] = e.Sleep
		mood[i] = float64(e.Mood)
		steps[i] = float64(e.Steps)
		water[i] = e.Water
	}

	return &models.CorrelationReport{
		Window: window,
		Correlations: models.Correlations{
			SleepMood: correlate(sleep, mood),
			StepsMood: correlate(steps, mood),
			WaterMood: correlate(water, mood),
		},
	}
}
