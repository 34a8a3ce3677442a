package models

import "time"

// Streaks is the current and longest run of consecutive check-in days
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Averages holds per-metric window averages rounded to 2 decimals
type Averages struct {
	Mood  float64 `json:"mood"`
	Sleep float64 `json:"sleep"`
	Water float64 `json:"water"`
}

// WindowAggregate is the result of aggregating entries over a date range
type WindowAggregate struct {
	Averages   Averages `json:"averages"`
	TotalSteps int      `json:"totalSteps"`
}

// Trend is the delta of the current window against the previous one
type Trend struct {
	MoodDelta  float64 `json:"moodDelta"`
	SleepDelta float64 `json:"sleepDelta"`
	StepsDelta int     `json:"stepsDelta"`
	WaterDelta float64 `json:"waterDelta"`
}

// WindowStats is the stats report for a trailing window
type WindowStats struct {
	Window     int             `json:"window"`
	Averages   Averages        `json:"averages"`
	TotalSteps int             `json:"totalSteps"`
	Previous   WindowAggregate `json:"previous"`
	Streak     Streaks         `json:"streak"`
	Trend      Trend           `json:"trend"`
}

// Strength classifies the magnitude of a correlation coefficient
type Strength string

const (
	StrengthStrong   Strength = "strong"
	StrengthModerate Strength = "moderate"
	StrengthWeak     Strength = "weak"
	StrengthNone     Strength = "none"
)

// Correlation is a Pearson coefficient with its sample size and label
type Correlation struct {
	R        float64  `json:"r"`
	N        int      `json:"n"`
	Strength Strength `json:"strength"`
}

// Correlations holds the three fixed metric pairs
type Correlations struct {
	SleepMood Correlation `json:"sleep_mood"`
	StepsMood Correlation `json:"steps_mood"`
	WaterMood Correlation `json:"water_mood"`
}

// CorrelationReport is the correlation response for a window
type CorrelationReport struct {
	Window       int          `json:"window"`
	Correlations Correlations `json:"correlations"`
}

// Totals are lifetime aggregates over all of a user's entries
type Totals struct {
	Count      int     `json:"count"`
	TotalSteps int     `json:"totalSteps"`
	AvgWater   float64 `json:"avgWater"`
}

// Achievement is a badge with a pure earned predicate
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
	Meta        any    `json:"meta,omitempty"`
}

// AchievementsReport is the achievements response
type AchievementsReport struct {
	Streaks      Streaks       `json:"streaks"`
	Totals       Totals        `json:"totals"`
	Achievements []Achievement `json:"achievements"`
}

// TipCategory tags a tip with the metric it addresses
type TipCategory string

const (
	TipCategorySleep   TipCategory = "sleep"
	TipCategorySteps   TipCategory = "steps"
	TipCategoryWater   TipCategory = "water"
	TipCategoryMood    TipCategory = "mood"
	TipCategoryStreak  TipCategory = "streak"
	TipCategoryGeneral TipCategory = "general"
)

// Tip is a short suggestion string tagged with its category
type Tip struct {
	Category TipCategory `json:"category"`
	Text     string      `json:"text"`
}

// SuggestionSource identifies which provider produced the tips
type SuggestionSource string

const (
	SuggestionSourceRules SuggestionSource = "rules"
	SuggestionSourceAI    SuggestionSource = "ai"
)

// InsightsReport is the insights response
type InsightsReport struct {
	Window      int              `json:"window"`
	Source      SuggestionSource `json:"source"`
	Tips        []Tip            `json:"tips"`
	GeneratedAt time.Time        `json:"generatedAt"`
}
