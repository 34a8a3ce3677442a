package analytics

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
)

// MaxTips bounds every suggestion list.
const MaxTips = 4

// TipInput is everything the tip rules look at.
type TipInput struct {
	Window      int
	Stats       *models.WindowStats
	Preferences models.Preferences
}

// AvgStepsPerDay divides the window's total steps by its length.
func (in TipInput) AvgStepsPerDay() int {
	w := in.Window
	if w < 1 {
		w = 1
	}
	return int(Round(float64(in.Stats.TotalSteps)/float64(w), 0))
}

// RuleTips runs the threshold rules, moves the first tip matching the focus
// area to the front and truncates to MaxTips.
func RuleTips(in TipInput) []models.Tip {
	stepGoal, waterGoal, sleepGoal := in.Preferences.Goals()
	stats := in.Stats
	var tips []models.Tip

	add := func(c models.TipCategory, format string, args ...any) {
		tips = append(tips, models.Tip{Category: c, Text: fmt.Sprintf(format, args...)})
	}

	switch {
	case stats.Averages.Sleep < sleepGoal-1:
		add(models.TipCategorySleep,
			"Sleep boost: aim for %gh by keeping a consistent bedtime. Skip caffeine late in the day and put screens away an hour before bed.",
			sleepGoal)
	case stats.Averages.Sleep >= sleepGoal:
		add(models.TipCategorySleep,
			"Excellent sleep consistency. Consider a gentle morning routine to keep the momentum.")
	}

	avgSteps := in.AvgStepsPerDay()
	switch {
	case float64(avgSteps) < float64(stepGoal)*0.5:
		add(models.TipCategorySteps,
			"Movement matters: add a 10-15 min walk after lunch or dinner. Small walks compound into big wins.")
	case avgSteps < stepGoal:
		add(models.TipCategorySteps,
			"Almost there: you're at %s steps/day. Try a short staircase burst or park further away to hit %s.",
			FormatThousands(avgSteps), FormatThousands(stepGoal))
	default:
		add(models.TipCategorySteps,
			"Fantastic step count! You're exceeding your goal, keep up the active lifestyle.")
	}

	switch {
	case stats.Averages.Water < waterGoal*0.7:
		add(models.TipCategoryWater,
			"Hydration hack: keep a 500ml bottle visible and refill at meals. Aim for %gL by evening.",
			waterGoal)
	case stats.Averages.Water < waterGoal:
		add(models.TipCategoryWater,
			"Almost hydrated: you're at %.1fL, add one more glass to hit your %gL goal.",
			stats.Averages.Water, waterGoal)
	}

	switch {
	case stats.Trend.MoodDelta < -0.5:
		add(models.TipCategoryMood,
			"Mood dipped vs the prior period: pair light movement with outdoor time or connect with a friend.")
	case stats.Trend.MoodDelta > 0.5:
		add(models.TipCategoryMood,
			"Your mood is trending up. Share your wins to stay motivated.")
	}

	current := stats.Streak.Current
	switch {
	case current < 3 && in.Preferences.ReminderTime != nil && *in.Preferences.ReminderTime != "":
		add(models.TipCategoryStreak,
			"Build your streak: %d more check-ins to a 3-day win. Stick with your %s reminder.",
			3-current, *in.Preferences.ReminderTime)
	case current < 3:
		add(models.TipCategoryStreak,
			"Build your streak: %d more check-ins to a 3-day win. Set a daily reminder time in Settings.",
			3-current)
	case current >= 7:
		add(models.TipCategoryStreak,
			"Amazing streak of %d days. Keep the momentum going!", current)
	}

	tips = PrioritizeFocus(tips, models.TipCategory(in.Preferences.FocusArea))
	return Truncate(tips, MaxTips)
}

// PrioritizeFocus moves the first tip tagged with focus to the front.
func PrioritizeFocus(tips []models.Tip, focus models.TipCategory) []models.Tip {
	if focus == "" {
		return tips
	}
	for i, t := range tips {
		if t.Category != focus {
			continue
		}
		if i == 0 {
			return tips
		}
		out := make([]models.Tip, 0, len(tips))
		out = append(out, t)
		out = append(out, tips[:i]...)
		return append(out, tips[i+1:]...)
	}
	return tips
}

// Truncate caps tips at n.
func Truncate(tips []models.Tip, n int) []models.Tip {
	if len(tips) > n {
		return tips[:n]
	}
	return tips
}

// FormatThousands renders n with comma separators, e.g. 10,000.
func FormatThousands(n int) string {
	return humanize.Comma(int64(n))
}
