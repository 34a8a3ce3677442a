package analytics

import (
	"sort"
	"time"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
)

// ComputeStreaks derives streaks from check-in days in any order. The current
// streak only counts a run that ends exactly on today.
func ComputeStreaks(days []time.Time, today time.Time) models.Streaks {
	if len(days) == 0 {
		return models.Streaks{}
	}

	seen := make(map[time.Time]struct{}, len(days))
	sorted := make([]time.Time, 0, len(days))
	for _, d := range days {
		sd := StartOfDay(d)
		if _, ok := seen[sd]; ok {
			continue
		}
		seen[sd] = struct{}{}
		sorted = append(sorted, sd)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Equal(AddDays(sorted[i-1], 1)) {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}

	current := 0
	for d := StartOfDay(today); ; d = AddDays(d, -1) {
		if _, ok := seen[d]; !ok {
			break
		}
		current++
	}

	return models.Streaks{Current: current, Longest: longest}
}

// EntryDays extracts the check-in day of each entry.
func EntryDays(entries []models.Entry) []time.Time {
	days := make([]time.Time, len(entries))
	for i, e := range entries {
		days[i] = e.Date
	}
	return days
}
