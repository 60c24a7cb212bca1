package calculations

import (
	"sort"
	"time"
)

const dayLayout = "2006-01-02"

// CalculateStreaks computes the longest and current activity streaks from
// the set of active calendar days (dayLayout keys) relative to today.
//
// longest is the maximal run of consecutive days anywhere in the history.
// current is the run ending at the most recent active day, but it only
// counts as current when that day is today or yesterday; a gap of two or
// more days zeroes it even though longest keeps the historical value.
func CalculateStreaks(activeDays map[string]bool, today time.Time) (current, longest int) {
	if len(activeDays) == 0 {
		return 0, 0
	}

	keys := make([]string, 0, len(activeDays))
	for key := range activeDays {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	days := make([]time.Time, 0, len(keys))
	for _, key := range keys {
		day, err := time.ParseInLocation(dayLayout, key, time.UTC)
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return 0, 0
	}

	longest = 1
	run := 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}

	todayDay, err := time.ParseInLocation(dayLayout, today.Format(dayLayout), time.UTC)
	if err != nil {
		return 0, longest
	}

	last := days[len(days)-1]
	if todayDay.Sub(last) > 24*time.Hour {
		return 0, longest
	}

	current = 1
	for i := len(days) - 1; i > 0; i-- {
		if days[i].Sub(days[i-1]) != 24*time.Hour {
			break
		}
		current++
	}
	return current, longest
}
