// Package progress tracks the per-user XP total and clear streak.
// Streak decay is lazy: computed on the next read, never by a timer.
package progress

import (
	"time"

	"questlog/internal/clock"
	"questlog/internal/model"
)

// ApplyClear folds one cleared quest into the progression. XP always
// accumulates; the streak counts at most one clear per local day.
func ApplyClear(p model.Progression, xp int, now time.Time) model.Progression {
	today := clock.Day(now)
	yesterday := clock.Day(now.AddDate(0, 0, -1))

	p.TotalXP += xp

	switch p.LastClearedDate {
	case today:
		// Already counted today.
	case yesterday:
		p.CurrentStreak++
	default:
		// Gap of 2+ days, or first-ever clear.
		p.CurrentStreak = 1
	}

	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.LastClearedDate = today
	return p
}

// ResetIfNeeded zeroes a streak that no clear has kept alive: anything
// older than yesterday is broken. Returns the (possibly unchanged)
// progression and whether it changed.
func ResetIfNeeded(p model.Progression, now time.Time) (model.Progression, bool) {
	if p.CurrentStreak == 0 || p.LastClearedDate == "" {
		return p, false
	}
	today := clock.Day(now)
	yesterday := clock.Day(now.AddDate(0, 0, -1))
	if p.LastClearedDate == today || p.LastClearedDate == yesterday {
		return p, false
	}
	p.CurrentStreak = 0
	return p, true
}
