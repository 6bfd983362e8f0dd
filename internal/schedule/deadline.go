package schedule

import (
	"time"

	"questlog/internal/clock"
	"questlog/internal/model"
)

// AutoDeadline computes the default deadline day for a quest generated
// now: daily => today, weekly => the coming Sunday, monthly => end of the
// month, yearly => end of the year. Project and relax quests get none.
// Deadlines are informational; crossing one never auto-fails a quest.
func AutoDeadline(kind model.RecurrenceKind, now time.Time) *string {
	now = now.In(time.Local)

	var end time.Time
	switch kind {
	case model.KindDaily:
		end = now
	case model.KindWeekly:
		// Today if today is Sunday, else the next one.
		end = now.AddDate(0, 0, (7-int(now.Weekday()))%7)
	case model.KindMonthly:
		end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
			AddDate(0, 1, -1)
	case model.KindYearly:
		end = time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location())
	default:
		return nil
	}

	day := clock.Day(end)
	return &day
}
