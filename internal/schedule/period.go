package schedule

import (
	"time"

	"questlog/internal/clock"
	"questlog/internal/model"
)

// Window is an inclusive range of local calendar days, YYYY-MM-DD.
type Window struct {
	Start string
	End   string
}

// Contains reports whether the day falls inside the window.
func (w Window) Contains(day string) bool {
	return day >= w.Start && day <= w.End
}

// PeriodWindow returns the current quota period containing asOf for the
// given kind. Weeks are Sunday-anchored, not ISO. Kinds without a natural
// period (project, relax) get the single day, matching the daily quota
// semantics.
func PeriodWindow(kind model.RecurrenceKind, asOf time.Time) Window {
	asOf = asOf.In(time.Local)
	end := clock.Day(asOf)

	switch kind {
	case model.KindWeekly:
		// Most recent Sunday <= asOf.
		start := asOf.AddDate(0, 0, -int(asOf.Weekday()))
		return Window{Start: clock.Day(start), End: end}
	case model.KindMonthly:
		start := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
		return Window{Start: clock.Day(start), End: end}
	case model.KindYearly:
		start := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, asOf.Location())
		return Window{Start: clock.Day(start), End: end}
	default:
		return Window{Start: end, End: end}
	}
}
