// Package schedule holds the recurrence decision logic: whether a template
// fires on a given day, which quota period a day belongs to, and the
// kind-based auto-deadline. Everything here is a pure function of a
// template plus a calendar date.
package schedule

import (
	"slices"
	"time"

	"questlog/internal/clock"
	"questlog/internal/model"
)

// Matches reports whether the template's schedule predicate holds for the
// given date. It never consults quotas or existing instances; those checks
// belong to the generator.
func Matches(t model.RecurrenceTemplate, date time.Time) bool {
	// Quota-only pools have no fixed day and never auto-fire; the single
	// source of truth for that classification is IsPool.
	if t.IsPool() {
		return false
	}

	switch t.Kind {
	case model.KindDaily:
		return true
	case model.KindWeekly:
		return slices.Contains(t.DaysOfWeek, int(date.Weekday()))
	case model.KindMonthly:
		return matchesMonthly(t, date)
	case model.KindYearly:
		if t.MonthOfYear < 1 || int(date.Month()) != t.MonthOfYear {
			return false
		}
		return weekAndDayMatch(t, date)
	case model.KindProject:
		return matchesProject(t, date)
	case model.KindRelax:
		// Relax templates are instantiated manually from the library.
		return false
	}
	return false
}

// Monthly precedence: explicit dates win over week-of-month rules; a
// template with neither is a pool.
func matchesMonthly(t model.RecurrenceTemplate, date time.Time) bool {
	if len(t.DatesOfMonth) > 0 {
		return slices.Contains(t.DatesOfMonth, date.Day())
	}
	if len(t.WeeksOfMonth) > 0 {
		return weekAndDayMatch(t, date)
	}
	return false
}

// weekAndDayMatch applies the week-of-month constraint (empty = no
// constraint for yearly, required non-empty for monthly callers) combined
// with an optional weekday constraint.
func weekAndDayMatch(t model.RecurrenceTemplate, date time.Time) bool {
	if len(t.WeeksOfMonth) > 0 && !slices.Contains(t.WeeksOfMonth, WeekOfMonth(date)) {
		return false
	}
	if len(t.DaysOfWeek) > 0 && !slices.Contains(t.DaysOfWeek, int(date.Weekday())) {
		return false
	}
	return true
}

func matchesProject(t model.RecurrenceTemplate, date time.Time) bool {
	day := clock.Day(date)
	if t.StartDate == nil || t.EndDate == nil {
		return false
	}
	// YYYY-MM-DD compares lexicographically.
	if day < *t.StartDate || day > *t.EndDate {
		return false
	}
	if len(t.DaysOfWeek) == 0 {
		return true
	}
	return slices.Contains(t.DaysOfWeek, int(date.Weekday()))
}

// WeekOfMonth is the literal ceiling-based 7-day block a date falls in:
// days 1-7 are week 1, 8-14 week 2, and so on. Ordinal 5 therefore means
// the literal 5th block when the month has one, not "last week".
func WeekOfMonth(date time.Time) int {
	return (date.Day() + 6) / 7
}
