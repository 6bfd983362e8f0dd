package model

import (
	"time"
)

type TemplateID string

// RecurrenceKind decides both the schedule predicate and the quota period
// of a template.
type RecurrenceKind string

const (
	KindDaily   RecurrenceKind = "daily"
	KindWeekly  RecurrenceKind = "weekly"
	KindMonthly RecurrenceKind = "monthly"
	KindYearly  RecurrenceKind = "yearly"
	KindProject RecurrenceKind = "project"
	KindRelax   RecurrenceKind = "relax"
)

func (k RecurrenceKind) Valid() bool {
	switch k {
	case KindDaily, KindWeekly, KindMonthly, KindYearly, KindProject, KindRelax:
		return true
	}
	return false
}

// RecurrenceTemplate is a rule describing when and how often a quest recurs.
// Read-only to the generator; created and edited by the user.
type RecurrenceTemplate struct {
	ID         TemplateID     `json:"id"`
	Name       string         `json:"name"`
	Difficulty string         `json:"difficulty"` // "1" | "2" | "3"
	Kind       RecurrenceKind `json:"kind"`

	// Schedule constraints. Weekday indices are 0=Sunday..6=Saturday.
	// A weekly/monthly template with none of these set is a quota-only
	// pool: surfaced for manual pickup, never auto-generated.
	DaysOfWeek   []int `json:"daysOfWeek,omitempty"`
	WeeksOfMonth []int `json:"weeksOfMonth,omitempty"` // 1..5, literal ceil(day/7) blocks
	DatesOfMonth []int `json:"datesOfMonth,omitempty"`
	MonthOfYear  int   `json:"monthOfYear,omitempty"` // 1..12, yearly only; 0 = unset

	// Frequency is the "N times per period" quota. Zero means 1.
	Frequency int `json:"frequency,omitempty"`

	// Validity window for project templates, YYYY-MM-DD inclusive.
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`

	Project *string `json:"project,omitempty"`
	Active  bool    `json:"active"`

	// Informational only; generation gating never reads it.
	LastGeneratedAt *string `json:"lastGeneratedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EffectiveFrequency normalizes the quota: anything below 1 counts as 1.
func (t RecurrenceTemplate) EffectiveFrequency() int {
	if t.Frequency < 1 {
		return 1
	}
	return t.Frequency
}

// IsPool reports whether the template is a quota-only pool: a weekly or
// monthly rule with no fixed day configured. Pool templates never
// auto-fire; they are picked up manually.
func (t RecurrenceTemplate) IsPool() bool {
	switch t.Kind {
	case KindWeekly:
		return len(t.DaysOfWeek) == 0
	case KindMonthly:
		return len(t.DatesOfMonth) == 0 && len(t.WeeksOfMonth) == 0
	}
	return false
}
