package schedule

import (
	"testing"
	"time"

	"questlog/internal/model"
)

func TestAutoDeadline(t *testing.T) {
	// 2024-03-14 is a Thursday.
	now := localDate(2024, time.March, 14)

	cases := []struct {
		kind model.RecurrenceKind
		want string
	}{
		{model.KindDaily, "2024-03-14"},
		{model.KindWeekly, "2024-03-17"}, // coming Sunday
		{model.KindMonthly, "2024-03-31"},
		{model.KindYearly, "2024-12-31"},
	}
	for _, c := range cases {
		got := AutoDeadline(c.kind, now)
		if got == nil || *got != c.want {
			t.Fatalf("%s deadline: got %v, want %s", c.kind, got, c.want)
		}
	}
}

func TestAutoDeadline_SundayKeepsToday(t *testing.T) {
	// 2024-03-17 is a Sunday; the weekly deadline is that same day.
	got := AutoDeadline(model.KindWeekly, localDate(2024, time.March, 17))
	if got == nil || *got != "2024-03-17" {
		t.Fatalf("weekly deadline on Sunday: got %v", got)
	}
}

func TestAutoDeadline_NoDeadlineKinds(t *testing.T) {
	now := localDate(2024, time.March, 14)
	if d := AutoDeadline(model.KindProject, now); d != nil {
		t.Fatalf("project quests should have no auto deadline, got %q", *d)
	}
	if d := AutoDeadline(model.KindRelax, now); d != nil {
		t.Fatalf("relax quests should have no auto deadline, got %q", *d)
	}
}
