package progress

import (
	"testing"
	"time"

	"questlog/internal/model"
)

func TestApplyClear_ContinuesStreakFromYesterday(t *testing.T) {
	now := time.Date(2024, 3, 14, 20, 0, 0, 0, time.Local)
	p := model.Progression{
		TotalXP:         100,
		CurrentStreak:   3,
		LongestStreak:   5,
		LastClearedDate: "2024-03-13",
	}

	got := ApplyClear(p, 25, now)

	if got.CurrentStreak != 4 {
		t.Fatalf("expected streak 4, got %d", got.CurrentStreak)
	}
	if got.LongestStreak != 5 {
		t.Fatalf("expected longest streak unchanged at 5, got %d", got.LongestStreak)
	}
	if got.TotalXP != 125 {
		t.Fatalf("expected 125 xp, got %d", got.TotalXP)
	}
	if got.LastClearedDate != "2024-03-14" {
		t.Fatalf("expected last cleared today, got %q", got.LastClearedDate)
	}
}

func TestApplyClear_NewLongestStreak(t *testing.T) {
	now := time.Date(2024, 3, 14, 20, 0, 0, 0, time.Local)
	p := model.Progression{
		CurrentStreak:   3,
		LongestStreak:   3,
		LastClearedDate: "2024-03-13",
	}

	got := ApplyClear(p, 10, now)
	if got.CurrentStreak != 4 || got.LongestStreak != 4 {
		t.Fatalf("expected streak and longest 4, got %d/%d", got.CurrentStreak, got.LongestStreak)
	}
}

func TestApplyClear_SameDayKeepsStreak(t *testing.T) {
	now := time.Date(2024, 3, 14, 20, 0, 0, 0, time.Local)
	p := model.Progression{
		CurrentStreak:   4,
		LongestStreak:   4,
		LastClearedDate: "2024-03-14",
	}

	got := ApplyClear(p, 50, now)
	if got.CurrentStreak != 4 {
		t.Fatalf("same-day clear should not change the streak, got %d", got.CurrentStreak)
	}
	if got.TotalXP != 50 {
		t.Fatalf("xp should still accumulate, got %d", got.TotalXP)
	}
}

func TestApplyClear_GapResetsToOne(t *testing.T) {
	now := time.Date(2024, 3, 14, 20, 0, 0, 0, time.Local)
	p := model.Progression{
		CurrentStreak:   7,
		LongestStreak:   7,
		LastClearedDate: "2024-03-11", // 3 days ago
	}

	got := ApplyClear(p, 10, now)
	if got.CurrentStreak != 1 {
		t.Fatalf("expected streak reset to 1, got %d", got.CurrentStreak)
	}
	if got.LongestStreak != 7 {
		t.Fatalf("longest streak should survive the break, got %d", got.LongestStreak)
	}
}

func TestApplyClear_FirstEverClear(t *testing.T) {
	now := time.Date(2024, 3, 14, 20, 0, 0, 0, time.Local)

	got := ApplyClear(model.Progression{}, 10, now)
	if got.CurrentStreak != 1 || got.LongestStreak != 1 {
		t.Fatalf("expected first clear to start streak at 1, got %d/%d", got.CurrentStreak, got.LongestStreak)
	}
}

func TestResetIfNeeded(t *testing.T) {
	now := time.Date(2024, 3, 14, 8, 0, 0, 0, time.Local)

	cases := []struct {
		name        string
		lastCleared string
		streak      int
		wantStreak  int
		wantChanged bool
	}{
		{"today keeps streak", "2024-03-14", 4, 4, false},
		{"yesterday keeps streak", "2024-03-13", 4, 4, false},
		{"two days ago breaks streak", "2024-03-12", 4, 0, true},
		{"no clears yet", "", 0, 0, false},
	}
	for _, c := range cases {
		p := model.Progression{CurrentStreak: c.streak, LastClearedDate: c.lastCleared}
		got, changed := ResetIfNeeded(p, now)
		if got.CurrentStreak != c.wantStreak || changed != c.wantChanged {
			t.Fatalf("%s: got streak %d changed %v", c.name, got.CurrentStreak, changed)
		}
	}
}

func TestFileRepo_LazyDecayPersistsOnRead(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepo(dir)
	if err != nil {
		t.Fatalf("new file repo: %v", err)
	}
	scoped := repo.ForUser("u1")

	clearDay := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	if _, err := scoped.RecordClear(25, clearDay); err != nil {
		t.Fatalf("record clear: %v", err)
	}

	// Read four days later: the streak decayed and the decay was saved.
	later := clearDay.AddDate(0, 0, 4)
	p, err := scoped.Get(later)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.CurrentStreak != 0 {
		t.Fatalf("expected decayed streak, got %d", p.CurrentStreak)
	}
	if p.TotalXP != 25 || p.LongestStreak != 1 {
		t.Fatalf("xp and longest streak should survive decay, got %+v", p)
	}

	reopened, err := NewFileRepo(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	p2, err := reopened.ForUser("u1").Get(later)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if p2.CurrentStreak != 0 || p2.TotalXP != 25 {
		t.Fatalf("unexpected persisted progression: %+v", p2)
	}
}
