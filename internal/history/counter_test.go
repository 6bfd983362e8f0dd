package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"questlog/internal/model"
)

func insertRecord(t *testing.T, repo Repo, templateID model.TemplateID, status model.QuestStatus, day string) {
	t.Helper()
	tid := templateID
	_, err := repo.Insert(model.HistoryRecord{
		TemplateID:   &tid,
		QuestID:      "quest_x",
		Name:         "Stretch",
		Kind:         model.KindWeekly,
		Difficulty:   "1",
		FinalStatus:  status,
		XPEarned:     10,
		RecordedDate: day,
	})
	require.NoError(t, err)
}

func TestCounter_CountsClearedInsideWeeklyWindow(t *testing.T) {
	repo := NewMemoryRepo()
	counter := NewCounter(repo)

	tpl := model.RecurrenceTemplate{ID: "tpl_a", Kind: model.KindWeekly, Frequency: 3}

	// Week of Sunday 2024-03-10. Thursday is the 14th.
	insertRecord(t, repo, tpl.ID, model.StatusCleared, "2024-03-11")
	insertRecord(t, repo, tpl.ID, model.StatusCleared, "2024-03-13")
	insertRecord(t, repo, tpl.ID, model.StatusCleared, "2024-03-09") // previous week
	insertRecord(t, repo, tpl.ID, model.StatusFailed, "2024-03-12")  // not cleared
	insertRecord(t, repo, "tpl_other", model.StatusCleared, "2024-03-12")

	asOf := time.Date(2024, time.March, 14, 9, 0, 0, 0, time.Local)
	n, err := counter.Completions(tpl, asOf)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestCounter_DailyWindowIsSingleDay(t *testing.T) {
	repo := NewMemoryRepo()
	counter := NewCounter(repo)

	tpl := model.RecurrenceTemplate{ID: "tpl_d", Kind: model.KindDaily}
	insertRecord(t, repo, tpl.ID, model.StatusCleared, "2024-03-13")
	insertRecord(t, repo, tpl.ID, model.StatusCleared, "2024-03-14")

	asOf := time.Date(2024, time.March, 14, 22, 0, 0, 0, time.Local)
	n, err := counter.Completions(tpl, asOf)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestCounter_ManualRecordsWithoutTemplateNeverCount(t *testing.T) {
	repo := NewMemoryRepo()
	counter := NewCounter(repo)

	_, err := repo.Insert(model.HistoryRecord{
		QuestID:      "quest_manual",
		Name:         "One-off",
		FinalStatus:  model.StatusCleared,
		RecordedDate: "2024-03-14",
	})
	require.NoError(t, err)

	tpl := model.RecurrenceTemplate{ID: "tpl_d", Kind: model.KindDaily}
	n, err := counter.Completions(tpl, time.Date(2024, time.March, 14, 12, 0, 0, 0, time.Local))
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestList_FiltersBySinceAndSortsNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	insertRecord(t, repo, "tpl_a", model.StatusCleared, "2024-03-10")
	insertRecord(t, repo, "tpl_a", model.StatusCleared, "2024-03-12")
	insertRecord(t, repo, "tpl_a", model.StatusCleared, "2024-03-14")

	out, err := repo.List("2024-03-11")
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "2024-03-14", out[0].RecordedDate)
	require.Equal(t, "2024-03-12", out[1].RecordedDate)
}

func TestFileRepo_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	repo, err := NewFileRepo(dir)
	require.NoError(t, err)
	scoped := repo.ForUser("u1")
	insertRecord(t, scoped, "tpl_a", model.StatusCleared, "2024-03-14")

	reopened, err := NewFileRepo(dir)
	require.NoError(t, err)

	out, err := reopened.ForUser("u1").List("")
	require.NoError(t, err)
	require.Len(t, out, 1)

	other, err := reopened.ForUser("u2").List("")
	require.NoError(t, err)
	require.Empty(t, other)
}
