// Package history stores the immutable terminal-transition snapshots.
// Cleared records are the quota ledger the period counter reads.
package history

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"questlog/internal/model"
	"questlog/internal/schedule"
)

type Repo interface {
	Insert(rec model.HistoryRecord) (model.HistoryRecord, error)

	// List returns records with RecordedDate >= since (all when since is
	// empty), newest first.
	List(since string) ([]model.HistoryRecord, error)

	// CountCleared counts cleared records for the template whose
	// RecordedDate falls inside the window.
	CountCleared(templateID model.TemplateID, w schedule.Window) (int, error)
}

func newID() model.HistoryID {
	return model.HistoryID("hist_" + uuid.NewString())
}

func sortNewestFirst(out []model.HistoryRecord) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].RecordedDate != out[j].RecordedDate {
			return out[i].RecordedDate > out[j].RecordedDate
		}
		return out[i].ID > out[j].ID
	})
}

func countCleared(records map[model.HistoryID]model.HistoryRecord, templateID model.TemplateID, w schedule.Window) int {
	n := 0
	for _, rec := range records {
		if rec.TemplateID == nil || *rec.TemplateID != templateID {
			continue
		}
		if rec.FinalStatus != model.StatusCleared {
			continue
		}
		if w.Contains(rec.RecordedDate) {
			n++
		}
	}
	return n
}

type MemoryRepo struct {
	mu      sync.RWMutex
	records map[model.HistoryID]model.HistoryRecord
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: map[model.HistoryID]model.HistoryRecord{}}
}

func (r *MemoryRepo) Insert(rec model.HistoryRecord) (model.HistoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.ID = newID()
	r.records[rec.ID] = rec
	return rec, nil
}

func (r *MemoryRepo) List(since string) ([]model.HistoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.HistoryRecord, 0, len(r.records))
	for _, rec := range r.records {
		if since != "" && rec.RecordedDate < since {
			continue
		}
		out = append(out, rec)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepo) CountCleared(templateID model.TemplateID, w schedule.Window) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return countCleared(r.records, templateID, w), nil
}
