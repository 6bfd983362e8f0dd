package quest

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"questlog/internal/clock"
	"questlog/internal/model"
)

var (
	ErrNotFound = errors.New("quest not found")

	// ErrOpenInstanceExists enforces the at-most-one-open-quest-per-template
	// invariant at the store layer, closing the check-then-insert race.
	ErrOpenInstanceExists = errors.New("template already has an open quest")
)

type ListFilter struct {
	// Status:
	//   "" | "all" | "open" | "today" | "<exact status>"
	// "open" is every non-terminal quest; "today" additionally includes
	// quests that reached a terminal status on Today.
	Status string

	// Today is the local day used by the "today" filter, YYYY-MM-DD.
	Today string

	TemplateID model.TemplateID
}

type Repo interface {
	Create(q model.Quest) (model.Quest, error)
	Get(id model.QuestID) (model.Quest, error)
	List(filter ListFilter) ([]model.Quest, error)

	// UpdateStatus writes the new status and its timestamps. Transition
	// legality is the engine's job; the repo only persists.
	UpdateStatus(id model.QuestID, status model.QuestStatus, now time.Time) (model.Quest, error)

	// HasOpenForTemplate reports whether a non-terminal quest exists for
	// the template.
	HasOpenForTemplate(id model.TemplateID) (bool, error)
}

func newID() model.QuestID {
	return model.QuestID("quest_" + uuid.NewString())
}

func normalizeQuest(q *model.Quest) {
	if q.Status == "" {
		q.Status = model.StatusUnreceived
	}
	if q.DisplayName == "" {
		q.DisplayName = q.Name
	}
	if q.Difficulty == "" {
		q.Difficulty = "1"
	}
}

func applyStatus(q *model.Quest, status model.QuestStatus, now time.Time) {
	q.Status = status
	q.UpdatedAt = now
	if status == model.StatusAccepted && q.AcceptedAt == nil {
		at := now
		q.AcceptedAt = &at
	}
	if status == model.StatusCleared {
		at := now
		q.ClearedAt = &at
	}
}

func matchesFilter(q model.Quest, f ListFilter) bool {
	if f.TemplateID != "" {
		if q.TemplateID == nil || *q.TemplateID != f.TemplateID {
			return false
		}
	}

	switch strings.ToLower(strings.TrimSpace(f.Status)) {
	case "", "all":
		return true
	case "open":
		return q.Open()
	case "today":
		if q.Open() {
			return true
		}
		return f.Today != "" && clock.Day(q.UpdatedAt) == f.Today
	default:
		return q.Status == model.QuestStatus(f.Status)
	}
}

func sortQuests(out []model.Quest) {
	// Deadline soonest first (none last), then newest created.
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Deadline, out[j].Deadline
		switch {
		case di == nil && dj == nil:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		case di == nil:
			return false
		case dj == nil:
			return true
		case *di != *dj:
			return *di < *dj
		default:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
	})
}

func hasOpenForTemplate(quests map[model.QuestID]model.Quest, id model.TemplateID) bool {
	for _, q := range quests {
		if q.TemplateID != nil && *q.TemplateID == id && q.Open() {
			return true
		}
	}
	return false
}

type MemoryRepo struct {
	mu     sync.RWMutex
	quests map[model.QuestID]model.Quest
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{quests: map[model.QuestID]model.Quest{}}
}

func (r *MemoryRepo) Create(q model.Quest) (model.Quest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	normalizeQuest(&q)
	if q.TemplateID != nil && q.Open() && hasOpenForTemplate(r.quests, *q.TemplateID) {
		return model.Quest{}, ErrOpenInstanceExists
	}

	now := time.Now()
	q.ID = newID()
	q.CreatedAt = now
	q.UpdatedAt = now

	r.quests[q.ID] = q
	return q, nil
}

func (r *MemoryRepo) Get(id model.QuestID) (model.Quest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.quests[id]
	if !ok {
		return model.Quest{}, ErrNotFound
	}
	return q, nil
}

func (r *MemoryRepo) List(filter ListFilter) ([]model.Quest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Quest, 0, len(r.quests))
	for _, q := range r.quests {
		if matchesFilter(q, filter) {
			out = append(out, q)
		}
	}
	sortQuests(out)
	return out, nil
}

func (r *MemoryRepo) UpdateStatus(id model.QuestID, status model.QuestStatus, now time.Time) (model.Quest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.quests[id]
	if !ok {
		return model.Quest{}, ErrNotFound
	}
	applyStatus(&q, status, now)
	r.quests[id] = q
	return q, nil
}

func (r *MemoryRepo) HasOpenForTemplate(id model.TemplateID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return hasOpenForTemplate(r.quests, id), nil
}
