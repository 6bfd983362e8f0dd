package template

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"questlog/internal/model"
)

var (
	ErrNotFound    = errors.New("template not found")
	ErrInvalidKind = errors.New("invalid recurrence kind")
)

// Patch represents a partial update. nil pointer => "no change".
type Patch struct {
	Name       *string `json:"name,omitempty"`
	Difficulty *string `json:"difficulty,omitempty"`
	Active     *bool   `json:"active,omitempty"`

	DaysOfWeek   *[]int `json:"daysOfWeek,omitempty"`
	WeeksOfMonth *[]int `json:"weeksOfMonth,omitempty"`
	DatesOfMonth *[]int `json:"datesOfMonth,omitempty"`
	MonthOfYear  *int   `json:"monthOfYear,omitempty"`
	Frequency    *int   `json:"frequency,omitempty"`

	// empty string clears
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
	Project   *string `json:"project,omitempty"`
}

type ListFilter struct {
	// Active: nil = don't care
	Active *bool

	// Kind: "" = any
	Kind model.RecurrenceKind
}

type Repo interface {
	Create(t model.RecurrenceTemplate) (model.RecurrenceTemplate, error)
	Get(id model.TemplateID) (model.RecurrenceTemplate, error)
	Update(id model.TemplateID, p Patch) (model.RecurrenceTemplate, error)
	Delete(id model.TemplateID) error
	List(filter ListFilter) ([]model.RecurrenceTemplate, error)

	// MarkGenerated stamps LastGeneratedAt. Informational only; the
	// generator never gates on it.
	MarkGenerated(id model.TemplateID, day string) error
}

func newID() model.TemplateID {
	return model.TemplateID("tpl_" + uuid.NewString())
}

// sanitize drops malformed constraint values instead of rejecting the
// template: a rule with nothing left falls back to pool semantics, so one
// bad template can never block a generation pass.
func sanitize(t *model.RecurrenceTemplate) {
	t.DaysOfWeek = keepInRange(t.DaysOfWeek, 0, 6)
	t.WeeksOfMonth = keepInRange(t.WeeksOfMonth, 1, 5)
	t.DatesOfMonth = keepInRange(t.DatesOfMonth, 1, 31)
	if t.MonthOfYear < 1 || t.MonthOfYear > 12 {
		t.MonthOfYear = 0
	}
	if t.Frequency < 0 {
		t.Frequency = 0
	}
	if t.Difficulty == "" {
		t.Difficulty = "1"
	}
}

func keepInRange(vals []int, lo, hi int) []int {
	if len(vals) == 0 {
		return nil
	}
	out := make([]int, 0, len(vals))
	seen := map[int]bool{}
	for _, v := range vals {
		if v < lo || v > hi || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Ints(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func applyPatch(t *model.RecurrenceTemplate, p Patch) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Difficulty != nil {
		t.Difficulty = *p.Difficulty
	}
	if p.Active != nil {
		t.Active = *p.Active
	}
	if p.DaysOfWeek != nil {
		t.DaysOfWeek = *p.DaysOfWeek
	}
	if p.WeeksOfMonth != nil {
		t.WeeksOfMonth = *p.WeeksOfMonth
	}
	if p.DatesOfMonth != nil {
		t.DatesOfMonth = *p.DatesOfMonth
	}
	if p.MonthOfYear != nil {
		t.MonthOfYear = *p.MonthOfYear
	}
	if p.Frequency != nil {
		t.Frequency = *p.Frequency
	}

	// pointer string fields with "empty clears" semantics
	if p.StartDate != nil {
		if *p.StartDate == "" {
			t.StartDate = nil
		} else {
			t.StartDate = p.StartDate
		}
	}
	if p.EndDate != nil {
		if *p.EndDate == "" {
			t.EndDate = nil
		} else {
			t.EndDate = p.EndDate
		}
	}
	if p.Project != nil {
		if *p.Project == "" {
			t.Project = nil
		} else {
			t.Project = p.Project
		}
	}
}

func matchesFilter(t model.RecurrenceTemplate, f ListFilter) bool {
	if f.Active != nil && t.Active != *f.Active {
		return false
	}
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	return true
}

type MemoryRepo struct {
	mu        sync.RWMutex
	templates map[model.TemplateID]model.RecurrenceTemplate
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{templates: map[model.TemplateID]model.RecurrenceTemplate{}}
}

func (r *MemoryRepo) Create(t model.RecurrenceTemplate) (model.RecurrenceTemplate, error) {
	if !t.Kind.Valid() {
		return model.RecurrenceTemplate{}, ErrInvalidKind
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	t.ID = newID()
	t.CreatedAt = now
	t.UpdatedAt = now
	sanitize(&t)

	r.templates[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) Get(id model.TemplateID) (model.RecurrenceTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[id]
	if !ok {
		return model.RecurrenceTemplate{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) Update(id model.TemplateID, p Patch) (model.RecurrenceTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.templates[id]
	if !ok {
		return model.RecurrenceTemplate{}, ErrNotFound
	}

	applyPatch(&t, p)
	t.UpdatedAt = time.Now()
	sanitize(&t)

	r.templates[id] = t
	return t, nil
}

func (r *MemoryRepo) Delete(id model.TemplateID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[id]; !ok {
		return ErrNotFound
	}
	delete(r.templates, id)
	return nil
}

func (r *MemoryRepo) List(filter ListFilter) ([]model.RecurrenceTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.RecurrenceTemplate, 0, len(r.templates))
	for _, t := range r.templates {
		if matchesFilter(t, filter) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) MarkGenerated(id model.TemplateID, day string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.templates[id]
	if !ok {
		return ErrNotFound
	}
	t.LastGeneratedAt = &day
	r.templates[id] = t
	return nil
}
