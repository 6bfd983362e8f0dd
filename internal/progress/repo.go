package progress

import (
	"sync"
	"time"

	"questlog/internal/model"
)

type Repo interface {
	// Get returns the progression with lazy streak decay applied (and
	// persisted when it fired).
	Get(now time.Time) (model.Progression, error)

	// RecordClear folds one cleared quest's XP into the progression.
	RecordClear(xp int, now time.Time) (model.Progression, error)
}

type MemoryRepo struct {
	mu sync.Mutex
	p  model.Progression
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Get(now time.Time) (model.Progression, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, changed := ResetIfNeeded(r.p, now); changed {
		r.p = p
	}
	return r.p, nil
}

func (r *MemoryRepo) RecordClear(xp int, now time.Time) (model.Progression, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.p = ApplyClear(r.p, xp, now)
	return r.p, nil
}
