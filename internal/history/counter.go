package history

import (
	"time"

	"questlog/internal/model"
	"questlog/internal/schedule"
)

// Counter answers "how many qualifying completions already happened in
// the current period". Pure reads over the history repo; used by the
// generator for quota gating and for the "(n/N)" display annotation.
type Counter struct {
	repo Repo
}

func NewCounter(repo Repo) *Counter {
	return &Counter{repo: repo}
}

// Completions counts cleared records for the template inside the period
// window of the template's kind containing asOf.
func (c *Counter) Completions(t model.RecurrenceTemplate, asOf time.Time) (int, error) {
	w := schedule.PeriodWindow(t.Kind, asOf)
	return c.repo.CountCleared(t.ID, w)
}
