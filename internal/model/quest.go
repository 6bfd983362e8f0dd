package model

import (
	"time"
)

type QuestID string

// QuestStatus is the lifecycle state of a quest instance.
type QuestStatus string

const (
	StatusUnreceived  QuestStatus = "unreceived"
	StatusAccepted    QuestStatus = "accepted"
	StatusChallenging QuestStatus = "challenging"
	StatusAlmost      QuestStatus = "almost"
	StatusCleared     QuestStatus = "cleared"
	StatusPaused      QuestStatus = "paused"
	StatusCancelled   QuestStatus = "cancelled"
	StatusFailed      QuestStatus = "failed"
)

func (s QuestStatus) Valid() bool {
	switch s {
	case StatusUnreceived, StatusAccepted, StatusChallenging, StatusAlmost,
		StatusCleared, StatusPaused, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// Terminal statuses can never transition again.
func (s QuestStatus) Terminal() bool {
	switch s {
	case StatusCleared, StatusPaused, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// Quest is a concrete, actionable occurrence of a template (or a manual
// one-off, in which case TemplateID is nil).
type Quest struct {
	ID         QuestID     `json:"id"`
	TemplateID *TemplateID `json:"templateId,omitempty"`
	Name       string      `json:"name"`

	// DisplayName carries the quota annotation, e.g. "Stretch (2/3)".
	// Equal to Name when the template quota is 1.
	DisplayName string         `json:"displayName"`
	Kind        RecurrenceKind `json:"kind"`
	Difficulty  string         `json:"difficulty"`
	Status      QuestStatus    `json:"status"`

	// Deadline is informational, YYYY-MM-DD; crossing it never auto-fails.
	Deadline *string `json:"deadline,omitempty"`

	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
	ClearedAt  *time.Time `json:"clearedAt,omitempty"`
}

// Open reports whether the quest still counts against the
// at-most-one-open-instance-per-template invariant.
func (q Quest) Open() bool {
	return !q.Status.Terminal()
}
