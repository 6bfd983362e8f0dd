package model

type HistoryID string

// HistoryRecord is an immutable snapshot taken when a quest reaches a
// terminal status. Cleared records double as the quota ledger for the
// period counter.
type HistoryRecord struct {
	ID          HistoryID      `json:"id"`
	TemplateID  *TemplateID    `json:"templateId,omitempty"`
	QuestID     QuestID        `json:"questId"`
	Name        string         `json:"name"`
	Kind        RecurrenceKind `json:"kind"`
	Difficulty  string         `json:"difficulty"`
	FinalStatus QuestStatus    `json:"finalStatus"`
	XPEarned    int            `json:"xpEarned"`

	// RecordedDate is the local calendar day of the transition, YYYY-MM-DD.
	RecordedDate string `json:"recordedDate"`
}
