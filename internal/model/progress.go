package model

// Progression is the per-user streak/XP aggregate. Mutated only on a
// cleared transition; streak decay is applied lazily on read.
type Progression struct {
	TotalXP       int `json:"totalXp"`
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`

	// LastClearedDate is YYYY-MM-DD, empty before the first clear.
	LastClearedDate string `json:"lastClearedDate,omitempty"`
}
