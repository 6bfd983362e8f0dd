package quest

import (
	"errors"

	"github.com/rs/zerolog"

	"questlog/internal/clock"
	"questlog/internal/history"
	"questlog/internal/model"
	"questlog/internal/progress"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Default XP award per difficulty, overridable via config.
var defaultXPTable = map[string]int{
	"1": 10,
	"2": 25,
	"3": 50,
}

// happy-path order; forward jumps are allowed, backward moves are not.
var statusRank = map[model.QuestStatus]int{
	model.StatusUnreceived:  0,
	model.StatusAccepted:    1,
	model.StatusChallenging: 2,
	model.StatusAlmost:      3,
	model.StatusCleared:     4,
}

// CanTransition reports whether a quest may move from one status to
// another. Terminal states never transition again; paused, cancelled and
// failed are reachable from any non-terminal state.
func CanTransition(from, to model.QuestStatus) bool {
	if from.Terminal() || !to.Valid() || from == to {
		return false
	}
	switch to {
	case model.StatusPaused, model.StatusCancelled, model.StatusFailed:
		return true
	}
	return statusRank[to] > statusRank[from]
}

// Engine drives quest lifecycle transitions and their side effects: the
// history snapshot on every terminal transition, and XP plus streak
// accounting on cleared.
type Engine struct {
	quests   Repo
	history  history.Repo
	progress progress.Repo
	clock    clock.Clock
	logger   zerolog.Logger
	xpTable  map[string]int
}

func NewEngine(quests Repo, hist history.Repo, prog progress.Repo, clk clock.Clock, logger zerolog.Logger) *Engine {
	return &Engine{
		quests:   quests,
		history:  hist,
		progress: prog,
		clock:    clk,
		logger:   logger,
		xpTable:  defaultXPTable,
	}
}

// SetXPTable overrides the per-difficulty XP awards. Unknown difficulties
// fall back to the "1" award.
func (e *Engine) SetXPTable(table map[string]int) {
	if len(table) == 0 {
		return
	}
	e.xpTable = table
}

func (e *Engine) xpFor(difficulty string) int {
	if xp, ok := e.xpTable[difficulty]; ok {
		return xp
	}
	return e.xpTable["1"]
}

// TransitionResult is what a status change produced. XPAwarded is zero
// for anything but a cleared transition; Progression is set only then.
type TransitionResult struct {
	Quest       model.Quest        `json:"quest"`
	XPAwarded   int                `json:"xpAwarded"`
	Progression *model.Progression `json:"progression,omitempty"`
}

// Transition advances a quest to the requested status. Invalid moves
// leave the quest untouched and return ErrInvalidTransition.
//
// The status write commits before the history insert and progress
// update. The stores are separate files, so a failure between writes
// can leave a terminal quest without its record; that error is
// surfaced to the caller. The reverse order would be worse: a history
// record without a terminal quest inflates the quota count and
// suppresses future generation.
func (e *Engine) Transition(id model.QuestID, to model.QuestStatus) (TransitionResult, error) {
	q, err := e.quests.Get(id)
	if err != nil {
		return TransitionResult{}, err
	}
	if !CanTransition(q.Status, to) {
		return TransitionResult{}, ErrInvalidTransition
	}

	now := e.clock.Now()
	updated, err := e.quests.UpdateStatus(id, to, now)
	if err != nil {
		return TransitionResult{}, err
	}

	res := TransitionResult{Quest: updated}
	if !to.Terminal() {
		return res, nil
	}

	xp := 0
	if to == model.StatusCleared {
		xp = e.xpFor(updated.Difficulty)
	}
	res.XPAwarded = xp

	rec := model.HistoryRecord{
		TemplateID:   updated.TemplateID,
		QuestID:      updated.ID,
		Name:         updated.Name,
		Kind:         updated.Kind,
		Difficulty:   updated.Difficulty,
		FinalStatus:  to,
		XPEarned:     xp,
		RecordedDate: clock.Day(now),
	}
	if _, err := e.history.Insert(rec); err != nil {
		return TransitionResult{}, err
	}

	if to == model.StatusCleared {
		p, err := e.progress.RecordClear(xp, now)
		if err != nil {
			return TransitionResult{}, err
		}
		res.Progression = &p
		e.logger.Info().
			Str("quest_id", string(updated.ID)).
			Int("xp", xp).
			Int("streak", p.CurrentStreak).
			Msg("quest cleared")
	}

	return res, nil
}
