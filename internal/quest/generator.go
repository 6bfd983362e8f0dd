package quest

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"questlog/internal/clock"
	"questlog/internal/history"
	"questlog/internal/model"
	"questlog/internal/schedule"
	"questlog/internal/template"
)

// ErrQuotaMet means the template's period quota is already fully cleared.
var ErrQuotaMet = errors.New("period quota already met")

// Generator materializes quest instances from recurrence templates. It is
// pull-based: callers invoke Generate whenever they like (page load, CLI,
// a scheduled ping) and repeated calls with unchanged state create
// nothing, because the open-instance and quota checks both turn false
// once an instance exists.
type Generator struct {
	templates template.Repo
	quests    Repo
	counter   *history.Counter
	clock     clock.Clock
	logger    zerolog.Logger
}

func NewGenerator(templates template.Repo, quests Repo, counter *history.Counter, clk clock.Clock, logger zerolog.Logger) *Generator {
	return &Generator{
		templates: templates,
		quests:    quests,
		counter:   counter,
		clock:     clk,
		logger:    logger,
	}
}

// GenerateResult summarizes one generation pass.
type GenerateResult struct {
	Created []model.Quest `json:"created"`

	Considered   int `json:"considered"`
	SkippedMatch int `json:"skippedMatch"`
	SkippedOpen  int `json:"skippedOpen"`
	SkippedQuota int `json:"skippedQuota"`
	Failed       int `json:"failed"`
}

// Generate runs one pass over every active template. A failure on one
// template is logged and skipped; it never aborts the batch. Only a
// failure to list the templates themselves is fatal to the pass.
func (g *Generator) Generate() (GenerateResult, error) {
	active := true
	templates, err := g.templates.List(template.ListFilter{Active: &active})
	if err != nil {
		return GenerateResult{}, fmt.Errorf("list active templates: %w", err)
	}

	now := g.clock.Now()
	res := GenerateResult{Created: []model.Quest{}}

	for _, tpl := range templates {
		res.Considered++

		if !schedule.Matches(tpl, now) {
			res.SkippedMatch++
			continue
		}

		open, err := g.quests.HasOpenForTemplate(tpl.ID)
		if err != nil {
			res.Failed++
			g.logger.Warn().Err(err).Str("template_id", string(tpl.ID)).
				Msg("open-instance check failed, skipping template")
			continue
		}
		if open {
			res.SkippedOpen++
			continue
		}

		count, err := g.counter.Completions(tpl, now)
		if err != nil {
			res.Failed++
			g.logger.Warn().Err(err).Str("template_id", string(tpl.ID)).
				Msg("period count failed, skipping template")
			continue
		}
		if count >= tpl.EffectiveFrequency() {
			res.SkippedQuota++
			continue
		}

		q, err := g.quests.Create(buildQuest(tpl, count, now))
		if err != nil {
			if errors.Is(err, ErrOpenInstanceExists) {
				// Lost a race with a concurrent pass; the invariant held.
				res.SkippedOpen++
				continue
			}
			res.Failed++
			g.logger.Warn().Err(err).Str("template_id", string(tpl.ID)).
				Msg("quest creation failed, skipping template")
			continue
		}
		res.Created = append(res.Created, q)

		if err := g.templates.MarkGenerated(tpl.ID, clock.Day(now)); err != nil {
			// Informational stamp only; the quest already exists.
			g.logger.Warn().Err(err).Str("template_id", string(tpl.ID)).
				Msg("could not stamp lastGeneratedAt")
		}
	}

	g.logger.Info().
		Int("considered", res.Considered).
		Int("created", len(res.Created)).
		Int("skipped_open", res.SkippedOpen).
		Int("skipped_quota", res.SkippedQuota).
		Int("failed", res.Failed).
		Msg("generation pass finished")

	return res, nil
}

// Pickup manually instantiates a template, the path used for pool and
// relax templates that never auto-fire. The schedule predicate is
// bypassed; the open-instance and quota checks still apply.
func (g *Generator) Pickup(id model.TemplateID) (model.Quest, error) {
	tpl, err := g.templates.Get(id)
	if err != nil {
		return model.Quest{}, err
	}

	now := g.clock.Now()
	count, err := g.counter.Completions(tpl, now)
	if err != nil {
		return model.Quest{}, err
	}
	if count >= tpl.EffectiveFrequency() {
		return model.Quest{}, ErrQuotaMet
	}

	return g.quests.Create(buildQuest(tpl, count, now))
}

// buildQuest copies the template's identity onto a fresh instance,
// annotates the display name with quota progress when the quota is
// above one, and applies the kind-based auto deadline.
func buildQuest(tpl model.RecurrenceTemplate, completions int, now time.Time) model.Quest {
	tid := tpl.ID
	q := model.Quest{
		TemplateID:  &tid,
		Name:        tpl.Name,
		DisplayName: tpl.Name,
		Kind:        tpl.Kind,
		Difficulty:  tpl.Difficulty,
		Status:      model.StatusUnreceived,
		Deadline:    schedule.AutoDeadline(tpl.Kind, now),
	}
	if freq := tpl.EffectiveFrequency(); freq > 1 {
		q.DisplayName = fmt.Sprintf("%s (%d/%d)", tpl.Name, completions+1, freq)
	}
	return q
}
