package quest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"questlog/internal/clock"
	"questlog/internal/model"
	"questlog/internal/schedule"
	"questlog/internal/template"
)

type Handler struct {
	repo              Repo
	repoResolver      func(*http.Request) Repo
	generatorResolver func(*http.Request) *Generator
	engineResolver    func(*http.Request) *Engine
	clock             clock.Clock
}

func NewHandler(repo Repo, clk clock.Clock) *Handler {
	return &Handler{repo: repo, clock: clk}
}

func (h *Handler) SetRepoResolver(fn func(*http.Request) Repo) {
	h.repoResolver = fn
}

func (h *Handler) SetGeneratorResolver(fn func(*http.Request) *Generator) {
	h.generatorResolver = fn
}

func (h *Handler) SetEngineResolver(fn func(*http.Request) *Engine) {
	h.engineResolver = fn
}

func (h *Handler) repoForRequest(r *http.Request) Repo {
	if h.repoResolver != nil {
		if repo := h.repoResolver(r); repo != nil {
			return repo
		}
	}
	return h.repo
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// /api/quests  (collection)
func (h *Handler) QuestsRoot(w http.ResponseWriter, r *http.Request) {
	repo := h.repoForRequest(r)

	switch r.Method {
	case http.MethodGet:
		status := r.URL.Query().Get("status")
		if status == "" {
			status = "open"
		}
		qs, err := repo.List(ListFilter{
			Status: status,
			Today:  clock.Day(h.clock.Now()),
		})
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, qs)
		return

	case http.MethodPost:
		var in struct {
			Name       string  `json:"name"`
			Kind       string  `json:"kind,omitempty"`
			Difficulty string  `json:"difficulty,omitempty"`
			Deadline   *string `json:"deadline,omitempty"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		if strings.TrimSpace(in.Name) == "" {
			writeErr(w, 400, `missing field "name"`)
			return
		}
		kind := model.RecurrenceKind(in.Kind)
		if in.Kind == "" {
			// Manual one-offs default to relax: no template, no deadline.
			kind = model.KindRelax
		}
		if !kind.Valid() {
			writeErr(w, 400, "invalid kind")
			return
		}

		deadline := in.Deadline
		if deadline == nil {
			// Scheduled kinds get the period-end deadline generated
			// quests carry; relax and project stay open-ended.
			deadline = schedule.AutoDeadline(kind, h.clock.Now())
		}

		q, err := repo.Create(model.Quest{
			Name:       in.Name,
			Kind:       kind,
			Difficulty: in.Difficulty,
			Status:     model.StatusUnreceived,
			Deadline:   deadline,
		})
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 201, q)
		return

	default:
		writeErr(w, 405, "method not allowed")
		return
	}
}

// /api/quests/refresh  (generation pass trigger)
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	if h.generatorResolver == nil {
		writeErr(w, 500, "generator unavailable")
		return
	}
	gen := h.generatorResolver(r)
	if gen == nil {
		writeErr(w, 500, "generator unavailable")
		return
	}

	res, err := gen.Generate()
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, res)
}

// /api/templates/{id}/pickup: manual instantiation of a template. This
// is how pool and relax templates become quests, since the generator
// never auto-fires them.
func (h *Handler) Pickup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	if h.generatorResolver == nil {
		writeErr(w, 500, "generator unavailable")
		return
	}
	gen := h.generatorResolver(r)
	if gen == nil {
		writeErr(w, 500, "generator unavailable")
		return
	}

	tail := strings.TrimPrefix(r.URL.Path, "/api/templates/")
	id := model.TemplateID(strings.TrimSuffix(strings.Trim(tail, "/"), "/pickup"))
	if id == "" {
		writeErr(w, 404, "not found")
		return
	}

	q, err := gen.Pickup(id)
	if errors.Is(err, template.ErrNotFound) {
		writeErr(w, 404, "not found")
		return
	}
	if errors.Is(err, ErrQuotaMet) || errors.Is(err, ErrOpenInstanceExists) {
		writeErr(w, 409, err.Error())
		return
	}
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	writeJSON(w, 201, q)
}

// /api/quests/{id} and /api/quests/{id}/status
func (h *Handler) QuestsSub(w http.ResponseWriter, r *http.Request) {
	repo := h.repoForRequest(r)

	tail := strings.TrimPrefix(r.URL.Path, "/api/quests/")
	tail = strings.Trim(tail, "/")
	if tail == "" {
		writeErr(w, 404, "not found")
		return
	}

	parts := strings.Split(tail, "/")
	id := model.QuestID(parts[0])

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeErr(w, 405, "method not allowed")
			return
		}
		q, err := repo.Get(id)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, q)
		return
	}

	if len(parts) == 2 && parts[1] == "status" {
		if r.Method != http.MethodPost {
			writeErr(w, 405, "method not allowed")
			return
		}
		if h.engineResolver == nil {
			writeErr(w, 500, "status engine unavailable")
			return
		}
		engine := h.engineResolver(r)
		if engine == nil {
			writeErr(w, 500, "status engine unavailable")
			return
		}

		var in struct {
			Status string `json:"status"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		to := model.QuestStatus(strings.TrimSpace(in.Status))
		if !to.Valid() {
			writeErr(w, 400, "invalid status")
			return
		}

		res, err := engine.Transition(id, to)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, 404, "not found")
			return
		}
		if errors.Is(err, ErrInvalidTransition) {
			writeErr(w, 409, err.Error())
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, res)
		return
	}

	writeErr(w, 404, "not found")
}
