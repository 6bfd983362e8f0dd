package template

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"questlog/internal/model"
)

type Handler struct {
	repo         Repo
	repoResolver func(*http.Request) Repo
}

func NewHandler(repo Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) SetRepoResolver(fn func(*http.Request) Repo) {
	h.repoResolver = fn
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

// createInput is the creation payload. Unlike Patch, absent fields just
// take their zero values.
type createInput struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Difficulty string `json:"difficulty,omitempty"`

	DaysOfWeek   []int `json:"daysOfWeek,omitempty"`
	WeeksOfMonth []int `json:"weeksOfMonth,omitempty"`
	DatesOfMonth []int `json:"datesOfMonth,omitempty"`
	MonthOfYear  int   `json:"monthOfYear,omitempty"`
	Frequency    int   `json:"frequency,omitempty"`

	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
	Project   *string `json:"project,omitempty"`

	Active *bool `json:"active,omitempty"`
}

// /api/templates  (collection)
func (h *Handler) TemplatesRoot(w http.ResponseWriter, r *http.Request) {
	repo := h.repoForRequest(r)

	switch r.Method {
	case http.MethodGet:
		filter := ListFilter{Kind: model.RecurrenceKind(r.URL.Query().Get("kind"))}
		if raw := r.URL.Query().Get("active"); raw != "" {
			active, err := strconv.ParseBool(raw)
			if err != nil {
				writeErr(w, 400, "invalid active filter")
				return
			}
			filter.Active = &active
		}
		ts, err := repo.List(filter)
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, ts)
		return

	case http.MethodPost:
		var in createInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		if strings.TrimSpace(in.Name) == "" {
			writeErr(w, 400, `missing field "name"`)
			return
		}

		active := true
		if in.Active != nil {
			active = *in.Active
		}
		t, err := repo.Create(model.RecurrenceTemplate{
			Name:         in.Name,
			Kind:         model.RecurrenceKind(in.Kind),
			Difficulty:   in.Difficulty,
			DaysOfWeek:   in.DaysOfWeek,
			WeeksOfMonth: in.WeeksOfMonth,
			DatesOfMonth: in.DatesOfMonth,
			MonthOfYear:  in.MonthOfYear,
			Frequency:    in.Frequency,
			StartDate:    in.StartDate,
			EndDate:      in.EndDate,
			Project:      in.Project,
			Active:       active,
		})
		if errors.Is(err, ErrInvalidKind) {
			writeErr(w, 400, "invalid kind")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 201, t)
		return

	default:
		writeErr(w, 405, "method not allowed")
		return
	}
}

// /api/templates/relax: the built-in relax library, seeded on first read.
func (h *Handler) Relax(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	repo := h.repoForRequest(r)

	if err := EnsureRelaxLibrary(repo); err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	ts, err := repo.List(ListFilter{Kind: model.KindRelax})
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, ts)
}

// /api/templates/{id}
func (h *Handler) TemplatesSub(w http.ResponseWriter, r *http.Request) {
	repo := h.repoForRequest(r)

	tail := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/templates/"), "/")
	if tail == "" || strings.Contains(tail, "/") {
		writeErr(w, 404, "not found")
		return
	}
	id := model.TemplateID(tail)

	switch r.Method {
	case http.MethodGet:
		t, err := repo.Get(id)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, t)
		return

	case http.MethodPatch:
		var p Patch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		t, err := repo.Update(id, p)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, t)
		return

	case http.MethodDelete:
		err := repo.Delete(id)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, map[string]any{"deleted": string(id)})
		return

	default:
		writeErr(w, 405, "method not allowed")
		return
	}
}
