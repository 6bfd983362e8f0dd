package progress

import (
	"encoding/json"
	"net/http"

	"questlog/internal/clock"
)

type Handler struct {
	repo         Repo
	repoResolver func(*http.Request) Repo
	clock        clock.Clock
}

func NewHandler(repo Repo, clk clock.Clock) *Handler {
	return &Handler{repo: repo, clock: clk}
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

// GET /api/progress. Reading applies streak decay, so the number shown is
// always current even if nothing was cleared for days.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, 405, map[string]any{"error": "method not allowed"})
		return
	}

	p, err := h.repoForRequest(r).Get(h.clock.Now())
	if err != nil {
		writeJSON(w, 500, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, 200, p)
}
