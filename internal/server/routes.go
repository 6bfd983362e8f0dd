package server

import (
	"encoding/json"
	"net/http"
)

type RouteDoc struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
	Summary string `json:"summary,omitempty"`
}

// RouteRegistry collects the API surface so /api/routes can describe it.
type RouteRegistry struct {
	routes []RouteDoc
}

func (rr *RouteRegistry) Add(method, pattern, summary string) {
	rr.routes = append(rr.routes, RouteDoc{Method: method, Pattern: pattern, Summary: summary})
}

func (rr *RouteRegistry) List() []RouteDoc {
	out := make([]RouteDoc, len(rr.routes))
	copy(out, rr.routes)
	return out
}

// ListHandler serves the registry as JSON.
func (rr *RouteRegistry) ListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(rr.List())
}
