// Package serverapp assembles the HTTP application: storage, handlers,
// middleware and the background generation loop.
package serverapp

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"questlog/internal/clock"
	"questlog/internal/config"
	"questlog/internal/history"
	"questlog/internal/httpmw"
	"questlog/internal/progress"
	"questlog/internal/quest"
	"questlog/internal/server"
	"questlog/internal/template"
)

type Options struct {
	Config *config.Config
	Logger zerolog.Logger
	Clock  clock.Clock
}

type App struct {
	cfg     *config.Config
	logger  zerolog.Logger
	clock   clock.Clock
	handler http.Handler

	templates *template.FileRepo
	quests    *quest.FileRepo
	records   *history.FileRepo
	progress  *progress.FileRepo
}

func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	a := &App{cfg: cfg, logger: opts.Logger, clock: clk}

	var err error
	if a.templates, err = template.NewFileRepo(cfg.Data.Dir); err != nil {
		return nil, err
	}
	if a.quests, err = quest.NewFileRepo(cfg.Data.Dir); err != nil {
		return nil, err
	}
	if a.records, err = history.NewFileRepo(cfg.Data.Dir); err != nil {
		return nil, err
	}
	if a.progress, err = progress.NewFileRepo(cfg.Data.Dir); err != nil {
		return nil, err
	}

	if err := template.EnsureRelaxLibrary(a.templates); err != nil {
		return nil, err
	}

	a.handler = a.buildHandler()
	return a, nil
}

func (a *App) Handler() http.Handler { return a.handler }

func (a *App) generatorFor(uid string) *quest.Generator {
	return quest.NewGenerator(
		a.templates.ForUser(uid),
		a.quests.ForUser(uid),
		history.NewCounter(a.records.ForUser(uid)),
		a.clock,
		a.logger,
	)
}

func (a *App) engineFor(uid string) *quest.Engine {
	e := quest.NewEngine(
		a.quests.ForUser(uid),
		a.records.ForUser(uid),
		a.progress.ForUser(uid),
		a.clock,
		a.logger,
	)
	e.SetXPTable(a.cfg.XP.Awards)
	return e
}

func userID(r *http.Request) string {
	return httpmw.UserIDFromContext(r.Context())
}

func (a *App) buildHandler() http.Handler {
	mux := http.NewServeMux()
	rr := &server.RouteRegistry{}

	templateHandler := template.NewHandler(a.templates)
	templateHandler.SetRepoResolver(func(r *http.Request) template.Repo {
		return a.templates.ForUser(userID(r))
	})

	questHandler := quest.NewHandler(a.quests, a.clock)
	questHandler.SetRepoResolver(func(r *http.Request) quest.Repo {
		return a.quests.ForUser(userID(r))
	})
	questHandler.SetGeneratorResolver(func(r *http.Request) *quest.Generator {
		return a.generatorFor(userID(r))
	})
	questHandler.SetEngineResolver(func(r *http.Request) *quest.Engine {
		return a.engineFor(userID(r))
	})

	historyHandler := history.NewHandler(a.records)
	historyHandler.SetRepoResolver(func(r *http.Request) history.Repo {
		return a.records.ForUser(userID(r))
	})

	progressHandler := progress.NewHandler(a.progress, a.clock)
	progressHandler.SetRepoResolver(func(r *http.Request) progress.Repo {
		return a.progress.ForUser(userID(r))
	})

	rr.Add("GET", "/api/templates", "list recurrence templates (?active=, ?kind=)")
	rr.Add("POST", "/api/templates", "create a recurrence template")
	rr.Add("GET", "/api/templates/relax", "built-in relax library (seeded on first read)")
	rr.Add("GET", "/api/templates/{id}", "fetch one template")
	rr.Add("PATCH", "/api/templates/{id}", "partially update a template")
	rr.Add("DELETE", "/api/templates/{id}", "delete a template")
	rr.Add("POST", "/api/templates/{id}/pickup", "manually instantiate a template")
	rr.Add("GET", "/api/quests", "list quests (?status=open|all|today|<status>)")
	rr.Add("POST", "/api/quests", "create a manual one-off quest")
	rr.Add("POST", "/api/quests/refresh", "run a generation pass")
	rr.Add("GET", "/api/quests/{id}", "fetch one quest")
	rr.Add("POST", "/api/quests/{id}/status", "transition a quest's status")
	rr.Add("GET", "/api/history", "terminal-transition records (?since=YYYY-MM-DD)")
	rr.Add("GET", "/api/progress", "XP total and streaks")
	rr.Add("GET", "/api/routes", "this list")

	mux.HandleFunc("/api/templates", templateHandler.TemplatesRoot)
	mux.HandleFunc("/api/templates/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/templates/relax":
			templateHandler.Relax(w, r)
		case strings.HasSuffix(r.URL.Path, "/pickup"):
			questHandler.Pickup(w, r)
		default:
			templateHandler.TemplatesSub(w, r)
		}
	})

	mux.HandleFunc("/api/quests", questHandler.QuestsRoot)
	mux.HandleFunc("/api/quests/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/quests/refresh" {
			questHandler.Refresh(w, r)
			return
		}
		questHandler.QuestsSub(w, r)
	})

	mux.HandleFunc("/api/history", historyHandler.List)
	mux.HandleFunc("/api/progress", progressHandler.Get)
	mux.HandleFunc("/api/routes", rr.ListHandler)

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(a.cfg)
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "questlog",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if _, err := a.templates.List(template.ListFilter{}); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "template storage unavailable",
			})
			return
		}
		if _, err := a.quests.List(quest.ListFilter{Status: "all"}); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "quest storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "questlog",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Request ID and user ID wrap the access log so its fields resolve
	// from the enriched context. Recover sits innermost so a panic still
	// shows up in the access log as a 500.
	return httpmw.Chain(
		mux,
		httpmw.WithRequestID,
		httpmw.WithUserID,
		httpmw.WithAccessLog(a.logger),
		httpmw.WithRecover(a.logger),
	)
}

// RunGenerationPass generates instances for the default user. Scoped
// users get theirs on demand through the refresh endpoint.
func (a *App) RunGenerationPass() {
	if _, err := a.generatorFor("default").Generate(); err != nil {
		a.logger.Error().Err(err).Msg("generation pass failed")
	}
}

// StartGenerationLoop runs the configured background passes until the
// context is cancelled. A zero interval means startup-only (or nothing).
func (a *App) StartGenerationLoop(ctx context.Context) {
	if a.cfg.Generation.OnStartup {
		a.RunGenerationPass()
	}
	interval := a.cfg.Generation.IntervalDuration()
	if interval <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				a.RunGenerationPass()
			}
		}
	}()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
