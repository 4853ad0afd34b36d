package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/idea-research/internal/intake"
	"github.com/sells-group/idea-research/internal/model"
	"github.com/sells-group/idea-research/internal/monitoring"
	"github.com/sells-group/idea-research/internal/state"
	"github.com/sells-group/idea-research/internal/store"
)

var servePort int

const defaultLookbackHours = 24

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for research requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		a := newAPI(ctx, env.Store, env.Controller, monitoring.WithStallAfter(cfg.Monitoring.StallAfter()))

		if cfg.Monitoring.WebhookURL != "" {
			checker := monitoring.NewChecker(a.collector, monitoring.NewAlerter(cfg.Monitoring), cfg.Monitoring)
			go checker.Run(ctx)
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           a.routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		a.wait()
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// runExecutor starts runs synchronously and executes them in the
// background. *workflow.Controller satisfies it.
type runExecutor interface {
	Start(ctx context.Context, idea model.Idea) (*model.Run, error)
	Execute(ctx context.Context, run *model.Run) (*model.Run, *state.RunState, error)
}

// api serves the research HTTP endpoints. Runs accepted over HTTP execute
// on baseCtx so they outlive the request that created them.
type api struct {
	baseCtx   context.Context
	store     store.Store
	runner    runExecutor
	collector *monitoring.Collector
	wg        sync.WaitGroup
}

func newAPI(baseCtx context.Context, st store.Store, runner runExecutor, opts ...monitoring.CollectorOption) *api {
	return &api{
		baseCtx:   baseCtx,
		store:     st,
		runner:    runner,
		collector: monitoring.NewCollector(st, opts...),
	}
}

func (a *api) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", a.health)
	r.Get("/metrics", a.metrics)
	r.Route("/runs", func(r chi.Router) {
		r.Post("/", a.createRun)
		r.Get("/", a.listRuns)
		r.Get("/{id}", a.getRun)
	})
	return r
}

// wait blocks until every background run has finished.
func (a *api) wait() { a.wg.Wait() }

func (a *api) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *api) metrics(w http.ResponseWriter, r *http.Request) {
	lookback := defaultLookbackHours
	if raw := r.URL.Query().Get("lookback_hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid lookback_hours")
			return
		}
		lookback = n
	}

	snap, err := a.collector.Collect(r.Context(), lookback)
	if err != nil {
		zap.L().Error("api: collect metrics", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not collect metrics")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *api) createRun(w http.ResponseWriter, r *http.Request) {
	var req intake.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	idea, err := intake.Normalize(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := a.runner.Start(r.Context(), idea)
	if err != nil {
		zap.L().Error("api: start run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not start run")
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if _, _, err := a.runner.Execute(a.baseCtx, run); err != nil {
			zap.L().Warn("api: run failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
		"id":     run.ID,
	})
}

func (a *api) listRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RunFilter{State: model.PipelineState(q.Get("state"))}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid "+name)
			return
		}
		*dst = n
	}

	runs, err := a.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list runs")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (a *api) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := a.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		zap.L().Error("api: get run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
