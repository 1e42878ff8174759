// Package api exposes Caesar's HTTP surface: health and status probes,
// rubric management, and synchronous evaluations.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/caesar/internal/engine"
	"github.com/MikeSquared-Agency/caesar/internal/rubric"
	"github.com/MikeSquared-Agency/caesar/internal/store"
)

// Server serves the Caesar API. store may be nil (stateless mode): rubric
// management degrades to validation-only and evaluations are not retrievable
// afterwards.
type Server struct {
	router        *chi.Mux
	port          int
	store         *store.Store
	engine        *engine.Engine
	defaultRubric *rubric.Rubric
	logger        *slog.Logger
}

func NewServer(port int, apiToken string, s *store.Store, e *engine.Engine, defaultRubric *rubric.Rubric, logger *slog.Logger) *Server {
	if defaultRubric == nil {
		defaultRubric = rubric.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	srv := &Server{
		router:        router,
		port:          port,
		store:         s,
		engine:        e,
		defaultRubric: defaultRubric,
		logger:        logger,
	}

	router.Get("/health", srv.health)
	router.Get("/api/v1/caesar/status", srv.status)

	router.Route("/api/v1/rubrics", func(r chi.Router) {
		r.Get("/", srv.listRubrics)
		r.With(bearerAuth(apiToken)).Post("/", srv.createRubric)
	})

	router.Route("/api/v1/evaluations", func(r chi.Router) {
		r.Get("/", srv.listEvaluations)
		r.Get("/{id}", srv.getEvaluation)
		r.With(bearerAuth(apiToken)).Post("/", srv.createEvaluation)
	})

	return srv
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// bearerAuth guards mutating routes. An empty token disables the check.
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
				writeError(w, http.StatusUnauthorized, "invalid or missing bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	mode := "stateless"
	if s.store != nil {
		mode = "persistent"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"agent":  "caesar",
		"status": "ready",
		"mode":   mode,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
