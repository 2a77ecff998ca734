// Package api exposes the season-analysis pipeline over HTTP: enqueueing
// runs, querying stored intros, and streaming progress over WebSocket.
// Grounded on CineVault's internal/detection.Handler (chi sub-router per
// resource) and internal/api.Server's security-headers/CORS wrap.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/introscan/introscan/internal/config"
	"github.com/introscan/introscan/internal/edl"
	"github.com/introscan/introscan/internal/httputil"
	"github.com/introscan/introscan/internal/intro"
	"github.com/introscan/introscan/internal/jobs"
	"github.com/introscan/introscan/internal/notifyws"
)

// Server wires the HTTP surface to the job queue, intro store, and
// WebSocket hub.
type Server struct {
	config   *config.Config
	queue    *jobs.Queue
	store    *intro.Store
	notifier *notifyws.Hub
	edl      *edl.Manager
	router   chi.Router
}

// NewServer constructs the router and registers every route.
func NewServer(cfg *config.Config, queue *jobs.Queue, store *intro.Store, notifier *notifyws.Hub, edlMgr *edl.Manager) *Server {
	s := &Server{config: cfg, queue: queue, store: store, notifier: notifier, edl: edlMgr}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.healthz)
	r.Get("/ws", s.notifier.ServeHTTP)

	r.Route("/seasons", func(r chi.Router) {
		r.Post("/analyze", s.analyzeSeason)
	})

	r.Route("/episodes", func(r chi.Router) {
		r.Get("/{id}/intro", s.getEpisodeIntro)
	})

	return r
}

func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// analyzeSeason enqueues a season analysis run, deduplicated by
// series/season so repeated requests while a run is in flight are no-ops.
func (s *Server) analyzeSeason(w http.ResponseWriter, r *http.Request) {
	var payload jobs.SeasonPayload
	if err := httputil.ReadJSON(r, &payload); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if payload.Series == "" || len(payload.Episodes) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "series and episodes are required")
		return
	}

	uniqueID := fmt.Sprintf("season:%s:%d", payload.Series, payload.Number)
	taskID, err := s.queue.EnqueueUnique(jobs.TaskAnalyzeSeason, payload, uniqueID)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to enqueue analysis")
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}

func (s *Server) getEpisodeIntro(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid episode id")
		return
	}

	in, ok := s.store.Get(id)
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "NOT_FOUND", "no intro recorded for episode")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, in)
}

// Start binds the HTTP server, wrapping the router with CineVault's
// security-headers/CORS middleware pair.
func (s *Server) Start() error {
	handler := securityHeadersMiddleware(corsMiddleware(s.router))
	return http.ListenAndServe(fmt.Sprintf(":%d", s.config.Port), handler)
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
