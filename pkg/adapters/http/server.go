// Package http exposes the session manager over a small JSON API. It is the
// harness a telephony host or test rig drives: start a session, feed
// utterances, inspect state, hang up.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evocall/pathway/internal/logging"
	"github.com/evocall/pathway/pkg/domain"
	"github.com/evocall/pathway/pkg/session"
)

// Server routes HTTP requests onto the session manager.
type Server struct {
	manager *session.Manager
	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetricsHandler mounts a /metrics endpoint.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// StartSessionRequest is the body of POST /pathways/{pathwayID}/sessions.
type StartSessionRequest struct {
	UserID string `json:"user_id,omitempty"`
}

// TurnRequest is the body of POST /sessions/{sessionID}/turns.
type TurnRequest struct {
	Utterance string `json:"utterance"`
}

// TurnResponse carries the effects of one settled turn.
type TurnResponse struct {
	SessionID string          `json:"session_id"`
	Effects   []domain.Effect `json:"effects"`
}

// NewHandler creates the HTTP handler.
func NewHandler(manager *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		manager: manager,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/pathways/{pathwayID}/sessions", s.startSession)
	r.Get("/sessions", s.listSessions)
	r.Post("/sessions/{sessionID}/turns", s.turn)
	r.Get("/sessions/{sessionID}", s.getSession)
	r.Delete("/sessions/{sessionID}", s.endSession)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	pathwayID := chi.URLParam(r, "pathwayID")

	var body StartSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("startSession: invalid request body", "err", err)
			return
		}
	}

	sessionID, effects, err := s.manager.Start(r.Context(), pathwayID, body.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNoEntryPoint) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusNotFound)
		s.logger.Warn("startSession failed", "pathway_id", pathwayID, "err", err)
		return
	}

	s.writeJSONStatus(w, http.StatusCreated, TurnResponse{SessionID: sessionID, Effects: effects})
}

func (s *Server) turn(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("turn: invalid request body", "err", err)
		return
	}

	effects, err := s.manager.Turn(r.Context(), sessionID, body.Utterance)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, domain.ErrSessionEnded):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			s.logger.Error("turn failed", "session_id", sessionID, "err", err)
		}
		return
	}

	s.writeJSON(w, TurnResponse{SessionID: sessionID, Effects: effects})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	snap, err := s.manager.Snapshot(r.Context(), sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.writeJSON(w, snap)
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.manager.End(r.Context(), sessionID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string][]string{"sessions": s.manager.List()})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	s.writeJSONStatus(w, http.StatusOK, v)
}

func (s *Server) writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
