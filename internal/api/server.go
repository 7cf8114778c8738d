// Package api exposes the operational HTTP interface: health probes,
// Prometheus metrics, and tracking management.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkotecha/crickwatch/internal/match"
	"github.com/mkotecha/crickwatch/internal/metrics"
	"github.com/mkotecha/crickwatch/internal/overs"
)

// Server wires HTTP handlers to the stores.
type Server struct {
	router   chi.Router
	tracking match.TrackingStore
	states   match.StateStore
	log      *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(tracking match.TrackingStore, states match.StateStore, log *zap.Logger) *Server {
	s := &Server{
		tracking: tracking,
		states:   states,
		log:      log.Named("api"),
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(30 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/matches", func(r chi.Router) {
			r.Get("/", s.listMatches)
			r.Route("/{match_id}", func(r chi.Router) {
				r.Get("/state", s.getMatchState)
				r.Post("/mute", s.muteMatch)
				r.Post("/resume", s.resumeMatch)
			})
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	// Listing is the cheapest store round trip that proves the backing
	// database answers.
	if _, err := s.tracking.List(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type matchView struct {
	MatchID string `json:"match_id"`
	Name    string `json:"name"`
	Active  bool   `json:"active"`
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	list, err := s.tracking.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}
	views := make([]matchView, 0, len(list))
	for _, m := range list {
		views = append(views, matchView{MatchID: m.MatchID, Name: m.Name, Active: m.Active})
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": views})
}

type stateView struct {
	MatchID         string `json:"match_id"`
	LastOvers       string `json:"last_overs"`
	LastWickets     int    `json:"last_wickets"`
	Phase           int    `json:"phase"`
	TossAnnounced   bool   `json:"toss_announced"`
	Ended           bool   `json:"ended"`
	LastBalls       int    `json:"last_balls"`
	LastWicketBalls int    `json:"last_wicket_balls"`
}

func (s *Server) getMatchState(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "match_id")
	state, ok, err := s.states.Load(r.Context(), matchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load state")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	writeJSON(w, http.StatusOK, stateView{
		MatchID:         matchID,
		LastOvers:       overs.Display(state.LastBalls),
		LastWickets:     state.LastWickets,
		Phase:           state.Phase,
		TossAnnounced:   state.TossAnnounced,
		Ended:           state.Ended,
		LastBalls:       state.LastBalls,
		LastWicketBalls: state.LastWicketBalls,
	})
}

func (s *Server) muteMatch(w http.ResponseWriter, r *http.Request) {
	s.setActive(w, r, false)
}

func (s *Server) resumeMatch(w http.ResponseWriter, r *http.Request) {
	s.setActive(w, r, true)
}

func (s *Server) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	matchID := chi.URLParam(r, "match_id")
	if err := s.tracking.SetActive(r.Context(), matchID, active); err != nil {
		if errors.Is(err, match.ErrNotTracked) {
			writeError(w, http.StatusNotFound, "match not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update tracking")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"match_id": matchID, "active": active})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		metrics.ObserveHTTPRequest(r.Method, r.URL.Path, ww.status, time.Since(start))
		s.log.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("panic recovered", zap.Any("error", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, buf, err := h.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, buf, nil
	}
	return nil, nil, errors.New("hijacker not supported")
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
