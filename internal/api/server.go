// Package api serves garden guides over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"garden-guide/internal/calendar"
	"garden-guide/internal/metrics"
	"garden-guide/internal/schedule"
)

// ErrBadWeek is returned when the week path segment is not a number.
var ErrBadWeek = errors.New("week must be a number")

// GuideService computes garden guides.
type GuideService interface {
	Guide(ctx context.Context, req schedule.Request) (*schedule.Guide, error)
}

// MetricsRecorder persists guide metrics.
type MetricsRecorder interface {
	Record(ctx context.Context, m metrics.GuideMetric) error
}

// Server is the HTTP API. Guide endpoints require a bearer token.
type Server struct {
	guides  GuideService
	metrics MetricsRecorder
	secret  []byte
	mux     *http.ServeMux
}

// NewServer creates a new Server. metrics may be nil.
func NewServer(guides GuideService, recorder MetricsRecorder, jwtSecret string) *Server {
	s := &Server{
		guides:  guides,
		metrics: recorder,
		secret:  []byte(jwtSecret),
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/guide", s.authenticate(s.handleGuide))
	s.mux.HandleFunc("GET /api/guide/{week}", s.authenticate(s.handleGuide))
	return s
}

// Handle registers an extra handler on the server's mux, e.g. a webhook.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
}

// Handler returns the root handler with request ids attached.
func (s *Server) Handler() http.Handler {
	return withRequestID(s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleGuide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := RequestID(ctx)
	userID := UserID(ctx)

	req := schedule.Request{ID: reqID, UserID: userID, Current: true}
	if raw := r.PathValue("week"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, reqID, fmt.Errorf("%w: %q", ErrBadWeek, raw))
			return
		}
		req.Week, req.Current = n, false
	}

	guide, err := s.guides.Guide(ctx, req)
	if err != nil {
		writeError(w, reqID, err)
		return
	}

	if s.metrics != nil {
		if err := s.metrics.Record(ctx, metrics.FromGuide(userID, "api", guide.Stats)); err != nil {
			log.Printf("Warning: [request %s] failed to record metrics: %v", reqID, err)
		}
	}
	log.Printf("[request %s] served week %d to %s (%d tasks, %d skipped)", reqID, guide.Stats.Week, userID, guide.Stats.Tasks, guide.Stats.Skipped)
	writeJSON(w, http.StatusOK, guide)
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadWeek):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, calendar.ErrWeekNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, reqID string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("Error: [request %s] %v", reqID, err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg, RequestID: reqID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Warning: failed to encode response: %v", err)
	}
}
