// Package server exposes the activity service over HTTP as a small
// JSON API.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/naka-gawa/github-activity/internal/domain"
	"github.com/naka-gawa/github-activity/internal/gateway"
	"github.com/naka-gawa/github-activity/internal/usecase"
)

// ActivityService is the boundary the transport layer consumes.
type ActivityService interface {
	UserActivity(ctx context.Context, username string) (domain.UserActivityReport, error)
}

// Server wires HTTP endpoints to the activity service.
type Server struct {
	mux    *http.ServeMux
	svc    ActivityService
	logger *log.Logger
}

// New assembles routes with dependencies.
func New(svc ActivityService, logger *log.Logger) *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		svc:    svc,
		logger: logger,
	}
	s.mux.HandleFunc("GET /api/v1/users/{username}/activity", s.handleUserActivity)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	return s
}

// ServeHTTP delegates to the underlying mux.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.mux.ServeHTTP(w, req)
}

func (s *Server) handleHealthz(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUserActivity(w http.ResponseWriter, req *http.Request) {
	username := req.PathValue("username")
	report, err := s.svc.UserActivity(req.Context(), username)
	if err != nil {
		s.respondError(w, username, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// respondError maps service errors onto HTTP status codes. Rate limit
// responses carry a Retry-After header when the upstream provided one.
func (s *Server) respondError(w http.ResponseWriter, username string, err error) {
	var notFound *gateway.NotFoundError
	var rateLimited *gateway.RateLimitError
	var apiErr *gateway.APIError
	switch {
	case errors.Is(err, usecase.ErrInvalidUsername):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		s.logger.Printf("User not found: %s", username)
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &rateLimited):
		s.logger.Printf("Rate limited while fetching events for %s", username)
		if secs := int(rateLimited.RetryAfter.Seconds()); secs > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(secs))
		}
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Printf("Timed out fetching events for %s", username)
		writeError(w, http.StatusGatewayTimeout, "upstream request timed out")
	case errors.As(err, &apiErr):
		s.logger.Printf("GitHub API error for %s: %v", username, err)
		writeError(w, http.StatusBadGateway, "upstream api error")
	default:
		s.logger.Printf("Unexpected error for %s: %v", username, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
