// Package http serves the TrendPulse API: the chat endpoint, task
// management, analysis history, the manual trigger, and liveness/status
// routes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"trendpulse/app/core/interaction/auth"
	"trendpulse/app/core/pipeline"
	"trendpulse/app/core/store"
	"trendpulse/app/pkg/logger"
)

type userIDKey struct{}

type Server struct {
	port            int
	server          *http.Server
	service         *pipeline.Service
	verifier        auth.Verifier
	statusProvider  func(context.Context) map[string]interface{}
	shutdownTimeout time.Duration
	startedUnix     atomic.Int64
}

func NewServer(port int, service *pipeline.Service, verifier auth.Verifier) *Server {
	return &Server{
		port:            port,
		service:         service,
		verifier:        verifier,
		shutdownTimeout: 5 * time.Second,
	}
}

// SetStatusProvider attaches runtime details (scheduler snapshot) to the
// status route.
func (s *Server) SetStatusProvider(provider func(context.Context) map[string]interface{}) {
	s.statusProvider = provider
}

func (s *Server) Start(ctx context.Context) error {
	s.startedUnix.Store(time.Now().Unix())

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown error: %v", err)
		}
	}()

	logger.Info("http listening on port %d", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", s.handleListTasks)
				r.Post("/chat", s.handleChat)
				r.Patch("/{id}/toggle", s.handleToggleTask)
				r.Delete("/{id}", s.handleDeleteTask)
			})
			r.Route("/analysis", func(r chi.Router) {
				r.Get("/", s.handleListResults)
				r.Post("/{id}/run", s.handleRunTask)
			})
		})
	})
	return r
}

// requireAuth resolves the Bearer token to a user id and stores it on the
// request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "No token provided. Please log in.")
			return
		}
		userID, err := s.verifier.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token. Please log in again.")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID)))
	})
}

func requestUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey{}).(string)
	return userID
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	reply, err := s.service.Chat(r.Context(), requestUserID(r), req.Message)
	if err != nil {
		logger.Error("chat failed: %v", err)
		writeError(w, http.StatusInternalServerError, "chat failed")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.service.ListTasks(r.Context(), requestUserID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.service.Toggle(r.Context(), requestUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "failed to toggle task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(r.Context(), requestUserID(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err, "failed to delete task")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.service.Results(r.Context(), requestUserID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list results")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleRunTask(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Run(r.Context(), requestUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "failed to run task")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{}
	if started := s.startedUnix.Load(); started > 0 {
		startAt := time.Unix(started, 0).UTC()
		resp["started_at"] = startAt.Format(time.RFC3339)
		resp["uptime_sec"] = int64(time.Since(startAt).Seconds())
	}
	if s.statusProvider != nil {
		resp["runtime"] = s.statusProvider(r.Context())
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, store.ErrTaskNotFound) {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	logger.Error("%s: %v", fallback, err)
	writeError(w, http.StatusInternalServerError, fallback)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
