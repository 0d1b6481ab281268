// Package http exposes the JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

type Server struct {
	server *http.Server
	logger *log.Logger

	storage      *storage.Repository
	categories   *services.CategoryService
	transactions *services.TransactionService
	goals        *services.GoalService
	reports      *services.ReportService
	dashboard    *services.DashboardService

	// Demo account standing in for authentication; every request acts as
	// this user.
	user core.User
}

type Deps struct {
	Storage      *storage.Repository
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Goals        *services.GoalService
	Reports      *services.ReportService
	Dashboard    *services.DashboardService
	User         core.User
	Logger       *log.Logger
}

// NewServer configures routes and timeouts, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		logger:       deps.Logger.WithComponent(log.ComponentHTTP),
		storage:      deps.Storage,
		categories:   deps.Categories,
		transactions: deps.Transactions,
		goals:        deps.Goals,
		reports:      deps.Reports,
		dashboard:    deps.Dashboard,
		user:         deps.User,
	}

	mux := http.NewServeMux()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /transactions", s.withRequestLog(s.handleListTransactions))
	mux.HandleFunc("POST /transactions", s.withRequestLog(s.handleCreateTransaction))
	mux.HandleFunc("GET /transactions/{id}", s.withRequestLog(s.handleGetTransaction))
	mux.HandleFunc("PUT /transactions/{id}", s.withRequestLog(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.withRequestLog(s.handleDeleteTransaction))

	mux.HandleFunc("GET /categories", s.withRequestLog(s.handleListCategories))
	mux.HandleFunc("POST /categories", s.withRequestLog(s.handleCreateCategory))
	mux.HandleFunc("GET /categories/{id}", s.withRequestLog(s.handleGetCategory))
	mux.HandleFunc("PUT /categories/{id}", s.withRequestLog(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /categories/{id}", s.withRequestLog(s.handleDeleteCategory))

	mux.HandleFunc("GET /goals", s.withRequestLog(s.handleListGoals))
	mux.HandleFunc("POST /goals", s.withRequestLog(s.handleCreateGoal))
	mux.HandleFunc("GET /goals/{id}", s.withRequestLog(s.handleGetGoal))
	mux.HandleFunc("PUT /goals/{id}", s.withRequestLog(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /goals/{id}", s.withRequestLog(s.handleDeleteGoal))

	mux.HandleFunc("GET /reports/monthly", s.withRequestLog(s.handleMonthlyReport))
	mux.HandleFunc("GET /reports/recent", s.withRequestLog(s.handleRecentReport))
	mux.HandleFunc("GET /dashboard", s.withRequestLog(s.handleDashboard))

	return s
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.storage.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"checks": map[string]string{"database": err.Error()},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"checks": map[string]string{"database": "ok"},
	})
}

// withRequestLog tags each request with an id and logs start and completion
// with the captured status code.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()

		logger := s.logger.With(log.FieldRequestID, requestID)
		ctx := r.Context()
		logger.InfoContext(ctx, "Request started",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldQuery, r.URL.RawQuery)

		rw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		logger.InfoContext(ctx, "Request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds())
	}
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
