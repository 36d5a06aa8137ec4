// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
	applog "bilancio/internal/log"
)

// Service is the inbound port the handlers talk to.
type Service interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (ledger.IngestResult, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	ListGoals(ctx context.Context) ([]core.Goal, error)
	AddGoalProgress(ctx context.Context, id int64, amount core.Money) (core.Goal, error)
	BuildSummary(ctx context.Context, from, to core.Date) (core.Summary, error)
}

type Server struct {
	http.Server
	service      Service
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a
// ready-to-run http.Server.
func NewServer(addr string, svc Service) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:           addr,
			Handler:        mux,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 64 << 10,
		},
		service:     svc,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /transactions", s.withSecurityHeaders(s.handleCreateTransaction))
	mux.HandleFunc("GET /transactions", s.withSecurityHeaders(s.handleListTransactions))
	mux.HandleFunc("POST /budgets", s.withSecurityHeaders(s.handleCreateBudget))
	mux.HandleFunc("GET /budgets", s.withSecurityHeaders(s.handleListBudgets))
	mux.HandleFunc("POST /goals", s.withSecurityHeaders(s.handleCreateGoal))
	mux.HandleFunc("GET /goals", s.withSecurityHeaders(s.handleListGoals))
	mux.HandleFunc("POST /goals/{id}/progress", s.withSecurityHeaders(s.handleGoalProgress))
	mux.HandleFunc("GET /reports/summary", s.withSecurityHeaders(s.handleSummary))

	httpLogger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	s.Server.Handler = applog.Middleware(httpLogger)(mux)

	return s
}

// Shutdown stops the server and its cleanup routines exactly once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		logger := applog.FromContext(ctx)
		logger.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			applog.FieldUserAgent, r.Header.Get("User-Agent"))

		// Rate limit mutations only. Reads are cheap.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP, applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
