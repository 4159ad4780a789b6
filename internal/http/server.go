package http

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cesaralej/agastar/internal/auth"
	"github.com/cesaralej/agastar/internal/log"
	"github.com/cesaralej/agastar/internal/push"
	"github.com/cesaralej/agastar/internal/services"
)

type Server struct {
	http.Server

	authenticator auth.Authenticator
	transactions  *services.TransactionService
	budgets       *services.BudgetService
	recurrings    *services.RecurringService
	dashboard     *services.DashboardService
	hub           *push.Hub

	rateLimiter *rateLimiter
	upgrader    websocket.Upgrader

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(
	addr string,
	authenticator auth.Authenticator,
	transactions *services.TransactionService,
	budgets *services.BudgetService,
	recurrings *services.RecurringService,
	dashboard *services.DashboardService,
	hub *push.Hub,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		authenticator: authenticator,
		transactions:  transactions,
		budgets:       budgets,
		recurrings:    recurrings,
		dashboard:     dashboard,
		hub:           hub,
		rateLimiter:   newRateLimiter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/transactions", s.api(log.ComponentTransaction, s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.api(log.ComponentTransaction, s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.api(log.ComponentTransaction, s.handleGetTransaction))
	mux.HandleFunc("PATCH /api/transactions/{id}", s.api(log.ComponentTransaction, s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.api(log.ComponentTransaction, s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/budgets", s.api(log.ComponentBudget, s.handleListBudgets))
	mux.HandleFunc("PUT /api/budgets", s.api(log.ComponentBudget, s.handleUpsertBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.api(log.ComponentBudget, s.handleDeleteBudget))

	mux.HandleFunc("GET /api/recurrings", s.api(log.ComponentRecurring, s.handleListRecurrings))
	mux.HandleFunc("POST /api/recurrings", s.api(log.ComponentRecurring, s.handleCreateRecurring))
	mux.HandleFunc("GET /api/recurrings/{id}", s.api(log.ComponentRecurring, s.handleGetRecurring))
	mux.HandleFunc("PATCH /api/recurrings/{id}", s.api(log.ComponentRecurring, s.handleUpdateRecurring))
	mux.HandleFunc("DELETE /api/recurrings/{id}", s.api(log.ComponentRecurring, s.handleDeleteRecurring))
	mux.HandleFunc("POST /api/recurrings/{id}/pay", s.api(log.ComponentRecurring, s.handlePayRecurring))

	mux.HandleFunc("GET /api/dashboard", s.api(log.ComponentDashboard, s.handleDashboard))

	mux.HandleFunc("GET /ws", s.withSecurityHeaders(s.handleWebSocket))

	return s
}

// api wraps a handler with the standard middleware chain for JSON
// endpoints: security headers and request logging outermost, then token
// authentication, then a component-scoped logger in the context.
func (s *Server) api(component string, next http.HandlerFunc) http.HandlerFunc {
	withLogger := log.ComponentMiddleware(component)(next)
	authed := auth.Middleware(s.authenticator)(withLogger)
	return s.withSecurityHeaders(authed.ServeHTTP)
}

// Shutdown gracefully shuts down the server and cleanup routines.
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

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit mutations only; reads are cheap and cache-backed.
		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		setSecurityHeaders(w)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack passes through to the underlying writer so the WebSocket
// upgrade works behind the logging wrapper.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
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

// handleWebSocket upgrades the connection and binds it to the
// authenticated user. The read loop exists only to notice the peer
// going away; clients never send application data upstream.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authenticator.Authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.ErrorContext(r.Context(), "WebSocket upgrade failed",
			"error", err, "user_id", userID)
		return
	}

	s.hub.Register(conn, userID)
	slog.InfoContext(r.Context(), "WebSocket client connected", "user_id", userID)

	go func() {
		defer func() {
			s.hub.Unregister(conn)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
