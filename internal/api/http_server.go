package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"carrental/internal/config"
	"carrental/internal/domain"
	"carrental/internal/metrics"
	"carrental/internal/models"
	"carrental/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	msgServerError   = "Server error"
	requestIDHeader  = "X-Request-ID"
	clientKeyUnknown = "unknown"
	readinessTimeout = 2 * time.Second
)

// Deps are the collaborators the HTTP surface dispatches to.
type Deps struct {
	Bookings  *service.BookingService
	Query     *service.BookingQuery
	Cars      *service.CarService
	Users     domain.UserStore
	Health    domain.HealthChecker
	RateLimit domain.RateLimitRepository
}

// HTTPServer serves the booking and car API.
type HTTPServer struct {
	cfg     config.APIConfig
	deps    Deps
	auth    *Authenticator
	limiter *rateLimiter
	server  *http.Server
	logger  zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, deps Deps, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:     cfg,
		deps:    deps,
		auth:    NewAuthenticator(cfg, deps.Users, deps.RateLimit, logger),
		limiter: newRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		logger:  logger.With().Str("component", "http").Logger(),
	}

	mux := http.NewServeMux()
	srv.routes(mux)

	handler := requestIDMiddleware(srv.loggingMiddleware(srv.recoverMiddleware(srv.rateLimitMiddleware(mux))))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	base := s.cfg.HTTP.BasePath

	mux.Handle("POST "+base+"/bookings", s.auth.Require(models.RoleCustomer, s.handleCreateBooking))
	mux.Handle("PUT "+base+"/bookings/{id}/pay", s.auth.Require(models.RoleCustomer, s.handleProcessPayment))
	mux.Handle("PUT "+base+"/bookings/{id}/cancel", s.auth.Require(models.RoleCustomer, s.handleCancelBooking))
	mux.Handle("GET "+base+"/bookings/customer", s.auth.Require(models.RoleCustomer, s.handleCustomerBookings))
	mux.Handle("GET "+base+"/bookings/owner", s.auth.Require(models.RoleOwner, s.handleOwnerBookings))

	mux.HandleFunc("GET "+base+"/cars", s.handleListCars)
	mux.Handle("POST "+base+"/cars", s.auth.Require(models.RoleOwner, s.handleCreateCar))
	mux.Handle("GET "+base+"/cars/owner", s.auth.Require(models.RoleOwner, s.handleOwnerCars))
	mux.HandleFunc("GET "+base+"/cars/{id}", s.handleGetCar)
	mux.Handle("PUT "+base+"/cars/{id}", s.auth.Require(models.RoleOwner, s.handleUpdateCar))
	mux.Handle("DELETE "+base+"/cars/{id}", s.auth.Require(models.RoleOwner, s.handleDeleteCar))

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Str("base_path", s.cfg.HTTP.BasePath).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// SweepIdleClients evicts per-client token buckets not used recently.
func (s *HTTPServer) SweepIdleClients() int {
	return s.limiter.sweep(limiterIdleTTL)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := s.deps.Health.PingContext(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.IncHTTP(route, recorder.status)

		s.logger.Info().
			Str("request_id", requestIDFromContext(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", route).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

func (s *HTTPServer) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().
					Str("request_id", requestIDFromContext(r.Context())).
					Interface("panic", rec).
					Msg("handler panic")
				writeError(w, http.StatusInternalServerError, msgServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"message": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
