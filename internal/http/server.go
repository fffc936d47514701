package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	metricsprometheus "github.com/slok/go-http-metrics/metrics/prometheus"
	httpmetrics "github.com/slok/go-http-metrics/middleware"
	httpmetricsstd "github.com/slok/go-http-metrics/middleware/std"

	"github.com/openride/rideapi/internal/config"
	"github.com/openride/rideapi/internal/identity"
	"github.com/openride/rideapi/internal/rating"
	"github.com/openride/rideapi/internal/repository"
	"github.com/openride/rideapi/internal/store"
)

const maxRequestBody = 1 << 20 // 1 MiB

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	store    *store.Store
	repo     *repository.Repository
	ratings  *rating.Service
	resolver identity.Resolver
	logger   logrus.FieldLogger
	router   chi.Router
	httpSrv  *http.Server
	metrics  *prometheus.Registry
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, st *store.Store, repo *repository.Repository, ratings *rating.Service, resolver identity.Resolver, logger logrus.FieldLogger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Per-server registry so constructing several servers in one process
	// never trips duplicate collector registration.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metricsprometheus.NewRecorder(metricsprometheus.Config{Registry: registry})
	mdlw := httpmetrics.New(httpmetrics.Config{Recorder: recorder})
	r.Use(func(next http.Handler) http.Handler {
		return httpmetricsstd.Handler("", mdlw, next)
	})

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Server{
		cfg:      cfg,
		store:    st,
		repo:     repo,
		ratings:  ratings,
		resolver: resolver,
		logger:   logger,
		router:   r,
		metrics:  registry,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))

	s.router.Route("/users", func(r chi.Router) {
		r.Post("/", s.handleCreateUser)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", s.handleGetUser)
			r.Get("/ratings", s.handleListUserRatings)
		})
	})

	s.router.Route("/trips", func(r chi.Router) {
		r.With(s.requireActor).Post("/", s.handleCreateTrip)
		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.handleGetTrip)
			r.With(s.requireActor).Post("/accept", s.handleAcceptTrip)
			r.With(s.requireActor).Post("/complete", s.handleCompleteTrip)
			r.Get("/ratings", s.handleListTripRatings)
			r.With(s.requireActor).Post("/ratings", s.handleSubmitRating)
			r.With(s.requireActor).Get("/ratings/check", s.handleCheckRated)
		})
	})
}

// Start boots the HTTP server asynchronously.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.WithError(err).Error("failed to encode response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}
