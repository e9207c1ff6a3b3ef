// Package rpc exposes the swap gate over HTTP.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"safepump/core/events"
	"safepump/core/state"
	"safepump/native/asset"
	"safepump/native/common"
	"safepump/native/coordinator"
	"safepump/observability"
	"safepump/storage/journal"
)

// DefaultSlotDuration is the length of one velocity slot on the wall clock.
const DefaultSlotDuration = 400 * time.Millisecond

const requestIDHeader = "X-Request-ID"

// EventSource serves committed events back to clients.
type EventSource interface {
	Recent(ctx context.Context, kind string, limit int) ([]journal.Entry, error)
}

// Config wires the server to its engines.
type Config struct {
	State       *state.Manager
	Coordinator *coordinator.Engine
	Assets      *asset.Engine
	Events      EventSource
	Emitter     events.Emitter
	Limiter     *RateLimiter
	Logger      *slog.Logger
	Env         func() common.Env
}

// Server serialises every mutating request; engines own no locks.
type Server struct {
	mu      sync.RWMutex
	state   *state.Manager
	coord   *coordinator.Engine
	assets  *asset.Engine
	events  EventSource
	emitter events.Emitter
	limiter *RateLimiter
	logger  *slog.Logger
	env     func() common.Env
}

// WallClock derives Now and Slot from now, one slot per slotDuration.
func WallClock(now func() time.Time, slotDuration time.Duration) func() common.Env {
	if slotDuration <= 0 {
		slotDuration = DefaultSlotDuration
	}
	return func() common.Env {
		t := now()
		return common.Env{Now: t.Unix(), Slot: uint64(t.UnixNano() / int64(slotDuration))}
	}
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.State == nil || cfg.Coordinator == nil || cfg.Assets == nil {
		return nil, errors.New("rpc: state, coordinator and assets are required")
	}
	s := &Server{
		state:   cfg.State,
		coord:   cfg.Coordinator,
		assets:  cfg.Assets,
		events:  cfg.Events,
		emitter: cfg.Emitter,
		limiter: cfg.Limiter,
		logger:  cfg.Logger,
		env:     cfg.Env,
	}
	if s.emitter == nil {
		s.emitter = events.NoopEmitter{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.env == nil {
		s.env = WallClock(time.Now, DefaultSlotDuration)
	}
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		if s.limiter != nil {
			v1.Use(s.limiter.Middleware)
		}
		v1.Post("/swap", s.handleSwap)
		v1.Post("/assets", s.handleLaunch)
		v1.Get("/assets/{mint}", s.handleGetAsset)
		v1.Post("/vaults", s.handleRegisterVault)
		v1.Get("/vaults/{user}", s.handleGetVault)
		v1.Post("/traders", s.handleRegisterTrader)
		v1.Post("/rewards/distribute", s.handleDistribute)
		v1.Get("/events", s.handleEvents)
	})
	return otelhttp.NewHandler(r, "safepump.rpc")
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("rpc listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("rpc: serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// apply runs fn in one state transaction under the write lock.
func (s *Server) apply(fn func(tx *state.Tx) (interface{}, error)) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.state.Begin()
	out, err := fn(tx)
	if err != nil {
		tx.Discard()
		return nil, err
	}
	if err := tx.Commit(s.emitter); err != nil {
		tx.Discard()
		return nil, err
	}
	return out, nil
}

// view runs fn against a throwaway transaction under the read lock.
func (s *Server) view(fn func(tx *state.Tx) (interface{}, error)) (interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx := s.state.Begin()
	defer tx.Discard()
	return fn(tx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// observe tags the request with an id and records its outcome.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		done := observability.ModuleMetrics().Begin("rpc")
		defer done()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		observability.ModuleMetrics().Observe("rpc", r.Method+" "+route, rec.status, time.Since(start))
	})
}
