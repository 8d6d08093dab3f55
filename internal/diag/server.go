// Package diag exposes a diagnostics-only HTTP surface for operators:
// cache and rate-limit introspection plus Prometheus metrics. The engine
// core never serves HTTP itself; this surface is purely observational.
package diag

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/anivault/anivault/internal/cache"
	"github.com/anivault/anivault/internal/log"
	"github.com/anivault/anivault/internal/ratelimit"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Server wires the diagnostics routes for one running engine instance.
type Server struct {
	Cache   *cache.Store
	Runtime *ratelimit.Runtime
}

// Router builds the chi router for the diagnostics surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(log.Middleware())

	r.Get("/healthz", s.handleHealthz)
	r.Get("/debug/cache", s.handleDebugCache)
	r.Get("/debug/ratelimit", s.handleDebugRateLimit)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleDebugCache(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Cache.Stats(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDebugRateLimit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Runtime.Circuit.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// Serve runs the diagnostics HTTP server until ctx is cancelled, then shuts
// it down gracefully.
func Serve(ctx context.Context, addr string, s *Server) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
