// Package status serves the health, metrics and viewport state of a running
// viewer over HTTP.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/philipparndt/gomol/internal/platform/logger"
	"github.com/philipparndt/gomol/internal/platform/metrics"
	"github.com/philipparndt/gomol/internal/viewport"
	"github.com/philipparndt/gomol/version"
)

const shutdownTimeout = 5 * time.Second

// Source provides the viewport snapshots
type Source interface {
	Snapshots() []viewport.Snapshot
	Active() int
	LoadedCount() int
}

type viewportsResponse struct {
	Active    int                 `json:"active"`
	Viewports []viewport.Snapshot `json:"viewports"`
}

// NewRouter builds the status routes
func NewRouter(src Source, met *metrics.Metrics, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, version.Get())
	})
	if met != nil {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			met.Handler(func() {
				met.SetLoadedViewports(src.LoadedCount())
			}).ServeHTTP(w, r)
		})
	}
	r.Route("/api/viewports", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, viewportsResponse{Active: src.Active(), Viewports: src.Snapshots()})
		})
		r.Get("/{index}", func(w http.ResponseWriter, r *http.Request) {
			snaps := src.Snapshots()
			i, err := strconv.Atoi(chi.URLParam(r, "index"))
			if err != nil || i < 0 || i >= len(snaps) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such viewport"})
				return
			}
			writeJSON(w, http.StatusOK, snaps[i])
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Server runs the status router in the background
type Server struct {
	srv *http.Server
	log *slog.Logger
}

// Start listens on addr and serves until Shutdown
func Start(addr string, handler http.Handler, log *slog.Logger) *Server {
	s := &Server{srv: &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}, log: log}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("status server error", "error", err)
		}
	}()
	log.Info("status server starting", "addr", addr)
	return s
}

// Shutdown drains connections
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		return err
	}
	s.log.Info("status server stopped")
	return nil
}
