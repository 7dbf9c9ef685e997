// Package httpapi exposes the daily-closing trigger over HTTP so an
// external scheduler can fire it in addition to the built-in cron.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"tasabot/core/logger"
	"tasabot/internal/service"
)

// Notifier pushes a message to the admin chat.
type Notifier interface {
	NotifyAdmin(ctx context.Context, text string) error
}

// Server serves the closing-report endpoint.
type Server struct {
	summary *service.DailySummary
	notify  Notifier
}

func NewServer(summary *service.DailySummary, notify Notifier) *Server {
	return &Server{summary: summary, notify: notify}
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cierre-diario", s.handleCierre)
	return mux
}

func (s *Server) handleCierre(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	sum, err := s.summary.Compute(ctx)
	if err != nil {
		s.fail(w, start, err)
		return
	}
	if err := s.notify.NotifyAdmin(ctx, sum.Format()); err != nil {
		s.fail(w, start, err)
		return
	}

	logger.HTTP.Info("daily closing pushed",
		slog.String("event", "cierre"),
		slog.String("status", "ok"),
		slog.Int("tx_count", sum.Count),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) fail(w http.ResponseWriter, start time.Time, err error) {
	logger.HTTP.Error("daily closing failed",
		slog.String("event", "cierre"),
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Run serves the API until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	logger.HTTP.Info("api listening",
		slog.String("event", "listen"),
		slog.String("addr", addr),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
