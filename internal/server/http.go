// Package server exposes the worker's monitoring endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"audiopipe/internal/config"
)

// HTTPServer serves health and metrics endpoints for the worker daemon.
type HTTPServer struct {
	server    *http.Server
	log       *logrus.Logger
	startTime time.Time
}

func New(cfg config.HTTPConfig, log *logrus.Logger) *HTTPServer {
	h := &HTTPServer{
		log:       log,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	h.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return h
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}

// Start blocks serving requests until Shutdown is called.
func (h *HTTPServer) Start() error {
	h.log.WithField("addr", h.server.Addr).Info("monitoring endpoint listening")
	if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (h *HTTPServer) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}
