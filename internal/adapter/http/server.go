// Package http exposes the assessment service over HTTP: health and metrics
// endpoints plus the acquisition and scoring API.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ksandaruwan/floodwatch/internal/assessor"
	"github.com/ksandaruwan/floodwatch/internal/domain"
)

// Service is the assessment surface the server fronts.
type Service interface {
	Acquire(ctx context.Context, center domain.Coordinate) (assessor.Assessment, error)
	ScoreRisk(ctx context.Context, rateOverride *float64, durationHours float64) (domain.RiskAssessment, error)
	Current() (assessor.Assessment, bool)
	CheckReadiness(ctx context.Context) error
}

// Server exposes health, readiness, metrics, and assessment HTTP endpoints.
type Server struct {
	httpServer *http.Server
	service    Service
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the full route set.
func NewServer(addr string, service Service, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		service: service,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/assess", s.handleAssess)
	mux.HandleFunc("GET /v1/assessment", s.handleCurrent)
	mux.HandleFunc("POST /v1/risk", s.handleRisk)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.service.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type assessRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lon < -180 || req.Lon > 180 {
		writeError(w, http.StatusBadRequest, "coordinate out of range")
		return
	}

	result, err := s.service.Acquire(r.Context(), domain.Coordinate{Lat: req.Lat, Lon: req.Lon})
	if err != nil {
		s.logger.Error("acquire failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "acquisition interrupted")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCurrent(w http.ResponseWriter, _ *http.Request) {
	current, ok := s.service.Current()
	if !ok {
		writeError(w, http.StatusNotFound, "no location acquired yet")
		return
	}
	writeJSON(w, http.StatusOK, current)
}

type riskRequest struct {
	RateOverride  *float64 `json:"rate_override,omitempty"`
	DurationHours float64  `json:"duration_hours"`
}

type riskResponse struct {
	Risk       domain.RiskAssessment `json:"risk"`
	ImpactZone domain.ImpactZone     `json:"impact_zone"`
	Caption    string                `json:"caption"`
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RateOverride != nil && *req.RateOverride < 0 {
		writeError(w, http.StatusBadRequest, "rate_override must be non-negative")
		return
	}
	if req.DurationHours < 0 || req.DurationHours > 168 {
		writeError(w, http.StatusBadRequest, "duration_hours must be within 0..168")
		return
	}

	result, err := s.service.ScoreRisk(r.Context(), req.RateOverride, req.DurationHours)
	if err != nil {
		s.logger.Error("risk scoring failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "scoring interrupted")
		return
	}
	var waterNearby bool
	if current, ok := s.service.Current(); ok {
		waterNearby = current.Hydrology.WaterNearby()
	}
	writeJSON(w, http.StatusOK, riskResponse{
		Risk:       result,
		ImpactZone: domain.ImpactZoneFor(result.Level),
		Caption:    result.Level.Caption(waterNearby),
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
