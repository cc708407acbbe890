package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/interstitial/internal/bootstrap"
	"github.com/patrickwarner/interstitial/internal/config"
	"github.com/patrickwarner/interstitial/internal/interstitial"
	"github.com/patrickwarner/interstitial/internal/models"
	"github.com/patrickwarner/interstitial/internal/observability"
)

// Starter is the SDK bootstrap as seen by the control API.
type Starter interface {
	Start(ctx context.Context) error
	Phase() bootstrap.Phase
}

// ConsentReader reports the cached consent outcome.
type ConsentReader interface {
	Status() (models.ConsentStatus, bool)
}

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger       *zap.Logger
	Metrics      observability.MetricsRegistry
	Coordinators *interstitial.Registry
	Bootstrap    Starter
	Consent      ConsentReader
	Device       models.DeviceClass
	Config       config.Config
}

// NewServer constructs a Server.
func NewServer(logger *zap.Logger, metrics observability.MetricsRegistry, coordinators *interstitial.Registry, boot Starter, consent ConsentReader, device models.DeviceClass, cfg config.Config) *Server {
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Server{
		Logger:       logger,
		Metrics:      metrics,
		Coordinators: coordinators,
		Bootstrap:    boot,
		Consent:      consent,
		Device:       device,
		Config:       cfg,
	}
}

// writeJSON writes v with the given status and records request metrics.
func (s *Server) writeJSON(w http.ResponseWriter, endpoint, method string, start time.Time, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Warn("failed to encode response", zap.String("endpoint", endpoint), zap.Error(err))
	}
	s.Metrics.IncrementRequests(endpoint, method, strconv.Itoa(status))
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}

type errorResponse struct {
	Error string `json:"error"`
}
