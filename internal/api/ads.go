package api

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/patrickwarner/interstitial/internal/interstitial"
	"github.com/patrickwarner/interstitial/internal/middleware"
	"github.com/patrickwarner/interstitial/internal/observability"
)

var tracer = observability.Tracer("api")

// StatusResponse describes the SDK, consent and every ad unit.
type StatusResponse struct {
	Device  string                  `json:"device"`
	Phase   string                  `json:"phase"`
	Consent string                  `json:"consent"`
	Units   []interstitial.Snapshot `json:"units"`
}

// StartHandler handles POST /ads/start by bootstrapping the ad SDK. The
// request context only bounds how long the caller waits.
func (s *Server) StartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "StartHandler",
		trace.WithAttributes(
			attribute.String("http.method", "POST"),
			attribute.String("http.route", "/ads/start"),
		))
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)
	start := time.Now()
	const endpoint = "ads_start"
	const method = "POST"

	if err := s.Bootstrap.Start(ctx); err != nil {
		span.RecordError(err)
		logger.Warn("ad sdk start failed", zap.Error(err))
		s.writeJSON(w, endpoint, method, start, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, endpoint, method, start, http.StatusOK, s.status())
}

// StatusHandler handles GET /ads/status.
func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "ads_status", "GET", time.Now(), http.StatusOK, s.status())
}

func (s *Server) status() StatusResponse {
	resp := StatusResponse{
		Device:  s.Device.String(),
		Phase:   s.Bootstrap.Phase().String(),
		Consent: "unresolved",
		Units:   []interstitial.Snapshot{},
	}
	if status, ok := s.Consent.Status(); ok {
		resp.Consent = status.String()
	}
	for _, unit := range s.Coordinators.Units() {
		if c, ok := s.Coordinators.Lookup(unit); ok {
			resp.Units = append(resp.Units, c.Snapshot())
		}
	}
	return resp
}
