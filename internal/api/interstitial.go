package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/patrickwarner/interstitial/internal/interstitial"
	"github.com/patrickwarner/interstitial/internal/middleware"
)

// ShowResponse is returned by the show endpoint.
type ShowResponse struct {
	Outcome interstitial.ShowOutcome `json:"outcome"`
	interstitial.Snapshot
}

// coordinator resolves the {unit} route variable. Only configured units are
// served; it writes a 404 and returns false otherwise.
func (s *Server) coordinator(w http.ResponseWriter, r *http.Request, endpoint string, start time.Time) (*interstitial.Coordinator, bool) {
	unit := mux.Vars(r)["unit"]
	c, ok := s.Coordinators.Lookup(unit)
	if !ok {
		s.writeJSON(w, endpoint, r.Method, start, http.StatusNotFound, errorResponse{Error: "unknown ad unit: " + unit})
		return nil, false
	}
	return c, true
}

// PreloadHandler handles POST /interstitial/{unit}/preload. It returns once
// the load has finished (or immediately when one is already in progress).
func (s *Server) PreloadHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "preload"

	c, ok := s.coordinator(w, r, endpoint, start)
	if !ok {
		return
	}
	ctx, span := tracer.Start(r.Context(), "PreloadHandler",
		trace.WithAttributes(attribute.String("unit_id", c.UnitID())))
	defer span.End()

	c.Preload(ctx)
	snap := c.Snapshot()
	middleware.LoggerFromRequest(r, s.Logger).Debug("preload requested",
		zap.String("unit_id", snap.UnitID),
		zap.Stringer("state", snap.State))
	s.writeJSON(w, endpoint, r.Method, start, http.StatusOK, snap)
}

// ShowHandler handles POST /interstitial/{unit}/show. It never waits for a load.
func (s *Server) ShowHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "show"

	c, ok := s.coordinator(w, r, endpoint, start)
	if !ok {
		return
	}
	ctx, span := tracer.Start(r.Context(), "ShowHandler",
		trace.WithAttributes(attribute.String("unit_id", c.UnitID())))
	defer span.End()

	outcome := c.Show(ctx)
	span.SetAttributes(attribute.String("outcome", outcome.String()))
	middleware.LoggerFromRequest(r, s.Logger).Debug("show requested",
		zap.String("unit_id", c.UnitID()),
		zap.Stringer("outcome", outcome))
	s.writeJSON(w, endpoint, r.Method, start, http.StatusOK, ShowResponse{Outcome: outcome, Snapshot: c.Snapshot()})
}

// StateHandler handles GET /interstitial/{unit}.
func (s *Server) StateHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "state"

	c, ok := s.coordinator(w, r, endpoint, start)
	if !ok {
		return
	}
	s.writeJSON(w, endpoint, r.Method, start, http.StatusOK, c.Snapshot())
}

// Routes registers the control API on router.
func (s *Server) Routes(router *mux.Router) {
	router.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)
	router.HandleFunc("/ads/start", s.StartHandler).Methods(http.MethodPost)
	router.HandleFunc("/ads/status", s.StatusHandler).Methods(http.MethodGet)
	router.HandleFunc("/interstitial/{unit}/preload", s.PreloadHandler).Methods(http.MethodPost)
	router.HandleFunc("/interstitial/{unit}/show", s.ShowHandler).Methods(http.MethodPost)
	router.HandleFunc("/interstitial/{unit}", s.StateHandler).Methods(http.MethodGet)
}
