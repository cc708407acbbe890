package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrickwarner/interstitial/internal/bootstrap"
	"github.com/patrickwarner/interstitial/internal/config"
	"github.com/patrickwarner/interstitial/internal/interstitial"
	"github.com/patrickwarner/interstitial/internal/models"
	"github.com/patrickwarner/interstitial/internal/observability"
	"github.com/patrickwarner/interstitial/internal/presentation"
)

type stubBootstrap struct {
	phase bootstrap.Phase
	err   error
}

func (b *stubBootstrap) Start(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	b.phase = bootstrap.Started
	return nil
}

func (b *stubBootstrap) Phase() bootstrap.Phase { return b.phase }

type stubConsent struct{}

func (stubConsent) Status() (models.ConsentStatus, bool) { return models.ConsentDenied, true }

func (stubConsent) Resolve(ctx context.Context) (models.ConsentStatus, error) {
	return models.ConsentDenied, nil
}

type stubHandle struct{ id string }

func (h stubHandle) ID() string { return h.id }

func (h stubHandle) Present(ctx context.Context, host presentation.Host) error { return nil }

type stubLoader struct{ err error }

func (l stubLoader) Load(ctx context.Context, unitID string, req models.AdRequest) (interstitial.Handle, error) {
	if l.err != nil {
		return nil, l.err
	}
	return stubHandle{id: unitID + "-" + req.ID}, nil
}

type noHosts struct{}

func (noHosts) TopmostHost() presentation.Host { return nil }

func newTestServer(t *testing.T, loader interstitial.Loader, boot *stubBootstrap) (*Server, *mux.Router, *observability.MockMetricsRegistry) {
	t.Helper()
	metrics := observability.NewMockMetricsRegistry()
	registry := interstitial.NewRegistry(func(unit string) *interstitial.Coordinator {
		return interstitial.New(interstitial.Options{
			UnitID:    unit,
			Device:    models.DevicePhone,
			Bootstrap: boot,
			Consent:   stubConsent{},
			Loader:    loader,
			Hosts:     noHosts{},
			Executor:  func(task func()) { task() },
		})
	}, "home")
	srv := NewServer(zap.NewNop(), metrics, registry, boot, stubConsent{}, models.DevicePhone, config.Config{ServiceName: "interstitial"})
	router := mux.NewRouter()
	srv.Routes(router)
	return srv, router, metrics
}

func do(t *testing.T, router http.Handler, method, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestHealthHandler(t *testing.T) {
	_, router, metrics := newTestServer(t, stubLoader{}, &stubBootstrap{})

	var body healthResponse
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/health", &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "not_started", body.Phase)
	assert.Equal(t, 1, metrics.Count("requests/health/GET/200"))
}

func TestStartHandler(t *testing.T) {
	_, router, _ := newTestServer(t, stubLoader{}, &stubBootstrap{})

	var body StatusResponse
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/ads/start", &body))
	assert.Equal(t, "started", body.Phase)
	assert.Equal(t, "denied", body.Consent)
	assert.Equal(t, "phone", body.Device)
	require.Len(t, body.Units, 1)
	assert.Equal(t, "home", body.Units[0].UnitID)
}

func TestStartHandler_Failure(t *testing.T) {
	_, router, metrics := newTestServer(t, stubLoader{}, &stubBootstrap{err: errors.New("unreachable")})

	var body errorResponse
	assert.Equal(t, http.StatusServiceUnavailable, do(t, router, http.MethodPost, "/ads/start", &body))
	assert.Contains(t, body.Error, "unreachable")
	assert.Equal(t, 1, metrics.Count("requests/ads_start/POST/503"))
}

func TestPreloadAndShow(t *testing.T) {
	_, router, _ := newTestServer(t, stubLoader{}, &stubBootstrap{})

	var show map[string]any
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/interstitial/home/show", &show))
	// the synchronous executor ran the scheduled preload inline
	assert.Equal(t, "preload_scheduled", show["outcome"])
	assert.Equal(t, "loaded", show["state"])

	var snap map[string]any
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/interstitial/home/preload", &snap))
	assert.Equal(t, "loaded", snap["state"])

	// loaded but no surface to present on
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/interstitial/home/show", &show))
	assert.Equal(t, "no_host", show["outcome"])

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/interstitial/home", &snap))
	assert.Equal(t, "home", snap["unit_id"])
	assert.NotEmpty(t, snap["handle_id"])
}

func TestPreloadHandler_LoadFailureStaysEmpty(t *testing.T) {
	_, router, _ := newTestServer(t, stubLoader{err: errors.New("no fill")}, &stubBootstrap{})

	var snap map[string]any
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/interstitial/home/preload", &snap))
	assert.Equal(t, "empty", snap["state"])
}

func TestUnknownUnit(t *testing.T) {
	_, router, _ := newTestServer(t, stubLoader{}, &stubBootstrap{})

	var body errorResponse
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodPost, "/interstitial/nope/show", &body))
	assert.Contains(t, body.Error, "nope")
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/interstitial/nope", nil))
}
