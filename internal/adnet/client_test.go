package adnet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrickwarner/interstitial/internal/models"
)

type adServer struct {
	t           *testing.T
	mu          sync.Mutex
	resp        models.OpenRTBResponse
	status      int
	last        models.OpenRTBRequest
	apiKey      string
	impressions atomic.Int32
}

func (s *adServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/ad", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.t.Errorf("Expected POST method, got %s", r.Method)
		}
		var req models.OpenRTBRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.t.Errorf("Failed to decode request: %v", err)
			return
		}
		s.mu.Lock()
		s.apiKey = r.Header.Get("X-API-Key")
		s.last = req
		s.mu.Unlock()
		if s.status != 0 {
			w.WriteHeader(s.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.resp)
	})
	mux.HandleFunc("/impression", func(w http.ResponseWriter, r *http.Request) {
		s.impressions.Add(1)
	})
	return mux
}

func (s *adServer) lastRequest() (models.OpenRTBRequest, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.apiKey
}

func newTestClient(t *testing.T, s *adServer) (*Client, *httptest.Server) {
	srv := httptest.NewServer(s.handler())
	t.Cleanup(srv.Close)
	c := NewClient(Config{
		BaseURL:     srv.URL + "/",
		APIKey:      "secret",
		PublisherID: 7,
		UserID:      "install-1",
		UserAgent:   "test-agent",
		Timeout:     time.Second,
	}, zap.NewNop())
	return c, srv
}

func filled(impURL string) models.OpenRTBResponse {
	return models.OpenRTBResponse{
		ID: "resp",
		SeatBid: []models.SeatBid{{Bid: []models.Bid{{
			ID: "b1", ImpID: "1", CrID: "cr-9", Adm: "<div>ad</div>", Price: 1.5, ImpURL: impURL,
		}}}},
	}
}

func TestClient_StartChecksHealth(t *testing.T) {
	c, _ := newTestClient(t, &adServer{t: t})
	require.NoError(t, c.Start(context.Background()))

	down := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: 100 * time.Millisecond}, nil)
	assert.Error(t, down.Start(context.Background()))
}

func TestClient_LoadSendsOpenRTBRequest(t *testing.T) {
	s := &adServer{t: t, resp: filled("")}
	c, _ := newTestClient(t, s)

	h, err := c.Load(context.Background(), "home", models.AdRequest{ID: "req-1", NonPersonalized: true})
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID())

	last, apiKey := s.lastRequest()
	assert.Equal(t, "secret", apiKey)
	assert.Equal(t, "req-1", last.ID)
	require.Len(t, last.Imp, 1)
	assert.Equal(t, "home", last.Imp[0].TagID)
	assert.Equal(t, 1, last.Imp[0].Instl)
	assert.Equal(t, 1, last.Regs.Ext.Npa)
	assert.Equal(t, 7, last.Ext.PublisherID)
	assert.Equal(t, "install-1", last.User.ID)
	assert.Equal(t, "test-agent", last.Device.UA)
}

func TestClient_LoadPersonalized(t *testing.T) {
	s := &adServer{t: t, resp: filled("")}
	c, _ := newTestClient(t, s)

	_, err := c.Load(context.Background(), "home", models.AdRequest{ID: "req-2"})
	require.NoError(t, err)
	last, _ := s.lastRequest()
	assert.Equal(t, 0, last.Regs.Ext.Npa)
}

func TestClient_LoadNoFill(t *testing.T) {
	tests := []struct {
		name string
		s    *adServer
	}{
		{"empty seatbid", &adServer{resp: models.OpenRTBResponse{ID: "r"}}},
		{"no bid reason", &adServer{resp: models.OpenRTBResponse{ID: "r", Nbr: 2}}},
		{"no content", &adServer{status: http.StatusNoContent}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.s.t = t
			c, _ := newTestClient(t, tt.s)
			h, err := c.Load(context.Background(), "home", models.AdRequest{ID: "r"})
			assert.Nil(t, h)
			assert.ErrorIs(t, err, ErrNoFill)
		})
	}
}

func TestClient_LoadServerError(t *testing.T) {
	c, _ := newTestClient(t, &adServer{t: t, status: http.StatusInternalServerError})
	_, err := c.Load(context.Background(), "home", models.AdRequest{ID: "r"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoFill))
}

type recordingCanvas struct {
	rendered []Creative
	err      error
}

func (c *recordingCanvas) Render(ctx context.Context, cr Creative) error {
	c.rendered = append(c.rendered, cr)
	return c.err
}

func TestAd_PresentRendersAndFiresImpression(t *testing.T) {
	s := &adServer{t: t}
	c, srv := newTestClient(t, s)
	s.resp = filled(srv.URL + "/impression")

	h, err := c.Load(context.Background(), "home", models.AdRequest{ID: "r"})
	require.NoError(t, err)

	canvas := &recordingCanvas{}
	require.NoError(t, h.Present(context.Background(), canvas))
	require.Len(t, canvas.rendered, 1)
	assert.Equal(t, "cr-9", canvas.rendered[0].CreativeID)
	assert.Equal(t, "<div>ad</div>", canvas.rendered[0].Markup)
	assert.Equal(t, "home", canvas.rendered[0].UnitID)
	assert.Equal(t, int32(1), s.impressions.Load())

	assert.ErrorIs(t, h.Present(context.Background(), canvas), ErrAlreadyPresented)
	assert.Equal(t, int32(1), s.impressions.Load())
}

func TestAd_PresentFailures(t *testing.T) {
	s := &adServer{t: t}
	c, srv := newTestClient(t, s)
	s.resp = filled(srv.URL + "/impression")

	h, err := c.Load(context.Background(), "home", models.AdRequest{ID: "r"})
	require.NoError(t, err)
	assert.ErrorIs(t, h.Present(context.Background(), struct{}{}), ErrUnsupportedHost)

	h, err = c.Load(context.Background(), "home", models.AdRequest{ID: "r2"})
	require.NoError(t, err)
	assert.Error(t, h.Present(context.Background(), &recordingCanvas{err: errors.New("torn down")}))
	assert.Zero(t, s.impressions.Load())
}

func TestLogCanvas_DismissesAfterDuration(t *testing.T) {
	canvas := &LogCanvas{Name: "screen", Duration: 5 * time.Millisecond}
	start := time.Now()
	require.NoError(t, canvas.Render(context.Background(), Creative{UnitID: "home"}))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	long := &LogCanvas{Duration: time.Hour}
	require.NoError(t, long.Render(ctx, Creative{}))
}
