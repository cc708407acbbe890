// Package adnet is an ad network client that loads interstitial creatives
// from an openadserve-compatible OpenRTB endpoint.
package adnet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/patrickwarner/interstitial/internal/interstitial"
	"github.com/patrickwarner/interstitial/internal/models"
)

var (
	// ErrNoFill is returned by Load when the server has no creative to serve.
	ErrNoFill = errors.New("no fill")
	// ErrUnsupportedHost is returned by Present when the host cannot render creatives.
	ErrUnsupportedHost = errors.New("host cannot render interstitial")
	// ErrAlreadyPresented is returned when a creative is presented twice.
	ErrAlreadyPresented = errors.New("interstitial already presented")
)

// Config describes the ad server and the app making requests.
type Config struct {
	BaseURL     string
	APIKey      string
	PublisherID int
	// UserID identifies the app install; a random one is generated when empty.
	UserID    string
	UserAgent string
	Timeout   time.Duration
}

// Client talks to the ad server. It implements bootstrap.Initializer and
// interstitial.Loader.
type Client struct {
	baseURL     string
	apiKey      string
	publisherID int
	userID      string
	userAgent   string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a client with an instrumented HTTP transport.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	userID := cfg.UserID
	if userID == "" {
		userID = uuid.NewString()
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		publisherID: cfg.PublisherID,
		userID:      userID,
		userAgent:   cfg.UserAgent,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

// Start checks that the ad server is reachable.
func (c *Client) Start(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check request: %w", err)
	}
	defer c.closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}
	return nil
}

// Load requests one interstitial creative for unitID.
func (c *Client) Load(ctx context.Context, unitID string, req models.AdRequest) (interstitial.Handle, error) {
	rtb := c.bidRequest(unitID, req)
	body, err := json.Marshal(rtb)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ad", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer c.closeBody(resp)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return nil, ErrNoFill
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out models.OpenRTBResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	bid := out.FirstBid()
	if bid == nil {
		if out.Nbr != 0 {
			return nil, fmt.Errorf("%w (nbr %d)", ErrNoFill, out.Nbr)
		}
		return nil, ErrNoFill
	}

	c.logger.Debug("creative received",
		zap.String("unit_id", unitID),
		zap.String("request_id", req.ID),
		zap.String("creative_id", bid.CrID))
	return newAd(c, Creative{
		ID:         uuid.NewString(),
		UnitID:     unitID,
		RequestID:  req.ID,
		CreativeID: bid.CrID,
		Markup:     bid.Adm,
		Price:      bid.Price,
		ClickURL:   bid.ClickURL,
	}, bid.ImpURL), nil
}

func (c *Client) bidRequest(unitID string, req models.AdRequest) models.OpenRTBRequest {
	npa := 0
	if req.NonPersonalized {
		npa = 1
	}
	return models.OpenRTBRequest{
		ID: req.ID,
		Imp: []models.Impression{{
			ID:    "1",
			TagID: unitID,
			Instl: 1,
		}},
		User:   models.User{ID: c.userID},
		Device: models.Device{UA: c.userAgent},
		Regs:   models.Regs{Ext: models.RegsExt{Npa: npa}},
		Ext:    models.RequestExt{PublisherID: c.publisherID},
	}
}

// fireImpression reports that a creative was shown. Failures are only logged.
func (c *Client) fireImpression(ctx context.Context, impURL string) {
	if impURL == "" {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, impURL, nil)
	if err != nil {
		c.logger.Warn("invalid impression url", zap.String("url", impURL), zap.Error(err))
		return
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("impression request failed", zap.Error(err))
		return
	}
	defer c.closeBody(resp)
	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("impression rejected", zap.Int("status", resp.StatusCode))
	}
}

func (c *Client) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.logger.Warn("failed to close response body", zap.Error(err))
	}
}
