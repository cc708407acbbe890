package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ServiceName  string
	// Ad network configuration
	AdServerURL      string
	AdUnitIDs        []string
	PublisherID      int
	APIKey           string
	AdNetworkTimeout time.Duration
	// Device configuration
	DeviceUserAgent string
	ExcludedDevices []string
	PresentDuration time.Duration
	// Consent configuration
	AppID           string
	ConsentLedger   string
	ConsentResponse string
	RedisAddr       string
	// Tracing configuration
	TracingEnabled    bool
	TempoEndpoint     string
	TracingSampleRate float64
}

// Load parses environment variables and returns a Config populated with
// defaults when variables are absent.
func Load() Config {
	cfg := Config{}

	cfg.Port = getenv("PORT", "8788")
	cfg.ReadTimeout = envDuration("READ_TIMEOUT", 5*time.Second)
	cfg.WriteTimeout = envDuration("WRITE_TIMEOUT", 10*time.Second)
	cfg.ServiceName = getenv("SERVICE_NAME", "interstitial")

	cfg.AdServerURL = getenv("AD_SERVER_URL", "http://localhost:8787")
	cfg.AdUnitIDs = envList("AD_UNIT_IDS", []string{"interstitial"})
	cfg.PublisherID = envInt("PUBLISHER_ID", 1)
	cfg.APIKey = getenv("API_KEY", "")
	cfg.AdNetworkTimeout = envDuration("AD_NETWORK_TIMEOUT", 2*time.Second)

	cfg.DeviceUserAgent = getenv("DEVICE_USER_AGENT", "")
	// tablets are kept out of the ad pipeline unless overridden
	cfg.ExcludedDevices = envList("EXCLUDED_DEVICES", []string{"tablet"})
	cfg.PresentDuration = envDuration("PRESENT_DURATION", 5*time.Second)

	cfg.AppID = getenv("APP_ID", "interstitial-demo")
	cfg.ConsentLedger = getenv("CONSENT_LEDGER", "memory")
	cfg.ConsentResponse = getenv("CONSENT_RESPONSE", "denied")
	cfg.RedisAddr = getenv("REDIS_ADDR", "localhost:6379")

	// Tracing configuration
	cfg.TracingEnabled = envBool("TRACING_ENABLED", false)
	cfg.TempoEndpoint = getenv("TEMPO_ENDPOINT", "tempo:4317")
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", 1.0) // Default to 100% sampling for dev

	return cfg
}

// getenv returns the value of the environment variable if set, otherwise def.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses an environment variable into a time.Duration.
// The value can be a duration string (e.g. "5s") or a number of seconds.
// If the variable is unset or invalid, def is returned.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// envBool parses a boolean environment variable. Accepted values are those
// supported by strconv.ParseBool. When unset or invalid, def is returned.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// envInt parses an integer environment variable. When unset or invalid, def is returned.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

// envFloat parses a float64 environment variable. When unset or invalid, def is returned.
func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return def
}

// envList parses a comma separated environment variable, dropping blank
// entries. When unset or empty, def is returned.
func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
