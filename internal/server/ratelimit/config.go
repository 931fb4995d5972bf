package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// Routes subject to per-endpoint limits.
const (
	PredictPath     = "/predict"
	PredictFilePath = "/predict/file"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Settings are the operator-facing knobs, usually taken from the service config.
type Settings struct {
	Enabled           bool
	RequestsPerMinute int
	Burst             int
	Whitelist         []string
	Blacklist         []string
}

// NewConfig builds a limiter configuration for prediction traffic.
// Prediction endpoints get the configured rate; everything else gets a looser default.
func NewConfig(s Settings) *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}

	perMinute := s.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    perMinute * 10,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       toSet(s.Whitelist),
		Blacklist:       toSet(s.Blacklist),
		EndpointConfigs: PredictionEndpointConfigs(perMinute, s.Burst),
	}
}

// PredictionEndpointConfigs returns the limits for the inference routes.
// Uploads are parsed server-side, so they get half the text rate.
func PredictionEndpointConfigs(perMinute, burst int) []EndpointConfig {
	uploadLimit := max(perMinute/2, 1)
	uploadBurst := max(burst/2, 1)
	return []EndpointConfig{
		{Path: PredictPath, Method: http.MethodPost, Limit: perMinute, Window: time.Minute, Burst: burst},
		{Path: PredictFilePath, Method: http.MethodPost, Limit: uploadLimit, Window: time.Minute, Burst: uploadBurst},
	}
}

// toSet turns a list of IP addresses into a lookup map.
func toSet(ips []string) map[string]bool {
	result := make(map[string]bool, len(ips))
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
