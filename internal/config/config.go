package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultEnv                = "development"
	defaultHTTPHost           = "0.0.0.0"
	defaultHTTPPort           = 8080
	defaultCacheTTLSeconds    = 300
	defaultUpstreamTimeoutSec = 30
	defaultUpstreamRPS        = 2.0
	defaultLogLevel           = "info"
)

// defaultOrigins are the local dev frontends; ALLOWED_ORIGINS extends them.
var defaultOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"http://localhost:4173",
	"http://127.0.0.1:4173",
}

// Config keeps the runtime configuration for the service.
type Config struct {
	Env      string
	LogLevel string
	HTTP     HTTPConfig
	Cache    CacheConfig
	Upstream UpstreamConfig
	CORS     CORSConfig
}

// HTTPConfig holds HTTP server related settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr renders the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// CacheConfig stores cache behavior. TTLSeconds at or below zero disables
// caching entirely.
type CacheConfig struct {
	TTLSeconds int
}

// UpstreamConfig stores upstream client parameters.
type UpstreamConfig struct {
	ProxyURL          string
	TimeoutSeconds    int
	RequestsPerSecond float64
}

// CORSConfig stores the allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load builds Config from environment variables.
func Load() (*Config, error) {
	port, err := getInt("HTTP_PORT", defaultHTTPPort)
	if err != nil {
		return nil, fmt.Errorf("parse HTTP_PORT: %w", err)
	}

	cacheTTL, err := getInt("CACHE_TTL_SECONDS", defaultCacheTTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("parse CACHE_TTL_SECONDS: %w", err)
	}

	upstreamTimeout, err := getInt("UPSTREAM_TIMEOUT_SECONDS", defaultUpstreamTimeoutSec)
	if err != nil {
		return nil, fmt.Errorf("parse UPSTREAM_TIMEOUT_SECONDS: %w", err)
	}

	upstreamRPS, err := getFloat("UPSTREAM_RPS", defaultUpstreamRPS)
	if err != nil {
		return nil, fmt.Errorf("parse UPSTREAM_RPS: %w", err)
	}

	return &Config{
		Env:      getString("APP_ENV", defaultEnv),
		LogLevel: getString("LOG_LEVEL", defaultLogLevel),
		HTTP: HTTPConfig{
			Host: getString("HTTP_HOST", defaultHTTPHost),
			Port: port,
		},
		Cache: CacheConfig{
			TTLSeconds: cacheTTL,
		},
		Upstream: UpstreamConfig{
			ProxyURL:          os.Getenv("PROXY_URL"),
			TimeoutSeconds:    upstreamTimeout,
			RequestsPerSecond: upstreamRPS,
		},
		CORS: CORSConfig{
			AllowedOrigins: allowedOrigins(os.Getenv("ALLOWED_ORIGINS")),
		},
	}, nil
}

// allowedOrigins merges the dev defaults with a comma-separated extra list,
// dropping blanks and duplicates.
func allowedOrigins(extra string) []string {
	seen := make(map[string]struct{}, len(defaultOrigins))
	origins := make([]string, 0, len(defaultOrigins))
	add := func(origin string) {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			return
		}
		if _, ok := seen[origin]; ok {
			return
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	for _, origin := range defaultOrigins {
		add(origin)
	}
	for _, origin := range strings.Split(extra, ",") {
		add(origin)
	}
	return origins
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to float: %w", key, value, err)
	}
	return parsed, nil
}
