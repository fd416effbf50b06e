package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	marketdata "stocklens/internal/domain/entity/marketdata"
)

const (
	bulkHost      = "https://query1.finance.yahoo.com"
	perSymbolHost = "https://query2.finance.yahoo.com"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Config controls the upstream HTTP client.
type Config struct {
	// ProxyURL routes requests through an HTTP proxy when set.
	ProxyURL string
	// Timeout bounds a single upstream request. Zero means 30s.
	Timeout time.Duration
	// RequestsPerSecond throttles outbound calls. Zero means 2 rps; the
	// upstream rate-limits aggressively and 429s are its dominant failure.
	RequestsPerSecond float64
}

// Client talks to the Yahoo Finance chart and quoteSummary APIs. It
// implements interfaces.HistoryProvider and interfaces.QuoteProvider.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	bulkURL    string
	symbolURL  string
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config) *Client {
	transport := &http.Transport{}
	if cfg.ProxyURL != "" {
		if u, err := url.Parse(cfg.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		bulkURL:   bulkHost,
		symbolURL: perSymbolHost,
	}
}

// getJSON performs a rate-limited GET and decodes the body into out.
// Failures come back as *marketdata.UpstreamFault so the orchestrator can
// classify them without guessing from message text.
func (c *Client) getJSON(ctx context.Context, op, rawURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &marketdata.UpstreamFault{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &marketdata.UpstreamFault{Op: op, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &marketdata.UpstreamFault{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &marketdata.UpstreamFault{Op: op, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &marketdata.UpstreamFault{
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status: %s", truncate(body, 200)),
		}
	}
	if err := json.Unmarshal(body, out); err != nil {
		// The upstream serves HTML error pages while throttling.
		return &marketdata.UpstreamFault{Op: op, Decode: true, Err: err}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
