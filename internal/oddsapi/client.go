package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jcollis/arbwatch/internal/config"
	"github.com/jcollis/arbwatch/internal/metrics"
	"github.com/jcollis/arbwatch/internal/ratelimit"
)

// Client handles communication with the-odds-api.com v4 API
type Client struct {
	baseURL       string
	apiKey        string
	region        string
	bookmakers    []string
	httpClient    *http.Client
	oddsLimiter   *ratelimit.Limiter
	sportsLimiter *ratelimit.Limiter
}

// NewClient creates a new odds API client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:       cfg.OddsAPIBaseURL,
		apiKey:        cfg.OddsAPIKey,
		region:        cfg.OddsAPIRegion,
		bookmakers:    cfg.Bookmakers,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		oddsLimiter:   ratelimit.New(cfg.OddsAPIOddsRPS),
		sportsLimiter: ratelimit.New(cfg.OddsAPISportRPS),
	}
}

// GetOdds fetches head-to-head decimal odds for one sport across the
// configured bookmakers.
func (c *Client) GetOdds(ctx context.Context, sport string) ([]Event, error) {
	if err := c.oddsLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u, err := url.Parse(fmt.Sprintf("%s/sports/%s/odds", c.baseURL, sport))
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	q := u.Query()
	q.Set("apiKey", c.apiKey)
	q.Set("regions", c.region)
	q.Set("markets", MarketH2H)
	q.Set("oddsFormat", "decimal")
	if len(c.bookmakers) > 0 {
		q.Set("bookmakers", strings.Join(c.bookmakers, ","))
	}
	u.RawQuery = q.Encode()

	var events []Event
	if err := c.getJSON(ctx, "odds", u.String(), &events); err != nil {
		return nil, err
	}

	return events, nil
}

// ListSports fetches the catalog of in-season sport keys.
func (c *Client) ListSports(ctx context.Context) ([]Sport, error) {
	if err := c.sportsLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u, err := url.Parse(c.baseURL + "/sports")
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	q := u.Query()
	q.Set("apiKey", c.apiKey)
	u.RawQuery = q.Encode()

	var sports []Sport
	if err := c.getJSON(ctx, "sports", u.String(), &sports); err != nil {
		return nil, err
	}

	return sports, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	// The API reports the key's remaining monthly quota on every response.
	if remaining := resp.Header.Get("X-Requests-Remaining"); remaining != "" {
		if v, err := strconv.ParseFloat(remaining, 64); err == nil {
			metrics.APIQuotaRemaining.Set(v)
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("401 Unauthorized - check ODDS_API_KEY")
	}

	if resp.StatusCode != http.StatusOK {
		metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("decode response: %w", err)
	}

	metrics.APIRequests.WithLabelValues(endpoint, "success").Inc()
	return nil
}
