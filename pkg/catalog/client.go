// Package catalog provides the HTTP client for the games catalog: listing the
// available sorts and fetching one page of games for a sort.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for catalog requests.
var (
	catalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sponsorwatch_catalog_requests_total",
		Help: "Total catalog requests by endpoint and status",
	}, []string{"endpoint", "status"})

	catalogRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sponsorwatch_catalog_request_duration_seconds",
		Help:    "Catalog request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	catalogErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sponsorwatch_catalog_errors_total",
		Help: "Total catalog errors by class",
	}, []string{"class"})
)

// Endpoint paths and fixed list parameters.
const (
	DefaultBaseURL = "https://games.roblox.com"

	SortsPath = "/v1/games/sorts"
	ListPath  = "/v1/games/list"

	// SortsContext is the gameSortsContext requested from the sorts endpoint.
	SortsContext = "GamesDefaultSorts"

	StartRows    = 0
	MaxRows      = 32
	SortPosition = 5

	// CookieName is the session cookie carrying the credential.
	CookieName = ".ROBLOSECURITY"
)

// Client talks to the games catalog. Every call performs exactly one
// outbound request and is never retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Credential is the session cookie value (REQUIRED).
	Credential string

	// BaseURL of the catalog service (default: DefaultBaseURL).
	BaseURL string

	// UserAgent header, optional.
	UserAgent string

	// Timeout per request. Zero means no timeout.
	Timeout time.Duration

	// HTTPClient overrides the underlying client (for testing).
	HTTPClient *http.Client
}

// DefaultConfig returns the default configuration for the given credential.
func DefaultConfig(credential string) Config {
	return Config{
		Credential: credential,
		BaseURL:    DefaultBaseURL,
	}
}

// New creates a new catalog client.
func New(cfg Config) (*Client, error) {
	if cfg.Credential == "" {
		return nil, ErrMissingCredential
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		config:     cfg,
		logger:     log.With().Str("component", "catalog-client").Logger(),
	}, nil
}

// FetchSorts fetches the available sorts and the page context to use for
// subsequent list requests.
func (c *Client) FetchSorts(ctx context.Context) (*SortsResponse, error) {
	query := url.Values{}
	query.Set("gameSortsContext", SortsContext)

	var body sortsBody
	if err := c.getJSON(ctx, SortsPath, query.Encode(), &body); err != nil {
		return nil, err
	}
	resp, err := body.response()
	if err != nil {
		return nil, c.decodeFailure(SortsPath, err)
	}

	c.logger.Debug().
		Int("sorts", len(resp.Sorts)).
		Str("page_id", resp.PageContext.PageID).
		Msg("Fetched sorts")

	return resp, nil
}

// FetchPage fetches one page of games for the given sort, page cursor and
// region context.
func (c *Client) FetchPage(ctx context.Context, page PageRequest) ([]Place, error) {
	var body listBody
	if err := c.getJSON(ctx, ListPath, listQuery(page), &body); err != nil {
		return nil, err
	}
	places, err := body.places()
	if err != nil {
		return nil, c.decodeFailure(ListPath, err)
	}

	c.logger.Debug().
		Int("games", len(places)).
		Int("region_id", page.RegionID).
		Msg("Fetched games page")

	return places, nil
}

// listQuery builds the list query. Parameters are emitted in a fixed order so
// request URLs are stable.
func listQuery(page PageRequest) string {
	params := []string{
		"sortToken=" + url.QueryEscape(page.SortToken),
		"startRows=" + strconv.Itoa(StartRows),
		"maxRows=" + strconv.Itoa(MaxRows),
		"hasMoreRows=true",
		"sortPosition=" + strconv.Itoa(SortPosition),
		"contextCountryRegionId=" + strconv.Itoa(page.RegionID),
		"pageContext.pageId=" + url.QueryEscape(page.PageID),
	}
	return strings.Join(params, "&")
}

// getJSON performs a single authenticated GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, endpoint, rawQuery string, out any) error {
	startTime := time.Now()
	defer func() {
		catalogRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+rawQuery, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Cookie", CookieName+"="+c.config.Credential)
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing catalog request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		catalogRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return c.transportFailure(&TransportError{Endpoint: endpoint, Err: err})
	}
	defer resp.Body.Close()

	catalogRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.transportFailure(&TransportError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Err:        errors.New(resp.Status),
		})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.decodeFailure(endpoint, err)
	}

	return nil
}

func (c *Client) transportFailure(err *TransportError) error {
	catalogErrorsTotal.WithLabelValues(string(err.Class())).Inc()
	c.logger.Error().
		Err(err.Err).
		Str("endpoint", err.Endpoint).
		Int("status", err.StatusCode).
		Str("error_class", string(err.Class())).
		Msg("Catalog request failed")
	return err
}

func (c *Client) decodeFailure(endpoint string, err error) error {
	catalogErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
	c.logger.Error().
		Err(err).
		Str("endpoint", endpoint).
		Str("error_class", string(ErrorClassDecode)).
		Msg("Catalog response did not decode")
	return &DecodeError{Endpoint: endpoint, Err: err}
}
