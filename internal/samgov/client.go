// Package samgov is the client for the SAM.gov opportunities search API.
//
// A Client issues exactly one HTTP request per Search call and classifies
// every failure into an *Error with a Kind. Nothing is retried here: a
// rate-limited or failed page is reported to the caller, and the Pager and
// sync scheduler decide what to do with it.
//
// Example:
//
//	client, err := samgov.NewClient(samgov.Config{APIKey: key})
//	if err != nil {
//	    return err
//	}
//	resp, err := client.Search(ctx, samgov.SearchParams{
//	    Limit:      10,
//	    PostedFrom: "01/01/2025",
//	    PostedTo:   "01/31/2025",
//	})
package samgov

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the production search endpoint.
	DefaultBaseURL = "https://api.sam.gov/opportunities/v2/search"

	// DefaultTimeout bounds every request.
	DefaultTimeout = 30 * time.Second

	maxBodyBytes = 64 << 20
)

// Config configures a Client.
type Config struct {
	// APIKey is sent as the api_key query parameter. Required.
	APIKey string

	// BaseURL overrides DefaultBaseURL (tests point this at httptest).
	BaseURL string

	// Timeout is the per-request network timeout (default: 30s).
	Timeout time.Duration

	// HTTPClient replaces the default client. Its Timeout is left alone.
	HTTPClient *http.Client

	// Logger receives request-level debug logs. Nil disables logging.
	Logger *zap.Logger
}

// Client talks to the search endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	redact     redactor
	logger     *zap.Logger
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("SAM.gov API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
		apiKey:     cfg.APIKey,
		redact:     redactor(cfg.APIKey),
		logger:     cfg.Logger,
	}, nil
}

// Search performs one request and returns the parsed page.
//
// Failures are classified in this order: rate limited (429), transport,
// other non-2xx status, then decode.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(params), nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: c.redact.scrubErr(err)}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: c.redact.scrubErr(err)}
	}
	defer resp.Body.Close()

	c.logger.Debug("search request",
		zap.Int("status", resp.StatusCode),
		zap.Int("offset", params.Offset),
		zap.Int("limit", params.Limit),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &Error{Kind: KindRateLimited, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindTransport, StatusCode: resp.StatusCode, Err: c.redact.scrubErr(err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:       KindUpstream,
			StatusCode: resp.StatusCode,
			Body:       c.redact.scrub(string(body)),
		}
	}

	var out SearchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &Error{Kind: KindDecode, StatusCode: resp.StatusCode, Err: c.redact.scrubErr(err)}
	}
	return &out, nil
}

// Get looks up a single notice by ID. The date range is omitted.
func (c *Client) Get(ctx context.Context, noticeID string) (*Opportunity, error) {
	resp, err := c.Search(ctx, SearchParams{Limit: 1, NoticeID: noticeID})
	if err != nil {
		return nil, err
	}
	if resp.Len() == 0 {
		return nil, fmt.Errorf("no opportunity found with notice ID: %s", noticeID)
	}
	return &resp.OpportunitiesData[0], nil
}

// searchURL builds the request URL including the API key.
func (c *Client) searchURL(p SearchParams) string {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("offset", strconv.Itoa(p.Offset))

	// Date range is only required when not searching by notice ID
	if p.NoticeID == "" {
		q.Set("postedFrom", p.PostedFrom)
		q.Set("postedTo", p.PostedTo)
	}

	optional := []struct{ key, value string }{
		{"title", p.Title},
		{"ptype", p.PType},
		{"ncode", p.NAICS},
		{"state", p.State},
		{"typeOfSetAside", p.SetAside},
		{"noticeid", p.NoticeID},
	}
	for _, o := range optional {
		if o.value != "" {
			q.Set(o.key, o.value)
		}
	}

	return c.baseURL + "?" + q.Encode()
}
