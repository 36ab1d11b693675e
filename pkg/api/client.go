// Package api is the HTTP client for the ProfitSniffer backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/profit-sniffer/pkg/filters"
	"github.com/profit-sniffer/pkg/metrics"
	"github.com/profit-sniffer/pkg/models"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 20 * time.Second

	// FiltersUpdated is the confirmation UpdateFilters resolves with.
	FiltersUpdated = "Filters updated successfully"

	opUpdateFilters = "update_filters"
	opGetTokenSet   = "get_token_set"
)

// Client talks to the backend. It does not cache and does not retry.
type Client struct {
	baseURL    string
	httpClient *resty.Client
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient swaps the underlying resty client, e.g. for one built from
// an httptest server.
func WithHTTPClient(rc *resty.Client) Option {
	return func(c *Client) { c.httpClient = rc }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a client for baseURL, falling back to DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: resty.New().SetTimeout(DefaultTimeout),
		log:        log.Logger,
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With().Str("component", "api").Logger()
	return c
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UpdateFilters stores the full filter object for telegramID. The returned
// update always carries the FiltersUpdated message; URL is the screen the
// backend derived from the filters, when it reports one.
func (c *Client) UpdateFilters(ctx context.Context, telegramID string, f filters.Filters) (*models.FilterUpdate, error) {
	start := time.Now()
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("telegramID", telegramID).
		SetHeader("Content-Type", "application/json").
		SetBody(f).
		Put(c.baseURL + "/users/{telegramID}/filters")
	err = c.check(resp, err)
	c.metrics.ObserveBackend(opUpdateFilters, err, time.Since(start))
	if err != nil {
		c.log.Warn().Err(err).Str("telegram_id", telegramID).Msg("⚠️ Filter update failed")
		return nil, err
	}

	update := &models.FilterUpdate{}
	if body := resp.Body(); len(body) > 0 {
		// The body is optional; a malformed one still means the update went through.
		if jerr := json.Unmarshal(body, update); jerr != nil {
			c.log.Debug().Err(jerr).Msg("ignoring unparsable filter update body")
		}
	}
	update.Message = FiltersUpdated
	c.log.Info().Str("telegram_id", telegramID).Msg("✅ Filters updated")
	return update, nil
}

// GetTokenSet fetches the current token set of telegramID.
func (c *Client) GetTokenSet(ctx context.Context, telegramID string) (*models.TokenSet, error) {
	start := time.Now()
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("telegramID", telegramID).
		SetHeader("Accept", "application/json").
		Get(c.baseURL + "/token_sets/{telegramID}")
	err = c.check(resp, err)

	var set *models.TokenSet
	if err == nil {
		set = &models.TokenSet{}
		if jerr := json.Unmarshal(resp.Body(), set); jerr != nil {
			err = &Error{Err: fmt.Errorf("decode token set: %w", jerr)}
		}
	}
	c.metrics.ObserveBackend(opGetTokenSet, err, time.Since(start))
	if err != nil {
		c.log.Warn().Err(err).Str("telegram_id", telegramID).Msg("⚠️ Token set fetch failed")
		return nil, err
	}

	c.log.Debug().Str("telegram_id", telegramID).Int("tokens", len(set.Tokens)).Msg("📦 Token set fetched")
	return set, nil
}

// check turns a transport failure or a non-2xx response into *Error.
func (c *Client) check(resp *resty.Response, err error) error {
	if err != nil {
		return &Error{Detail: transportMessage(err), Err: err}
	}
	if resp.IsSuccess() {
		return nil
	}
	e := &Error{StatusCode: resp.StatusCode()}
	e.Detail = detailFrom(resp.Body())
	if e.Detail == "" {
		e.Detail = fmt.Sprintf("Request failed with status code %d", resp.StatusCode())
	}
	return e
}

// transportMessage strips the URL decoration net/http adds to client errors.
func transportMessage(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "request canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout exceeded"
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err.Error()
	}
	return err.Error()
}

// detailFrom reads the "detail" field of an error body. Validation errors
// carry a structured detail, which is kept as raw JSON.
func detailFrom(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(payload.Detail, &s) == nil {
		return s
	}
	return string(payload.Detail)
}
