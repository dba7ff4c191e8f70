// Package loader fetches the plasmid dataset and holds the latest committed
// snapshot together with the load status.
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tOgg1/plasmid-browser/internal/logging"
	"github.com/tOgg1/plasmid-browser/internal/models"
)

const (
	// DefaultTokenParam is the query parameter the id token travels in.
	DefaultTokenParam = "idToken"
	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 30 * time.Second

	maxBodyBytes = 64 << 20
)

// Fetcher retrieves one complete dataset for a token.
type Fetcher interface {
	Fetch(ctx context.Context, token string) (models.Dataset, error)
}

// Client fetches the dataset from the configured endpoint.
type Client struct {
	endpoint   string
	tokenParam string
	http       *http.Client
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenParam changes the query parameter the token is sent in.
func WithTokenParam(name string) Option {
	return func(c *Client) {
		if name = strings.TrimSpace(name); name != "" {
			c.tokenParam = name
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for endpoint. A non-positive timeout uses
// DefaultTimeout.
func NewClient(endpoint string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		endpoint:   strings.TrimSpace(endpoint),
		tokenParam: DefaultTokenParam,
		http:       &http.Client{Timeout: timeout},
		logger:     logging.Component("loader"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch performs one GET and decodes the response into a Dataset.
func (c *Client) Fetch(ctx context.Context, token string) (models.Dataset, error) {
	reqURL := c.requestURL(token)
	requestID := uuid.NewString()
	log := c.logger.With().
		Str("request_id", requestID).
		Str("url", logging.RedactURL(reqURL)).
		Logger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error repeats the request URL, token included.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		log.Warn().Err(err).Dur("took", time.Since(start)).Msg("fetch failed")
		return models.Dataset{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		log.Warn().Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("fetch rejected")
		return models.Dataset{}, &TransportError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.Dataset{}, &TransportError{Err: err}
	}

	ds, err := Decode(body)
	if err != nil {
		log.Warn().Err(err).Msg("fetch returned an unusable body")
		return models.Dataset{}, err
	}
	log.Debug().
		Int("rows", len(ds.Rows)).
		Int("members", len(ds.Members)).
		Dur("took", time.Since(start)).
		Msg("dataset fetched")
	return ds, nil
}

func (c *Client) requestURL(token string) string {
	sep := "?"
	if strings.Contains(c.endpoint, "?") {
		sep = "&"
	}
	return c.endpoint + sep + url.QueryEscape(c.tokenParam) + "=" + url.QueryEscape(token)
}

// Decode turns a response body into a Dataset. A body that is not a JSON
// object yields *ParseError; a truthy top-level error field yields
// *RemoteError.
func Decode(body []byte) (models.Dataset, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return models.Dataset{}, &ParseError{Err: err}
	}
	if top == nil {
		return models.Dataset{}, &ParseError{Err: errors.New("response is not an object")}
	}

	if msg, ok := truthyText(top["error"]); ok {
		reason, _ := truthyText(top["reason"])
		return models.Dataset{}, &RemoteError{Message: msg, Reason: reason}
	}

	ds := models.Dataset{
		Members: []models.Member{},
		Rows:    []models.Record{},
	}
	if raw, ok := top["members"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &ds.Members); err != nil {
			return models.Dataset{}, &ParseError{Err: fmt.Errorf("members: %w", err)}
		}
	}
	if raw, ok := top["rows"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &ds.Rows); err != nil {
			return models.Dataset{}, &ParseError{Err: fmt.Errorf("rows: %w", err)}
		}
	}
	ds.UpdatedAt = parseUpdatedAt(top["updatedAt"])
	return ds, nil
}

func parseUpdatedAt(raw json.RawMessage) *time.Time {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// truthyText reports whether raw holds a value other than null, false, 0 or
// "", and renders it as text.
func truthyText(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	switch typed := v.(type) {
	case string:
		return typed, typed != ""
	case bool:
		return "true", typed
	case float64:
		return string(bytes.TrimSpace(raw)), typed != 0
	default:
		return string(bytes.TrimSpace(raw)), true
	}
}
