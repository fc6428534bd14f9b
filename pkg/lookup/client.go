// Package lookup queries the remote share lookup service.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/denysvitali/share-viewer/internal/models"
	"github.com/denysvitali/share-viewer/pkg/metrics"
)

// DefaultEndpoint is the public lookup service.
const DefaultEndpoint = "http://jk.xn--9kq32sd94a.top/123pan/api/"

// FallbackMessage is used when a failed response carries no message.
const FallbackMessage = "failed to parse share link"

// Error is returned for every failed lookup: a non-success response code or a
// transport failure.
type Error struct {
	// Code is the service response code, 0 for transport failures.
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config holds client configuration.
type Config struct {
	Endpoint  string
	Timeout   time.Duration
	UserAgent string
}

// Client calls the lookup endpoint.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	logger     *logrus.Logger
	tracer     trace.Tracer
}

// New creates a new client. A zero Timeout leaves the transport's own behaviour in place.
func New(cfg Config, logger *logrus.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		tracer:     otel.Tracer("share-viewer"),
	}
}

// Endpoint returns the configured endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// RequestURL builds the lookup URL for a key and password.
func (c *Client) RequestURL(key, password string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid lookup endpoint %q: %w", c.endpoint, err)
	}
	q := u.Query()
	q.Set("key", key)
	q.Set("pwd", password)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Lookup fetches the listing for a share key. The password may be empty.
func (c *Client) Lookup(ctx context.Context, key, password string) ([]models.ListingEntry, error) {
	ctx, span := c.tracer.Start(ctx, "lookup")
	defer span.End()
	span.SetAttributes(
		attribute.String("share.key", key),
		attribute.Bool("share.has_password", password != ""),
	)

	start := time.Now()
	entries, err := c.do(ctx, key, password)
	metrics.RecordLookup(resultLabel(err), time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Warn("Lookup failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("share.entries", len(entries)))
	c.logger.WithFields(logrus.Fields{
		"key":     key,
		"entries": len(entries),
		"latency": time.Since(start),
	}).Debug("Lookup succeeded")
	return entries, nil
}

func (c *Client) do(ctx context.Context, key, password string) ([]models.ListingEntry, error) {
	reqURL, err := c.RequestURL(key, password)
	if err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	// The service reports failures in the envelope, so the HTTP status is not consulted.
	var body models.LookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		err = fmt.Errorf("decode lookup response: %w", err)
		return nil, &Error{Message: err.Error(), Err: err}
	}

	if !body.Succeeded() {
		msg := body.ErrorText()
		if msg == "" {
			msg = FallbackMessage
		}
		return nil, &Error{Code: body.Code, Message: msg}
	}

	if body.Data == nil {
		return []models.ListingEntry{}, nil
	}
	return body.Data, nil
}

func resultLabel(err error) string {
	var lerr *Error
	switch {
	case err == nil:
		return metrics.LookupSuccess
	case errors.As(err, &lerr) && lerr.Err == nil:
		return metrics.LookupRejected
	default:
		return metrics.LookupTransportError
	}
}
