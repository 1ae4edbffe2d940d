package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"timegate/pkg/domain"
	"timegate/pkg/logger"
	"timegate/pkg/metrics"
	"timegate/pkg/serrors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

// Options configure the HTTP client for the attendance API.
type Options struct {
	// BaseURL is the root of the upstream API, without a trailing slash.
	BaseURL string
	// MockFallback substitutes a synthetic success body when the upstream
	// rejects a clock action with one of the statuses in mockableStatuses.
	// Every substitution is logged and counted; the synthetic body carries
	// a "mock": true marker so downstream consumers can tell it apart.
	MockFallback bool
	// MeterProvider supplies the meter for upstream latency recording.
	// When nil, a no-op meter is used.
	MeterProvider metric.MeterProvider
}

// HTTPClient implements Client over the attendance REST API. It is safe for
// concurrent use.
type HTTPClient struct {
	httpClient   *http.Client
	baseURL      string
	mockFallback bool
	latency      metric.Float64Histogram
}

// Ensure HTTPClient conforms to the Client interface at compile time.
var _ Client = (*HTTPClient)(nil)

// New constructs an HTTPClient that uses the provided http.Client to reach
// the attendance API. The http.Client's timeout bounds each round trip.
func New(httpClient *http.Client, opts Options) (*HTTPClient, error) {
	mp := opts.MeterProvider
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	latency, err := mp.Meter("timegate/upstream").Float64Histogram(
		"upstream_request_duration_seconds",
		metric.WithDescription("Latency of attendance API round trips."),
		metric.WithExplicitBucketBoundaries(metrics.DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create latency histogram: %w", err)
	}

	return &HTTPClient{
		httpClient:   httpClient,
		baseURL:      opts.BaseURL,
		mockFallback: opts.MockFallback,
		latency:      latency,
	}, nil
}

// ClockIn records the start of a work period at the given coordinate.
func (c *HTTPClient) ClockIn(ctx context.Context, req ClockRequest) (*Response, error) {
	return c.clock(ctx, "clock-in", req)
}

// ClockOut records the end of a work period at the given coordinate.
func (c *HTTPClient) ClockOut(ctx context.Context, req ClockRequest) (*Response, error) {
	return c.clock(ctx, "clock-out", req)
}

func (c *HTTPClient) clock(ctx context.Context, action string, req ClockRequest) (*Response, error) {
	type clockReq struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	bodyBytes, err := json.Marshal(clockReq{
		Latitude:  req.Coordinate.Latitude,
		Longitude: req.Coordinate.Longitude,
	})
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx,
		http.MethodPost,
		c.baseURL+"/attendance/"+action,
		bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	authorize(httpReq, req.Credentials)

	resp, err := c.do(httpReq, action)
	if err != nil {
		return nil, err
	}

	if c.mockFallback && !resp.OK() && mockable(resp.StatusCode) {
		logger.Warn(ctx, "substituting mock success for upstream rejection",
			zap.String("action", action),
			zap.Int("upstream_status", resp.StatusCode))
		metrics.MockFallbacks.WithLabelValues(action).Inc()

		return mockSuccess(action), nil
	}

	return resp, nil
}

// Employee fetches the employee sub-resource by ID and relays it verbatim.
func (c *HTTPClient) Employee(ctx context.Context, creds domain.Credentials, id string) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx,
		http.MethodGet,
		c.baseURL+"/employees/"+url.PathEscape(id),
		nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	authorize(httpReq, creds)

	return c.do(httpReq, "employee")
}

// authorize sets the outbound identity headers from resolved credentials.
func authorize(r *http.Request, creds domain.Credentials) {
	r.Header.Set("Authorization", "Bearer "+creds.Token)
	if creds.UserID != "" {
		r.Header.Set("x-user-id", creds.UserID)
	}
	if creds.Role != "" {
		r.Header.Set("x-user-role", creds.Role)
	}
}

// do performs the round trip, records its latency and reads the full body so
// the response can be relayed. Transport-level failures map to the
// unavailable kind; non-2xx statuses are not errors here, the caller relays
// them as-is.
func (c *HTTPClient) do(req *http.Request, operation string) (*Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.latency.Record(req.Context(), time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("operation", operation)))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "could not reach attendance API")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        b,
	}, nil
}

// mockableStatuses are the upstream client-side rejections the compatibility
// mode is allowed to mask. Server-side errors always pass through.
func mockable(status int) bool {
	switch status {
	case http.StatusBadRequest, http.StatusForbidden, http.StatusConflict:
		return true
	default:
		return false
	}
}

func mockSuccess(action string) *Response {
	return &Response{
		StatusCode:  http.StatusOK,
		ContentType: "application/json",
		Body:        []byte(fmt.Sprintf(`{"success":true,"mock":true,"message":"%s recorded"}`, action)),
	}
}
