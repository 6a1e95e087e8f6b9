// Package client provides the core Canvas HTTP client: bearer-authenticated
// transport, response buffering and typed JSON decoding with a structured
// error taxonomy.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/canvas-graph/pkg/quota"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Prometheus metrics for Canvas client operations.
var (
	canvasRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvas_requests_total",
		Help: "Total Canvas requests by endpoint and status",
	}, []string{"endpoint", "status"})

	canvasRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "canvas_request_duration_seconds",
		Help:    "Canvas request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	canvasErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvas_errors_total",
		Help: "Total Canvas request failures by error kind",
	}, []string{"kind"})
)

const tracerName = "github.com/Sternrassler/canvas-graph/pkg/client"

// Client issues authenticated requests against a Canvas instance.
// It holds no credentials itself; every call takes a ServerProfile.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	quota      *quota.Tracker
	tracer     trace.Tracer
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent with every request
	UserAgent string

	// Overall per-request timeout on the underlying http.Client (0 = none)
	Timeout time.Duration

	// Client-side pacing. Zero RequestsPerSecond disables the limiter.
	RequestsPerSecond float64
	Burst             int

	// Log a warning once the remaining Canvas quota drops below this value
	QuotaWarnThreshold float64
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:          userAgent,
		Timeout:            30 * time.Second,
		RequestsPerSecond:  0,
		Burst:              1,
		QuotaWarnThreshold: quota.DefaultWarnThreshold,
	}
}

// New creates a new Canvas client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative (got %s)", cfg.Timeout)
	}

	if cfg.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("requests_per_second must not be negative (got %v)", cfg.RequestsPerSecond)
	}

	logger := log.With().Str("component", "canvas-client").Logger()

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: limiter,
		quota:   quota.NewTracker(cfg.QuotaWarnThreshold, logger),
		tracer:  otel.Tracer(tracerName),
		config:  cfg,
		logger:  logger,
	}, nil
}

// requestBuffered performs Send followed by Buffer and logs the snapshot at
// debug level. This is the only place response content is surfaced.
func (c *Client) requestBuffered(ctx context.Context, profile *ServerProfile, method, url string) (*BufferedResponse, error) {
	endpoint := endpointLabel(url)

	startTime := time.Now()
	defer func() {
		canvasRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	resp, err := c.Send(ctx, profile, method, url)
	if err != nil {
		appErr := &AppError{Kind: KindRequestFailed, Method: method, URL: url, Err: err}
		if errors.Is(ctx.Err(), context.Canceled) {
			// Abandoned by the caller, usually a fan-out sibling failure.
			c.logger.Debug().Err(err).Str("method", method).Str("url", url).Msg("HTTP request cancelled")
			canvasRequestsTotal.WithLabelValues(endpoint, "cancelled").Inc()
			return nil, appErr
		}
		c.logger.Error().Err(err).Str("method", method).Str("url", url).Msg("HTTP request failed")
		canvasRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, c.fail(appErr)
	}

	buffered, err := Buffer(resp)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("url", url).Int("status", resp.StatusCode).Msg("Reading response body failed")
		canvasRequestsTotal.WithLabelValues(endpoint, "body_error").Inc()
		return nil, c.fail(&AppError{Kind: KindRequestFailed, Method: method, URL: url, Status: resp.StatusCode, Err: err})
	}

	canvasRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(buffered.Status)).Inc()
	c.quota.Observe(buffered.Headers)

	c.logger.Debug().
		Str("method", method).
		Str("url", url).
		Object("response", buffered).
		Msg("Buffered response")

	return buffered, nil
}

// fail records the error kind and hands the error back.
func (c *Client) fail(err *AppError) *AppError {
	canvasErrorsTotal.WithLabelValues(string(err.Kind)).Inc()
	return err
}

// Quota returns the last Canvas quota observation.
func (c *Client) Quota() quota.State {
	return c.quota.State()
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

var numericSegment = regexp.MustCompile(`^\d+$`)

// endpointLabel reduces a request URL to its path with numeric segments
// replaced, keeping metric label cardinality bounded.
func endpointLabel(rawURL string) string {
	path := rawURL
	if i := strings.Index(path, "://"); i >= 0 {
		path = path[i+3:]
		if j := strings.IndexByte(path, '/'); j >= 0 {
			path = path[j:]
		} else {
			path = "/"
		}
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	segments := strings.Split(path, "/")
	for i, s := range segments {
		if numericSegment.MatchString(s) {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
