package quota

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota observation.
var (
	canvasQuotaRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "canvas_quota_remaining",
		Help: "Remaining Canvas request quota reported by the last response",
	})

	canvasRequestCost = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "canvas_request_cost",
		Help:    "Cost Canvas charged per request",
		Buckets: []float64{0.5, 1, 2, 5, 10, 25, 50},
	})

	canvasQuotaLowTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canvas_quota_low_total",
		Help: "Responses observed with remaining quota below the warning threshold",
	})
)

// Tracker keeps the last quota observation. Safe for concurrent use.
type Tracker struct {
	mu            sync.RWMutex
	state         State
	warnThreshold float64
	logger        zerolog.Logger
}

// NewTracker creates a new quota tracker.
func NewTracker(warnThreshold float64, logger zerolog.Logger) *Tracker {
	return &Tracker{
		warnThreshold: warnThreshold,
		logger:        logger,
	}
}

// Observe records the quota headers of a response. Responses without the
// headers leave the state untouched. Malformed values are logged and skipped.
func (t *Tracker) Observe(headers http.Header) {
	remaining, okRemaining, err := parseHeader(headers, HeaderRemaining)
	if err != nil {
		t.logger.Warn().Err(err).Msg("Ignoring malformed quota header")
		return
	}
	cost, okCost, err := parseHeader(headers, HeaderRequestCost)
	if err != nil {
		t.logger.Warn().Err(err).Msg("Ignoring malformed quota header")
		return
	}
	if !okRemaining && !okCost {
		return
	}

	t.mu.Lock()
	if okRemaining {
		t.state.Remaining = remaining
		t.state.Observed = true
	}
	if okCost {
		t.state.LastCost = cost
	}
	t.state.LastUpdate = time.Now()
	state := t.state
	t.mu.Unlock()

	if okCost {
		canvasRequestCost.Observe(cost)
	}
	if !okRemaining {
		return
	}
	canvasQuotaRemaining.Set(remaining)

	if state.IsLow(t.warnThreshold) {
		canvasQuotaLowTotal.Inc()
		t.logger.Warn().
			Float64("remaining", remaining).
			Float64("threshold", t.warnThreshold).
			Msg("Canvas quota running low")
		return
	}

	t.logger.Trace().
		Float64("remaining", remaining).
		Float64("cost", cost).
		Msg("Canvas quota updated")
}

// State returns a copy of the last observation.
func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func parseHeader(headers http.Header, name string) (float64, bool, error) {
	raw := strings.TrimSpace(headers.Get(name))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s header: %w", name, err)
	}
	return v, true, nil
}
