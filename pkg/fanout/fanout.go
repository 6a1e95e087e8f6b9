package fanout

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// Prometheus metrics for fan-out operations.
var (
	fanoutBranchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvas_fanout_branches_total",
		Help: "Fan-out branches by result",
	}, []string{"result"}) // "ok", "error", "cancelled"

	fanoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "canvas_fanout_duration_seconds",
		Help:    "Duration of complete fan-out operations",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})
)

const tracerName = "github.com/Sternrassler/canvas-graph/pkg/fanout"

// errSiblingFailed is the cancellation cause handed to branches still
// running after another branch failed.
var errSiblingFailed = errors.New("fan-out sibling failed")

// Config holds fan-out configuration.
type Config struct {
	// MaxConcurrency caps parallel branches. 0 runs every branch at once.
	MaxConcurrency int

	// Timeout per branch. 0 means no timeout.
	Timeout time.Duration

	// CancelOnError cancels running siblings once a branch fails.
	CancelOnError bool
}

// DefaultConfig returns the default configuration: unbounded, no timeout,
// cancel on first failure.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 0,
		Timeout:        0,
		CancelOnError:  true,
	}
}

// FetchFunc fetches the children of one parent. index is the parent's
// position in the input.
type FetchFunc[P, C any] func(ctx context.Context, index int, parent P) ([]C, error)

type runIDKey struct{}

// ContextWithRunID tags ctx with a run ID used in fan-out logs.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run ID carried by ctx, if any.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// FlatMap runs fetch for every parent concurrently and concatenates the
// children in parent order, each group in the order fetch returned it.
// If any branch fails FlatMap returns no children and the error of the
// failing branch with the lowest index. Errors caused by cancelling
// siblings never win over the failure that triggered the cancellation.
func FlatMap[P, C any](ctx context.Context, cfg Config, parents []P, fetch FetchFunc[P, C]) ([]C, error) {
	if len(parents) == 0 {
		return []C{}, nil
	}

	start := time.Now()
	defer func() {
		fanoutDuration.Observe(time.Since(start).Seconds())
	}()

	runID, ok := RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
	}
	logger := log.With().Str("component", "fanout").Str("run_id", runID).Logger()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "canvas.fanout")
	span.SetAttributes(
		attribute.String("canvas.run_id", runID),
		attribute.Int("canvas.fanout.branches", len(parents)),
	)
	defer span.End()

	groupCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	logger.Info().
		Int("branches", len(parents)).
		Int("max_concurrency", cfg.MaxConcurrency).
		Msg("Starting fan-out")

	results := make([][]C, len(parents))
	errs := make([]error, len(parents))
	var completed atomic.Int64

	var g errgroup.Group
	if cfg.MaxConcurrency > 0 {
		g.SetLimit(cfg.MaxConcurrency)
	}

	for i, parent := range parents {
		g.Go(func() error {
			// Branches queued behind the limit after a failure never start.
			if groupCtx.Err() != nil {
				errs[i] = groupCtx.Err()
				fanoutBranchesTotal.WithLabelValues("cancelled").Inc()
				return errs[i]
			}

			branchCtx := groupCtx
			if cfg.Timeout > 0 {
				var branchCancel context.CancelFunc
				branchCtx, branchCancel = context.WithTimeout(groupCtx, cfg.Timeout)
				defer branchCancel()
			}

			children, err := fetch(branchCtx, i, parent)
			if err != nil {
				errs[i] = err
				if errors.Is(context.Cause(groupCtx), errSiblingFailed) && isCancellation(err) {
					fanoutBranchesTotal.WithLabelValues("cancelled").Inc()
					logger.Debug().Int("index", i).Msg("Branch cancelled after sibling failure")
					return err
				}

				fanoutBranchesTotal.WithLabelValues("error").Inc()
				logger.Warn().Err(err).Int("index", i).Msg("Branch failed")
				if cfg.CancelOnError {
					cancel(errSiblingFailed)
				}
				return err
			}

			results[i] = children
			fanoutBranchesTotal.WithLabelValues("ok").Inc()

			done := completed.Add(1)
			logger.Debug().
				Int("index", i).
				Int("children", len(children)).
				Int64("completed", done).
				Msg("Branch complete")
			if done%50 == 0 {
				logger.Info().
					Int64("completed", done).
					Int("total", len(parents)).
					Float64("progress_pct", float64(done)/float64(len(parents))*100).
					Msg("Fan-out progress")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		err = pickError(errs, errors.Is(context.Cause(groupCtx), errSiblingFailed))
		span.RecordError(err)
		span.SetStatus(codes.Error, "branch failed")
		logger.Error().
			Err(err).
			Int64("completed", completed.Load()).
			Int("total", len(parents)).
			Dur("duration", time.Since(start)).
			Msg("Fan-out failed")
		return nil, err
	}

	total := 0
	for _, group := range results {
		total += len(group)
	}
	out := make([]C, 0, total)
	for _, group := range results {
		out = append(out, group...)
	}

	span.SetAttributes(attribute.Int("canvas.fanout.children", total))
	logger.Info().
		Int("branches", len(parents)).
		Int("children", total).
		Dur("duration", time.Since(start)).
		Msg("Fan-out complete")

	return out, nil
}

// isCancellation reports whether err came from our own sibling cancellation.
// net/http reports the context cause rather than context.Canceled, so both
// are checked.
func isCancellation(err error) bool {
	return errors.Is(err, errSiblingFailed) || errors.Is(err, context.Canceled)
}

// pickError returns the lowest-index error that is not a by-product of
// sibling cancellation, falling back to the lowest-index error overall.
func pickError(errs []error, siblingCancelled bool) error {
	var fallback error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if siblingCancelled && isCancellation(err) {
			if fallback == nil {
				fallback = err
			}
			continue
		}
		return err
	}
	return fallback
}
