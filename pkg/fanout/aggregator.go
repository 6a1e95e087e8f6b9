package fanout

import (
	"context"

	"github.com/Sternrassler/canvas-graph/pkg/canvas"
	"github.com/Sternrassler/canvas-graph/pkg/client"
)

// EnrollmentLister is the per-course fetch the aggregator fans out over.
// canvas.Resources implements it.
type EnrollmentLister interface {
	ListEnrollments(ctx context.Context, profile *client.ServerProfile, courseID int64) ([]canvas.Enrollment, error)
}

// Aggregator fetches the enrollments of many courses concurrently.
type Aggregator struct {
	config Config
}

// NewAggregator creates a new aggregator.
func NewAggregator(config Config) *Aggregator {
	if config.MaxConcurrency < 0 {
		config.MaxConcurrency = 0
	}
	if config.Timeout < 0 {
		config.Timeout = 0
	}
	return &Aggregator{config: config}
}

// AggregateEnrollments lists the enrollments of every course and returns
// them flattened in course order. It is all-or-nothing: one failing course
// fails the whole call. An empty course list issues no request.
func (a *Aggregator) AggregateEnrollments(ctx context.Context, lister EnrollmentLister, profile *client.ServerProfile, courses []canvas.Course) ([]canvas.Enrollment, error) {
	return FlatMap(ctx, a.config, courses, func(ctx context.Context, _ int, course canvas.Course) ([]canvas.Enrollment, error) {
		return lister.ListEnrollments(ctx, profile, course.ID)
	})
}
