// Package store exports aggregated enrollment snapshots to Redis.
//
// The store is an output sink. Nothing in the request path reads from it,
// so it never stands in for a Canvas response.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Sternrassler/canvas-graph/pkg/canvas"
	"github.com/Sternrassler/canvas-graph/pkg/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	exportWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvas_export_writes_total",
		Help: "Total number of records written to the export store",
	}, []string{"kind"}) // "course", "run"

	exportErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvas_export_errors_total",
		Help: "Total number of export store operation errors",
	}, []string{"operation"}) // "save", "load", "runs"
)

// MaxRuns is the number of run IDs kept per host.
const MaxRuns = 100

var (
	// ErrNotFound indicates the requested key does not exist.
	ErrNotFound = errors.New("not found in export store")

	// ErrInvalidRecord indicates a stored value could not be decoded.
	ErrInvalidRecord = errors.New("invalid export record")
)

// Run describes one exported aggregation.
type Run struct {
	ID          string    `json:"id"`
	Server      string    `json:"server"`
	HostURL     string    `json:"host_url"`
	Courses     int       `json:"courses"`
	Enrollments int       `json:"enrollments"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Store writes snapshots to Redis.
type Store struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// New creates a new store. A ttl of 0 keeps keys forever.
func New(redisClient *redis.Client, ttl time.Duration) *Store {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Store{
		redis:  redisClient,
		ttl:    ttl,
		logger: log.With().Str("component", "export-store").Logger(),
	}
}

// SaveSnapshot writes every course's enrollments and a run record in a
// single transaction. Enrollments are grouped by CourseID; courses without
// enrollments are written as empty lists.
func (s *Store) SaveSnapshot(ctx context.Context, profile *client.ServerProfile, runID string, courses []canvas.Course, enrollments []canvas.Enrollment, startedAt time.Time) (*Run, error) {
	if profile == nil {
		return nil, fmt.Errorf("server profile is required")
	}
	if runID == "" {
		return nil, fmt.Errorf("run id is required")
	}

	groups := make(map[int64][]canvas.Enrollment, len(courses))
	for _, course := range courses {
		groups[course.ID] = []canvas.Enrollment{}
	}
	for _, e := range enrollments {
		groups[e.CourseID] = append(groups[e.CourseID], e)
	}

	courseIDs := make([]int64, 0, len(groups))
	for id := range groups {
		courseIDs = append(courseIDs, id)
	}
	sort.Slice(courseIDs, func(i, j int) bool { return courseIDs[i] < courseIDs[j] })

	run := &Run{
		ID:          runID,
		Server:      profile.Name,
		HostURL:     profile.HostURL,
		Courses:     len(courses),
		Enrollments: len(enrollments),
		StartedAt:   startedAt.UTC(),
		FinishedAt:  time.Now().UTC(),
	}
	runData, err := json.Marshal(run)
	if err != nil {
		exportErrors.WithLabelValues("save").Inc()
		return nil, fmt.Errorf("marshal run: %w", err)
	}

	pipe := s.redis.TxPipeline()
	for _, id := range courseIDs {
		data, err := json.Marshal(groups[id])
		if err != nil {
			exportErrors.WithLabelValues("save").Inc()
			return nil, fmt.Errorf("marshal enrollments of course %d: %w", id, err)
		}
		pipe.Set(ctx, EnrollmentsKey(profile.HostURL, id), data, s.ttl)
	}
	pipe.Set(ctx, RunKey(profile.HostURL, runID), runData, s.ttl)
	pipe.LPush(ctx, RunsKey(profile.HostURL), runID)
	pipe.LTrim(ctx, RunsKey(profile.HostURL), 0, MaxRuns-1)

	if _, err := pipe.Exec(ctx); err != nil {
		exportErrors.WithLabelValues("save").Inc()
		return nil, fmt.Errorf("redis exec: %w", err)
	}

	exportWrites.WithLabelValues("course").Add(float64(len(courseIDs)))
	exportWrites.WithLabelValues("run").Inc()

	s.logger.Info().
		Str("run_id", runID).
		Int("courses", len(courseIDs)).
		Int("enrollments", len(enrollments)).
		Msg("Exported snapshot")

	return run, nil
}

// LoadEnrollments reads back one course's exported enrollments.
func (s *Store) LoadEnrollments(ctx context.Context, hostURL string, courseID int64) ([]canvas.Enrollment, error) {
	data, err := s.redis.Get(ctx, EnrollmentsKey(hostURL, courseID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		exportErrors.WithLabelValues("load").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var enrollments []canvas.Enrollment
	if err := json.Unmarshal(data, &enrollments); err != nil {
		exportErrors.WithLabelValues("load").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return enrollments, nil
}

// LatestRuns returns up to n run records for a host, newest first.
// Run IDs whose record expired are skipped.
func (s *Store) LatestRuns(ctx context.Context, hostURL string, n int64) ([]Run, error) {
	if n <= 0 {
		return []Run{}, nil
	}

	ids, err := s.redis.LRange(ctx, RunsKey(hostURL), 0, n-1).Result()
	if err != nil {
		exportErrors.WithLabelValues("runs").Inc()
		return nil, fmt.Errorf("redis lrange: %w", err)
	}

	runs := make([]Run, 0, len(ids))
	for _, id := range ids {
		data, err := s.redis.Get(ctx, RunKey(hostURL, id)).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			exportErrors.WithLabelValues("runs").Inc()
			return nil, fmt.Errorf("redis get run %s: %w", id, err)
		}

		var run Run
		if err := json.Unmarshal(data, &run); err != nil {
			exportErrors.WithLabelValues("runs").Inc()
			return nil, fmt.Errorf("%w: run %s: %v", ErrInvalidRecord, id, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
