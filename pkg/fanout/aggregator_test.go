package fanout

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Sternrassler/canvas-graph/internal/testutil"
	"github.com/Sternrassler/canvas-graph/pkg/canvas"
	"github.com/Sternrassler/canvas-graph/pkg/client"
)

func newTestResources(t *testing.T) *canvas.Resources {
	t.Helper()
	c, err := client.New(client.DefaultConfig("canvas-graph-test/1.0"))
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	return canvas.NewResources(c)
}

func TestAggregateEnrollments_TwoCourses(t *testing.T) {
	mock := testutil.NewMockCanvas()
	defer mock.Close()

	mock.SetEnrollments(1, testutil.NewJSONResponse([]map[string]any{{"id": 10, "course_id": 1, "user_id": 100}}))
	mock.SetEnrollments(2, testutil.NewJSONResponse([]map[string]any{{"id": 20, "course_id": 2, "user_id": 200}}))

	agg := NewAggregator(DefaultConfig())
	got, err := agg.AggregateEnrollments(context.Background(), newTestResources(t), mock.Profile(),
		[]canvas.Course{{ID: 1}, {ID: 2}})
	if err != nil {
		t.Fatalf("AggregateEnrollments() error = %v", err)
	}

	want := []canvas.Enrollment{
		{ID: 10, CourseID: 1, UserID: 100},
		{ID: 20, CourseID: 2, UserID: 200},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("enrollments mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateEnrollments_OrderDespiteSlowFirstCourse(t *testing.T) {
	mock := testutil.NewMockCanvas()
	defer mock.Close()

	slow := testutil.NewJSONResponse([]map[string]any{{"id": 10, "course_id": 1}, {"id": 11, "course_id": 1}})
	slow.Delay = 60 * time.Millisecond
	mock.SetEnrollments(1, slow)
	mock.SetEnrollments(2, testutil.NewJSONResponse([]map[string]any{{"id": 20, "course_id": 2}}))
	mock.SetEnrollments(3, testutil.NewJSONResponse([]map[string]any{}))

	got, err := NewAggregator(DefaultConfig()).AggregateEnrollments(context.Background(), newTestResources(t), mock.Profile(),
		[]canvas.Course{{ID: 1}, {ID: 2}, {ID: 3}})
	if err != nil {
		t.Fatalf("AggregateEnrollments() error = %v", err)
	}

	ids := make([]int64, len(got))
	for i, e := range got {
		ids[i] = e.ID
	}
	if diff := cmp.Diff([]int64{10, 11, 20}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateEnrollments_NoCourses(t *testing.T) {
	mock := testutil.NewMockCanvas()
	defer mock.Close()

	got, err := NewAggregator(DefaultConfig()).AggregateEnrollments(context.Background(), newTestResources(t), mock.Profile(), nil)
	if err != nil {
		t.Fatalf("AggregateEnrollments() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
	if mock.RequestCount() != 0 {
		t.Errorf("RequestCount() = %d, want 0", mock.RequestCount())
	}
}

func TestAggregateEnrollments_OneCourseFails(t *testing.T) {
	tests := []struct {
		name   string
		resp   testutil.MockResponse
		wantIs error
	}{
		{"server error", testutil.NewErrorResponse(http.StatusForbidden, "user not authorized to perform that action", "unauthorized", 12), client.ErrServerError},
		{"malformed", testutil.NewMalformedResponse(), client.ErrDeserializeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockCanvas()
			defer mock.Close()

			mock.SetEnrollments(1, testutil.NewJSONResponse([]map[string]any{{"id": 10, "course_id": 1}}))
			mock.SetEnrollments(2, tt.resp)
			mock.SetEnrollments(3, testutil.NewJSONResponse([]map[string]any{{"id": 30, "course_id": 3}}))

			got, err := NewAggregator(DefaultConfig()).AggregateEnrollments(context.Background(), newTestResources(t), mock.Profile(),
				[]canvas.Course{{ID: 1}, {ID: 2}, {ID: 3}})
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("error = %v, want %v", err, tt.wantIs)
			}
			if got != nil {
				t.Errorf("got %d enrollments, want none", len(got))
			}
		})
	}
}

func TestAggregateEnrollments_FailureCancelsSlowSibling(t *testing.T) {
	mock := testutil.NewMockCanvas()
	defer mock.Close()

	hung := testutil.NewJSONResponse([]map[string]any{})
	hung.Delay = 10 * time.Second
	mock.SetEnrollments(1, hung)
	mock.SetEnrollments(2, testutil.NewErrorResponse(http.StatusNotFound, "gone", "not_found", 0))

	start := time.Now()
	_, err := NewAggregator(DefaultConfig()).AggregateEnrollments(context.Background(), newTestResources(t), mock.Profile(),
		[]canvas.Course{{ID: 1}, {ID: 2}})

	if !errors.Is(err, client.ErrServerError) {
		t.Errorf("error = %v, want the 404 from course 2", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("aggregation took %v, sibling was not cancelled", elapsed)
	}
}

func TestNewAggregator_ClampsNegatives(t *testing.T) {
	agg := NewAggregator(Config{MaxConcurrency: -4, Timeout: -time.Second})
	if agg.config.MaxConcurrency != 0 || agg.config.Timeout != 0 {
		t.Errorf("config = %+v, want clamped to zero", agg.config)
	}
}
