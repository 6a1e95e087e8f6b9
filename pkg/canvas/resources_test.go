package canvas_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Sternrassler/canvas-graph/internal/testutil"
	"github.com/Sternrassler/canvas-graph/pkg/canvas"
	"github.com/Sternrassler/canvas-graph/pkg/client"
)

func newResources(t *testing.T) *canvas.Resources {
	t.Helper()
	c, err := client.New(client.DefaultConfig("canvas-graph-test/1.0"))
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	return canvas.NewResources(c)
}

func TestListCourses(t *testing.T) {
	mock := testutil.NewMockCanvas()
	defer mock.Close()

	mock.SetCourses([]map[string]any{
		{"id": 1, "name": "Biology"},
		{"id": 2, "name": "Chemistry"},
	})

	courses, err := newResources(t).ListCourses(context.Background(), mock.Profile())
	if err != nil {
		t.Fatalf("ListCourses() error = %v", err)
	}

	want := []canvas.Course{{ID: 1, Name: "Biology"}, {ID: 2, Name: "Chemistry"}}
	if diff := cmp.Diff(want, courses); diff != "" {
		t.Errorf("courses mismatch (-want +got):\n%s", diff)
	}
}

func TestListCourses_Empty(t *testing.T) {
	mock := testutil.NewMockCanvas()
	defer mock.Close()
	mock.SetCourses([]any{})

	courses, err := newResources(t).ListCourses(context.Background(), mock.Profile())
	if err != nil {
		t.Fatalf("ListCourses() error = %v", err)
	}
	if len(courses) != 0 {
		t.Errorf("len(courses) = %d, want 0", len(courses))
	}
}

func TestListCourses_Unauthorized(t *testing.T) {
	mock := testutil.NewMockCanvas()
	defer mock.Close()
	mock.SetCourses([]any{})

	profile := mock.Profile()
	profile.APIToken = "wrong"

	_, err := newResources(t).ListCourses(context.Background(), profile)
	if !errors.Is(err, client.ErrServerError) {
		t.Fatalf("error = %v, want ErrServerError", err)
	}
	envelope, _ := client.AsServerError(err)
	if envelope == nil || len(envelope.Errors) != 1 || envelope.Errors[0].ErrorCode != "unauthenticated" {
		t.Errorf("envelope = %+v", envelope)
	}
}

func TestListEnrollments(t *testing.T) {
	mock := testutil.NewMockCanvas()
	defer mock.Close()

	mock.SetEnrollments(7, testutil.NewJSONResponse([]map[string]any{
		{"id": 70, "course_id": 7, "user_id": 1, "type": "StudentEnrollment"},
		{"id": 71, "course_id": 7, "user_id": 2, "type": "TeacherEnrollment"},
	}))

	enrollments, err := newResources(t).ListEnrollments(context.Background(), mock.Profile(), 7)
	if err != nil {
		t.Fatalf("ListEnrollments() error = %v", err)
	}

	want := []canvas.Enrollment{
		{ID: 70, CourseID: 7, UserID: 1, Type: "StudentEnrollment"},
		{ID: 71, CourseID: 7, UserID: 2, Type: "TeacherEnrollment"},
	}
	if diff := cmp.Diff(want, enrollments); diff != "" {
		t.Errorf("enrollments mismatch (-want +got):\n%s", diff)
	}
	if paths := mock.Paths(); len(paths) != 1 || paths[0] != "/api/v1/courses/7/enrollments" {
		t.Errorf("paths = %v", paths)
	}
}

func TestListEnrollments_Errors(t *testing.T) {
	tests := []struct {
		name   string
		resp   testutil.MockResponse
		wantIs error
	}{
		{"not found envelope", testutil.NewErrorResponse(http.StatusNotFound, "The specified resource does not exist.", "not_found", 3), client.ErrServerError},
		{"server error envelope", testutil.NewErrorResponse(http.StatusInternalServerError, "oops", "internal", 4), client.ErrServerError},
		{"malformed body", testutil.NewMalformedResponse(), client.ErrDeserializeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockCanvas()
			defer mock.Close()
			mock.SetEnrollments(3, tt.resp)

			_, err := newResources(t).ListEnrollments(context.Background(), mock.Profile(), 3)
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("error = %v, want %v", err, tt.wantIs)
			}
		})
	}
}

func TestResources_PerPage(t *testing.T) {
	mock := testutil.NewMockCanvas()
	defer mock.Close()

	var rawQuery string
	mock.SetHandler(canvas.CoursesPath, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	})

	res := newResources(t)
	res.PerPage = 100
	if _, err := res.ListCourses(context.Background(), mock.Profile()); err != nil {
		t.Fatalf("ListCourses() error = %v", err)
	}
	if rawQuery != "per_page=100" {
		t.Errorf("query = %q, want per_page=100", rawQuery)
	}
}

func TestEnrollmentsPath(t *testing.T) {
	if got := canvas.EnrollmentsPath(42); got != "/api/v1/courses/42/enrollments" {
		t.Errorf("EnrollmentsPath(42) = %q", got)
	}
}
