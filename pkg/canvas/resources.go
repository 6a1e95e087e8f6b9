package canvas

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Sternrassler/canvas-graph/pkg/client"
)

// Endpoint paths relative to the server's host URL.
const (
	CoursesPath         = "/api/v1/courses"
	EnrollmentsPathTmpl = "/api/v1/courses/%d/enrollments"
)

// Resources lists Canvas records through a client.Client.
type Resources struct {
	client *client.Client

	// PerPage is sent as per_page when positive. Only the first page is read.
	PerPage int
}

// NewResources creates a resource client.
func NewResources(c *client.Client) *Resources {
	return &Resources{client: c}
}

// ListCourses returns the courses visible to the profile's token.
func (r *Resources) ListCourses(ctx context.Context, profile *client.ServerProfile) ([]Course, error) {
	return client.Get[[]Course](ctx, r.client, profile, r.withPaging(CoursesPath))
}

// ListEnrollments returns the enrollments of one course.
func (r *Resources) ListEnrollments(ctx context.Context, profile *client.ServerProfile, courseID int64) ([]Enrollment, error) {
	return client.Get[[]Enrollment](ctx, r.client, profile, r.withPaging(EnrollmentsPath(courseID)))
}

// EnrollmentsPath returns the enrollments path of a course.
func EnrollmentsPath(courseID int64) string {
	return fmt.Sprintf(EnrollmentsPathTmpl, courseID)
}

func (r *Resources) withPaging(path string) string {
	if r.PerPage <= 0 {
		return path
	}
	return path + "?per_page=" + strconv.Itoa(r.PerPage)
}
