// Package canvas defines the Canvas LMS records this client reads and the
// resource operations that fetch them.
package canvas

import (
	"time"
)

// Course is a course as returned by GET /api/v1/courses.
// Courses restricted by date come back with only ID, Name and
// AccessRestrictedByDate set.
type Course struct {
	ID                     int64              `json:"id"`
	SISCourseID            *string            `json:"sis_course_id,omitempty"`
	UUID                   string             `json:"uuid,omitempty"`
	IntegrationID          *string            `json:"integration_id,omitempty"`
	Name                   string             `json:"name,omitempty"`
	CourseCode             string             `json:"course_code,omitempty"`
	OriginalName           string             `json:"original_name,omitempty"`
	WorkflowState          string             `json:"workflow_state,omitempty"`
	AccountID              int64              `json:"account_id,omitempty"`
	RootAccountID          int64              `json:"root_account_id,omitempty"`
	EnrollmentTermID       int64              `json:"enrollment_term_id,omitempty"`
	GradingStandardID      *int64             `json:"grading_standard_id,omitempty"`
	GradePassbackSetting   *string            `json:"grade_passback_setting,omitempty"`
	CreatedAt              *time.Time         `json:"created_at,omitempty"`
	StartAt                *time.Time         `json:"start_at,omitempty"`
	EndAt                  *time.Time         `json:"end_at,omitempty"`
	Locale                 string             `json:"locale,omitempty"`
	Enrollments            []CourseEnrollment `json:"enrollments,omitempty"`
	TotalStudents          *int               `json:"total_students,omitempty"`
	Calendar               *Calendar          `json:"calendar,omitempty"`
	DefaultView            string             `json:"default_view,omitempty"`
	SyllabusBody           *string            `json:"syllabus_body,omitempty"`
	NeedsGradingCount      *int               `json:"needs_grading_count,omitempty"`
	ApplyAssignmentWeights bool               `json:"apply_assignment_group_weights,omitempty"`
	IsPublic               bool               `json:"is_public,omitempty"`
	IsPublicToAuthUsers    bool               `json:"is_public_to_auth_users,omitempty"`
	PublicSyllabus         bool               `json:"public_syllabus,omitempty"`
	PublicSyllabusToAuth   bool               `json:"public_syllabus_to_auth,omitempty"`
	StorageQuotaMB         int64              `json:"storage_quota_mb,omitempty"`
	HideFinalGrades        bool               `json:"hide_final_grades,omitempty"`
	License                string             `json:"license,omitempty"`
	TimeZone               string             `json:"time_zone,omitempty"`
	Blueprint              bool               `json:"blueprint,omitempty"`
	Template               bool               `json:"template,omitempty"`
	RestrictToCourseDates  bool               `json:"restrict_enrollments_to_course_dates,omitempty"`
	AccessRestrictedByDate bool               `json:"access_restricted_by_date,omitempty"`
}

// CourseEnrollment is the caller's own enrollment embedded in a Course.
type CourseEnrollment struct {
	Type                           string `json:"type"`
	Role                           string `json:"role"`
	RoleID                         int64  `json:"role_id"`
	UserID                         int64  `json:"user_id"`
	EnrollmentState                string `json:"enrollment_state"`
	LimitPrivilegesToCourseSection bool   `json:"limit_privileges_to_course_section"`
}

// Calendar links to the course's iCal feed.
type Calendar struct {
	ICS string `json:"ics"`
}

// Enrollment is an enrollment as returned by
// GET /api/v1/courses/:course_id/enrollments.
type Enrollment struct {
	ID                             int64      `json:"id"`
	CourseID                       int64      `json:"course_id"`
	UserID                         int64      `json:"user_id"`
	SISCourseID                    *string    `json:"sis_course_id,omitempty"`
	CourseIntegrationID            *string    `json:"course_integration_id,omitempty"`
	CourseSectionID                int64      `json:"course_section_id,omitempty"`
	SectionIntegrationID           *string    `json:"section_integration_id,omitempty"`
	SISAccountID                   *string    `json:"sis_account_id,omitempty"`
	SISSectionID                   *string    `json:"sis_section_id,omitempty"`
	SISUserID                      *string    `json:"sis_user_id,omitempty"`
	EnrollmentState                string     `json:"enrollment_state,omitempty"`
	LimitPrivilegesToCourseSection bool       `json:"limit_privileges_to_course_section,omitempty"`
	SISImportID                    *int64     `json:"sis_import_id,omitempty"`
	RootAccountID                  int64      `json:"root_account_id,omitempty"`
	Type                           string     `json:"type,omitempty"`
	AssociatedUserID               *int64     `json:"associated_user_id,omitempty"`
	Role                           string     `json:"role,omitempty"`
	RoleID                         int64      `json:"role_id,omitempty"`
	CreatedAt                      *time.Time `json:"created_at,omitempty"`
	UpdatedAt                      *time.Time `json:"updated_at,omitempty"`
	StartAt                        *time.Time `json:"start_at,omitempty"`
	EndAt                          *time.Time `json:"end_at,omitempty"`
	LastActivityAt                 *time.Time `json:"last_activity_at,omitempty"`
	LastAttendedAt                 *time.Time `json:"last_attended_at,omitempty"`
	TotalActivityTime              int64      `json:"total_activity_time,omitempty"`
	HTMLURL                        string     `json:"html_url,omitempty"`
	Grades                         *Grades    `json:"grades,omitempty"`
	User                           *User      `json:"user,omitempty"`
}

// Grades holds the scores of a student enrollment. Scores are null until
// something has been graded.
type Grades struct {
	HTMLURL              string   `json:"html_url,omitempty"`
	CurrentScore         *float64 `json:"current_score,omitempty"`
	CurrentGrade         *string  `json:"current_grade,omitempty"`
	FinalScore           *float64 `json:"final_score,omitempty"`
	FinalGrade           *string  `json:"final_grade,omitempty"`
	UnpostedCurrentScore *float64 `json:"unposted_current_score,omitempty"`
	UnpostedCurrentGrade *string  `json:"unposted_current_grade,omitempty"`
	UnpostedFinalScore   *float64 `json:"unposted_final_score,omitempty"`
	UnpostedFinalGrade   *string  `json:"unposted_final_grade,omitempty"`
}

// User is the abbreviated user embedded in an enrollment.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name,omitempty"`
	SortableName string `json:"sortable_name,omitempty"`
	ShortName    string `json:"short_name,omitempty"`
	LoginID      string `json:"login_id,omitempty"`
}
