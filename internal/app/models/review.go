package models

import "time"

// Review is one student's rating of a professor for a course. At most one review
// exists per (user, professor, course).
type Review struct {
	ID                  string    `json:"id"`
	ProfessorID         string    `json:"professor_id"`
	CourseID            string    `json:"course_id"`
	UserID              string    `json:"user_id"`
	Rating              int       `json:"rating"`
	Difficulty          int       `json:"difficulty"`
	WouldTakeAgain      bool      `json:"would_take_again"`
	ForCredit           bool      `json:"for_credit"`
	AttendanceMandatory bool      `json:"attendance_mandatory"`
	GradeReceived       *Grade    `json:"grade_received"`
	Comment             string    `json:"comment"`
	HelpfulCount        int       `json:"helpful_count"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	// Relations (populated when needed)
	Professor  *Professor `json:"professor,omitempty"`
	Course     *Course    `json:"course,omitempty"`
	AuthorName string     `json:"author_name,omitempty"`
}

// ProfessorCourseStats summarizes one professor's reviews within a single course
type ProfessorCourseStats struct {
	Professor *Professor `json:"professor"`
	Aggregates
	Reviews []Review `json:"reviews"`
}
