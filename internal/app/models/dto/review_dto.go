package dto

import "github.com/aggiereview/aggiereview/internal/app/models"

// SubmitReviewRequest represents a new review. Scores are checked by the
// review service so that unset values get the form's own message.
type SubmitReviewRequest struct {
	ProfessorID         string        `json:"professor_id" example:"0f8b7c3e-5d0a-4e1b-9f64-3a2d9c1b7e55"`
	CourseID            string        `json:"course_id" example:"6e3c1a9b-2f4d-4b8e-a7c5-1d9e0f3b2a44"`
	Rating              int           `json:"rating" example:"4"`
	Difficulty          int           `json:"difficulty" example:"3"`
	WouldTakeAgain      bool          `json:"would_take_again" example:"true"`
	ForCredit           bool          `json:"for_credit" example:"true"`
	AttendanceMandatory bool          `json:"attendance_mandatory" example:"false"`
	GradeReceived       *models.Grade `json:"grade_received,omitempty" example:"A-"`
	Comment             string        `json:"comment" binding:"max=2000" example:"Clear lectures and fair exams all semester."`
}

// ReviewListResponse is a list of reviews
type ReviewListResponse = ListResponse[models.Review]
