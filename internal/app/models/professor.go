package models

import "time"

// Professor carries materialized review aggregates. The aggregate fields are
// only ever written by the recomputation step after a review changes.
type Professor struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	DepartmentID          *string   `json:"department_id"`
	Title                 string    `json:"title"`
	AverageRating         float64   `json:"average_rating"`
	DifficultyRating      float64   `json:"difficulty_rating"`
	WouldTakeAgainPercent int       `json:"would_take_again_percent"`
	TotalReviews          int       `json:"total_reviews"`
	CreatedAt             time.Time `json:"created_at"`

	// Relations (populated when needed)
	Department  *Department  `json:"department,omitempty"`
	Departments []Department `json:"departments,omitempty"`
}

// Aggregates are the derived review statistics stored on a professor
type Aggregates struct {
	AverageRating         float64 `json:"average_rating"`
	DifficultyRating      float64 `json:"difficulty_rating"`
	WouldTakeAgainPercent int     `json:"would_take_again_percent"`
	TotalReviews          int     `json:"total_reviews"`
}

// ProfessorDepartment links a professor to one of the departments they teach in
type ProfessorDepartment struct {
	ID           string    `json:"id"`
	ProfessorID  string    `json:"professor_id"`
	DepartmentID string    `json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfessorRecord is a professor joined with its primary department, as used by
// the duplicate report. Missing departments are reported as Unknown/UNKN.
type ProfessorRecord struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	DepartmentName string `json:"department_name"`
	DepartmentCode string `json:"department_code"`
}
