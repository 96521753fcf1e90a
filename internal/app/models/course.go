package models

import "time"

// Course represents a course offered by a department.
type Course struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	DepartmentID string    `json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations (populated when needed)
	Department *Department `json:"department,omitempty"`
}
