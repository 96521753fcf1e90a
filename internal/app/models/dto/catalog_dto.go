package dto

import "github.com/aggiereview/aggiereview/internal/app/models"

// DepartmentListResponse represents a list of departments
type DepartmentListResponse = ListResponse[models.Department]

// ProfessorListResponse represents professor search results
type ProfessorListResponse = ListResponse[models.Professor]

// CourseListResponse represents course search results
type CourseListResponse = ListResponse[models.Course]

// CourseProfileResponse is a course page: the course, its reviews and per-professor statistics
type CourseProfileResponse struct {
	Course     *models.Course                `json:"course"`
	Reviews    []models.Review               `json:"reviews"`
	Professors []models.ProfessorCourseStats `json:"professors"`
}
