package services

import (
	"context"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/app/repositories"
)

// DepartmentService lists departments
type DepartmentService struct {
	departments *repositories.DepartmentRepository
}

// NewDepartmentService creates a new department service
func NewDepartmentService(repos *repositories.Repositories) *DepartmentService {
	return &DepartmentService{departments: repos.DepartmentRepository}
}

// GetAll returns every department ordered by name
func (s *DepartmentService) GetAll(ctx context.Context) ([]models.Department, error) {
	return s.departments.GetAll(ctx)
}
