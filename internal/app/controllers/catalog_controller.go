package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aggiereview/aggiereview/internal/app/models/dto"
	"github.com/aggiereview/aggiereview/internal/app/services"
	"github.com/aggiereview/aggiereview/internal/middleware"
	"github.com/aggiereview/aggiereview/internal/pkg/apperrors"
)

// CatalogController serves departments, professors and courses
type CatalogController struct {
	departments *services.DepartmentService
	professors  *services.ProfessorService
	courses     *services.CourseService
	reviews     *services.ReviewService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(svcs *services.Services) *CatalogController {
	return &CatalogController{
		departments: svcs.Department,
		professors:  svcs.Professor,
		courses:     svcs.Course,
		reviews:     svcs.Review,
	}
}

// GetAllDepartments retrieves all departments
// @Summary List departments
// @Tags departments
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.DepartmentListResponse} "Departments retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /departments [get]
func (c *CatalogController) GetAllDepartments(ctx *gin.Context) {
	departments, err := c.departments.GetAll(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(departments), ""))
}

// SearchProfessors finds professors by name
// @Summary Search professors
// @Description Case-insensitive substring match on the professor's name, ordered by name
// @Tags professors
// @Produce json
// @Param search query string false "Name fragment"
// @Success 200 {object} dto.APIResponse{data=dto.ProfessorListResponse} "Matching professors"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /professors [get]
func (c *CatalogController) SearchProfessors(ctx *gin.Context) {
	professors, err := c.professors.Search(ctx.Request.Context(), ctx.Query("search"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(professors), ""))
}

// GetProfessor retrieves one professor
// @Summary Get professor
// @Tags professors
// @Produce json
// @Param id path string true "Professor ID"
// @Success 200 {object} dto.APIResponse{data=models.Professor} "Professor"
// @Failure 404 {object} dto.ErrorResponse "Professor not found"
// @Router /professors/{id} [get]
func (c *CatalogController) GetProfessor(ctx *gin.Context) {
	professor, err := c.professors.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(professor, ""))
}

// GetProfessorReviews lists a professor's reviews
// @Summary List professor reviews
// @Description Newest first, with the course and the author's display name
// @Tags professors
// @Produce json
// @Param id path string true "Professor ID"
// @Success 200 {object} dto.APIResponse{data=dto.ReviewListResponse} "Reviews"
// @Failure 404 {object} dto.ErrorResponse "Professor not found"
// @Router /professors/{id}/reviews [get]
func (c *CatalogController) GetProfessorReviews(ctx *gin.Context) {
	reviews, err := c.reviews.ListByProfessor(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(reviews), ""))
}

// GetProfessorCourses lists the courses a review can be written for
// @Summary List professor courses
// @Description Courses of every department the professor is linked to, ordered by code
// @Tags professors
// @Produce json
// @Param id path string true "Professor ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseListResponse} "Courses"
// @Router /professors/{id}/courses [get]
func (c *CatalogController) GetProfessorCourses(ctx *gin.Context) {
	courses, err := c.reviews.CoursesForProfessor(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(courses), ""))
}

// SearchCourses finds courses by code or name
// @Summary Search courses
// @Tags courses
// @Produce json
// @Param search query string false "Code or name fragment"
// @Success 200 {object} dto.APIResponse{data=dto.CourseListResponse} "Matching courses"
// @Router /courses [get]
func (c *CatalogController) SearchCourses(ctx *gin.Context) {
	courses, err := c.courses.Search(ctx.Request.Context(), ctx.Query("search"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(courses), ""))
}

// GetCourseProfile returns a course page
// @Summary Course profile
// @Description The course, its reviews newest first, and per-professor statistics
// @Tags courses
// @Produce json
// @Param code query string true "Exact course code, e.g. COMP 285"
// @Success 200 {object} dto.APIResponse{data=dto.CourseProfileResponse} "Course profile"
// @Failure 400 {object} dto.ErrorResponse "Missing code"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/profile [get]
func (c *CatalogController) GetCourseProfile(ctx *gin.Context) {
	code := ctx.Query("code")
	if code == "" {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("code", "Course code is required"))
		return
	}

	profile, err := c.courses.Profile(ctx.Request.Context(), code)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CourseProfileResponse{
		Course:     profile.Course,
		Reviews:    profile.Reviews,
		Professors: profile.Professors,
	}, ""))
}
