package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/app/repositories"
	"github.com/aggiereview/aggiereview/internal/pkg/apperrors"
	"github.com/aggiereview/aggiereview/internal/pkg/cache"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
	"github.com/aggiereview/aggiereview/internal/pkg/validation"
)

// ErrDuplicateReview is returned when a user reviews the same professor for the
// same course twice.
var ErrDuplicateReview = apperrors.NewConflictError("You have already reviewed this professor for this course")

// NewReview is the input of a review submission
type NewReview struct {
	ProfessorID         string
	CourseID            string
	Rating              int
	Difficulty          int
	WouldTakeAgain      bool
	ForCredit           bool
	AttendanceMandatory bool
	GradeReceived       *models.Grade
	Comment             string
}

// ReviewService handles review submission, deletion and listings
type ReviewService struct {
	reviews     *repositories.ReviewRepository
	professors  *repositories.ProfessorRepository
	courses     *repositories.CourseRepository
	departments *repositories.DepartmentRepository
	links       *repositories.ProfessorDepartmentRepository
	profiles    *repositories.ProfileRepository
	recomputer  *AggregateRecomputer
	cache       cache.Cache
	logger      zerolog.Logger
}

// NewReviewService creates a new review service instance
func NewReviewService(repos *repositories.Repositories, recomputer *AggregateRecomputer, c cache.Cache, logger zerolog.Logger) *ReviewService {
	return &ReviewService{
		reviews:     repos.ReviewRepository,
		professors:  repos.ProfessorRepository,
		courses:     repos.CourseRepository,
		departments: repos.DepartmentRepository,
		links:       repos.ProfessorDepartmentRepository,
		profiles:    repos.ProfileRepository,
		recomputer:  recomputer,
		cache:       c,
		logger:      logger,
	}
}

// validateReview runs every field check before the store is touched
func validateReview(in NewReview) error {
	if strings.TrimSpace(in.ProfessorID) == "" {
		return apperrors.NewValidationError("professor_id", validation.MsgProfessorMissing)
	}
	if err := validation.ValidateScore("rating", in.Rating); err != nil {
		return err
	}
	if err := validation.ValidateScore("difficulty", in.Difficulty); err != nil {
		return err
	}
	if strings.TrimSpace(in.CourseID) == "" {
		return apperrors.NewValidationError("course_id", validation.MsgReviewIncomplete)
	}
	if err := validation.ValidateComment(in.Comment); err != nil {
		return err
	}
	if in.GradeReceived != nil && !in.GradeReceived.Valid() {
		return apperrors.NewValidationError("grade_received", "Grade must be one of: "+models.GradeNames())
	}
	return nil
}

// Submit stores a review and refreshes the professor's aggregates. A duplicate
// submission returns ErrDuplicateReview and leaves the aggregates untouched.
func (s *ReviewService) Submit(ctx context.Context, userID string, in NewReview) (*models.Review, error) {
	if userID == "" {
		return nil, apperrors.NewForbiddenError("You must be signed in to submit a review")
	}
	if err := validateReview(in); err != nil {
		return nil, err
	}

	if _, err := s.professors.GetByID(ctx, in.ProfessorID); err != nil {
		return nil, err
	}
	if _, err := s.courses.GetByID(ctx, in.CourseID); err != nil {
		return nil, err
	}

	review := &models.Review{
		ProfessorID:         in.ProfessorID,
		CourseID:            in.CourseID,
		UserID:              userID,
		Rating:              in.Rating,
		Difficulty:          in.Difficulty,
		WouldTakeAgain:      in.WouldTakeAgain,
		ForCredit:           in.ForCredit,
		AttendanceMandatory: in.AttendanceMandatory,
		GradeReceived:       in.GradeReceived,
		Comment:             in.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, recordstore.ErrConflict) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}

	s.logger.Info().
		Str("reviewID", review.ID).
		Str("professorID", review.ProfessorID).
		Str("courseID", review.CourseID).
		Msg("Review submitted")

	if _, err := s.recomputer.Recompute(ctx, review.ProfessorID); err != nil {
		return nil, err
	}
	s.invalidateSearch(ctx)
	return review, nil
}

// Delete removes one of the user's own reviews and refreshes the aggregates
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID string) error {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return apperrors.NewForbiddenError("You can only delete your own reviews")
	}

	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return err
	}
	s.logger.Info().Str("reviewID", reviewID).Str("professorID", review.ProfessorID).Msg("Review deleted")

	if _, err := s.recomputer.Recompute(ctx, review.ProfessorID); err != nil {
		return err
	}
	s.invalidateSearch(ctx)
	return nil
}

// invalidateSearch drops cached professor searches, which embed aggregates
func (s *ReviewService) invalidateSearch(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, cache.ProfessorSearchPrefix); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to invalidate professor search cache")
	}
}

// ListByUser returns the user's reviews, newest first, with professor and course attached
func (s *ReviewService) ListByUser(ctx context.Context, userID string) ([]models.Review, error) {
	reviews, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachProfessors(ctx, reviews); err != nil {
		return nil, err
	}
	if err := s.attachCourses(ctx, reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListByProfessor returns a professor's reviews, newest first, with course and author name
func (s *ReviewService) ListByProfessor(ctx context.Context, professorID string) ([]models.Review, error) {
	if _, err := s.professors.GetByID(ctx, professorID); err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByProfessor(ctx, professorID)
	if err != nil {
		return nil, err
	}
	if err := s.attachCourses(ctx, reviews); err != nil {
		return nil, err
	}

	userIDs := make([]string, len(reviews))
	for i, r := range reviews {
		userIDs[i] = r.UserID
	}
	names, err := s.profiles.GetNames(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	for i := range reviews {
		reviews[i].AuthorName = names[reviews[i].UserID]
	}
	return reviews, nil
}

// CountByUser returns how many reviews the user has written
func (s *ReviewService) CountByUser(ctx context.Context, userID string) (int64, error) {
	return s.reviews.CountByUser(ctx, userID)
}

// CoursesForProfessor lists the courses of every department the professor is
// linked to, ordered by code. A professor without links has no courses to pick.
func (s *ReviewService) CoursesForProfessor(ctx context.Context, professorID string) ([]models.Course, error) {
	departmentIDs, err := s.links.DepartmentIDs(ctx, professorID)
	if err != nil {
		return nil, err
	}
	return s.courses.GetByDepartments(ctx, departmentIDs)
}

func (s *ReviewService) attachProfessors(ctx context.Context, reviews []models.Review) error {
	ids := make([]string, len(reviews))
	for i, r := range reviews {
		ids[i] = r.ProfessorID
	}
	professors, err := s.professors.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	var departmentIDs []string
	for _, p := range professors {
		if p.DepartmentID != nil {
			departmentIDs = append(departmentIDs, *p.DepartmentID)
		}
	}
	departments, err := s.departments.GetByIDs(ctx, departmentIDs)
	if err != nil {
		return err
	}

	for i := range reviews {
		p, ok := professors[reviews[i].ProfessorID]
		if !ok {
			continue
		}
		if p.DepartmentID != nil {
			if d, ok := departments[*p.DepartmentID]; ok {
				p.Department = &d
			}
		}
		reviews[i].Professor = &p
	}
	return nil
}

func (s *ReviewService) attachCourses(ctx context.Context, reviews []models.Review) error {
	ids := make([]string, len(reviews))
	for i, r := range reviews {
		ids[i] = r.CourseID
	}
	courses, err := s.courses.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range reviews {
		if c, ok := courses[reviews[i].CourseID]; ok {
			reviews[i].Course = &c
		}
	}
	return nil
}
