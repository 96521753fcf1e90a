package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/pkg/apperrors"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
)

// ReviewRepository handles database operations for reviews
type ReviewRepository struct {
	store recordstore.Store
	now   func() time.Time
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(store recordstore.Store) *ReviewRepository {
	return &ReviewRepository{store: store, now: time.Now}
}

// Create inserts a review. A second review by the same user for the same
// professor and course fails with recordstore.ErrConflict. created_at comes from
// the store so newest-first listings follow insertion order.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	row := recordstore.Row{
		"professor_id":         review.ProfessorID,
		"course_id":            review.CourseID,
		"user_id":              review.UserID,
		"rating":               review.Rating,
		"difficulty":           review.Difficulty,
		"would_take_again":     review.WouldTakeAgain,
		"for_credit":           review.ForCredit,
		"attendance_mandatory": review.AttendanceMandatory,
		"grade_received":       review.GradeReceived,
		"comment":              review.Comment,
		"helpful_count":        0,
		"updated_at":           r.now().UTC(),
	}
	rows, err := r.store.Insert(ctx, recordstore.Reviews, row)
	if err != nil {
		return err
	}
	return recordstore.Decode(rows[0], review)
}

// GetByID retrieves a review by ID
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	row, err := r.store.FindOne(ctx, recordstore.Reviews, recordstore.Eq("id", id))
	if err != nil {
		return nil, notFound(err, apperrors.ErrReviewNotFound)
	}
	var review models.Review
	if err := recordstore.Decode(row, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// Delete removes a review
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	rows, err := r.store.Delete(ctx, recordstore.Reviews, recordstore.Eq("id", id))
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if len(rows) == 0 {
		return apperrors.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) list(ctx context.Context, filter recordstore.Filter) ([]models.Review, error) {
	rows, err := r.store.Find(ctx, recordstore.Reviews,
		recordstore.Where(filter).OrderBy(recordstore.Desc("created_at")))
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return recordstore.DecodeAll[models.Review](rows)
}

// ListByProfessor returns a professor's reviews, newest first
func (r *ReviewRepository) ListByProfessor(ctx context.Context, professorID string) ([]models.Review, error) {
	return r.list(ctx, recordstore.Eq("professor_id", professorID))
}

// ListByUser returns a user's reviews, newest first
func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]models.Review, error) {
	return r.list(ctx, recordstore.Eq("user_id", userID))
}

// ListByCourse returns a course's reviews, newest first
func (r *ReviewRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Review, error) {
	return r.list(ctx, recordstore.Eq("course_id", courseID))
}

// CountByUser returns how many reviews a user has written
func (r *ReviewRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	n, err := r.store.Count(ctx, recordstore.Reviews, recordstore.Eq("user_id", userID))
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return n, nil
}
