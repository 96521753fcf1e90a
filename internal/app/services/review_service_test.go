package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/pkg/apperrors"
	"github.com/aggiereview/aggiereview/internal/pkg/cache"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore/memstore"
	"github.com/aggiereview/aggiereview/internal/pkg/validation"
)

func TestSubmit_RecomputesAggregates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inputs := []struct {
		user       string
		rating     int
		difficulty int
		again      bool
	}{
		{"u1", 4, 2, true},
		{"u2", 5, 3, true},
		{"u3", 3, 2, false},
	}
	for _, in := range inputs {
		_, err := f.services.Review.Submit(ctx, in.user, validReview(f, in.rating, in.difficulty, in.again))
		require.NoError(t, err)
	}

	p := f.reloadProfessor(t)
	assert.Equal(t, 4.0, p.AverageRating)
	assert.Equal(t, 2.3, p.DifficultyRating)
	assert.Equal(t, 67, p.WouldTakeAgainPercent)
	assert.Equal(t, 3, p.TotalReviews)
}

func TestSubmit_DuplicateSkipsRecompute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Review.Submit(ctx, "u1", validReview(f, 5, 1, true))
	require.NoError(t, err)
	updates := f.store.Calls(memstore.OpUpdate, recordstore.Professors)

	_, err = f.services.Review.Submit(ctx, "u1", validReview(f, 1, 5, false))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateReview)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, "You have already reviewed this professor for this course", err.Error())

	assert.Equal(t, updates, f.store.Calls(memstore.OpUpdate, recordstore.Professors))
	p := f.reloadProfessor(t)
	assert.Equal(t, 5.0, p.AverageRating)
	assert.Equal(t, 1, p.TotalReviews)
}

func TestSubmit_SameProfessorOtherCourseIsAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Review.Submit(ctx, "u1", validReview(f, 5, 1, true))
	require.NoError(t, err)

	other := validReview(f, 3, 3, false)
	other.CourseID = f.course2.ID
	_, err = f.services.Review.Submit(ctx, "u1", other)
	require.NoError(t, err)

	assert.Equal(t, 2, f.reloadProfessor(t).TotalReviews)
}

func TestSubmit_ValidationHappensBeforeStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	badGrade := models.Grade("Z")

	tests := []struct {
		name   string
		mutate func(*NewReview)
		msg    string
	}{
		{"rating unset", func(r *NewReview) { r.Rating = 0 }, validation.MsgReviewIncomplete},
		{"difficulty unset", func(r *NewReview) { r.Difficulty = 0 }, validation.MsgReviewIncomplete},
		{"rating out of range", func(r *NewReview) { r.Rating = 7 }, "rating must be between 1 and 5"},
		{"no course", func(r *NewReview) { r.CourseID = "" }, validation.MsgReviewIncomplete},
		{"no professor", func(r *NewReview) { r.ProfessorID = "" }, validation.MsgProfessorMissing},
		{"short comment", func(r *NewReview) { r.Comment = "Too short" }, validation.MsgReviewIncomplete},
		{"unknown grade", func(r *NewReview) { r.GradeReceived = &badGrade }, "Grade must be one of: " + models.GradeNames()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validReview(f, 4, 2, true)
			tt.mutate(&in)
			_, err := f.services.Review.Submit(ctx, "u1", in)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
	assert.Zero(t, f.store.Calls(memstore.OpInsert, recordstore.Reviews))
}

func TestSubmit_RequiresUserAndProfessor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Review.Submit(ctx, "", validReview(f, 4, 2, true))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	in := validReview(f, 4, 2, true)
	in.ProfessorID = "missing"
	_, err = f.services.Review.Submit(ctx, "u1", in)
	assert.ErrorIs(t, err, apperrors.ErrProfessorNotFound)
}

func TestSubmit_UnknownCourseIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validReview(f, 4, 2, true)
	in.CourseID = "00000000-0000-0000-0000-000000000000"
	review, err := f.services.Review.Submit(ctx, "u1", in)
	require.Error(t, err)
	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.Equal(t, "course not found", err.Error())

	assert.Zero(t, f.store.Calls(memstore.OpInsert, recordstore.Reviews))
	assert.Zero(t, f.reloadProfessor(t).TotalReviews)
}

func TestSubmit_StoreFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("connection reset")
	f.store.SetFault(func(op, collection string, _ []recordstore.Row) error {
		if op == memstore.OpInsert && collection == recordstore.Reviews {
			return boom
		}
		return nil
	})

	_, err := f.services.Review.Submit(context.Background(), "u1", validReview(f, 4, 2, true))
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, f.reloadProfessor(t).TotalReviews)
}

func TestDelete_LastReviewResetsAggregates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	review, err := f.services.Review.Submit(ctx, "u1", validReview(f, 5, 4, true))
	require.NoError(t, err)
	require.Equal(t, 1, f.reloadProfessor(t).TotalReviews)

	require.NoError(t, f.services.Review.Delete(ctx, "u1", review.ID))

	p := f.reloadProfessor(t)
	assert.Zero(t, p.AverageRating)
	assert.Zero(t, p.DifficultyRating)
	assert.Zero(t, p.WouldTakeAgainPercent)
	assert.Zero(t, p.TotalReviews)
}

func TestDelete_OnlyOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	review, err := f.services.Review.Submit(ctx, "u1", validReview(f, 5, 4, true))
	require.NoError(t, err)

	err = f.services.Review.Delete(ctx, "u2", review.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Equal(t, 1, f.reloadProfessor(t).TotalReviews)

	err = f.services.Review.Delete(ctx, "u1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrReviewNotFound)
}

func TestSubmit_InvalidatesProfessorSearchCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Professor.Search(ctx, "bryant")
	require.NoError(t, err)
	require.Contains(t, f.cache.values, cache.SearchKey(cache.ProfessorSearchPrefix, "bryant"))

	_, err = f.services.Review.Submit(ctx, "u1", validReview(f, 5, 4, true))
	require.NoError(t, err)
	assert.NotContains(t, f.cache.values, cache.SearchKey(cache.ProfessorSearchPrefix, "bryant"))

	found, err := f.services.Professor.Search(ctx, "bryant")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].TotalReviews)
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.createProfile(t, "jdoe@aggies.ncat.edu")

	first, err := f.services.Review.Submit(ctx, author.ID, validReview(f, 4, 2, true))
	require.NoError(t, err)
	second := validReview(f, 2, 5, false)
	second.CourseID = f.course2.ID
	latest, err := f.services.Review.Submit(ctx, author.ID, second)
	require.NoError(t, err)

	mine, err := f.services.Review.ListByUser(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, latest.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
	require.NotNil(t, mine[0].Professor)
	require.NotNil(t, mine[0].Professor.Department)
	assert.Equal(t, "Computer Science", mine[0].Professor.Department.Name)
	require.NotNil(t, mine[0].Course)
	assert.Equal(t, "COMP 167", mine[0].Course.Code)

	byProfessor, err := f.services.Review.ListByProfessor(ctx, f.professor.ID)
	require.NoError(t, err)
	require.Len(t, byProfessor, 2)
	assert.Equal(t, author.FullName, byProfessor[0].AuthorName)
	assert.Equal(t, "COMP 167", byProfessor[0].Course.Code)

	count, err := f.services.Review.CountByUser(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = f.services.Review.ListByProfessor(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestCoursesForProfessor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	courses, err := f.services.Review.CoursesForProfessor(ctx, f.professor.ID)
	require.NoError(t, err)
	assert.Empty(t, courses)

	_, err = f.repos.ProfessorDepartmentRepository.InsertBatch(ctx, []models.ProfessorDepartment{
		{ProfessorID: f.professor.ID, DepartmentID: f.dept.ID},
	})
	require.NoError(t, err)

	courses, err = f.services.Review.CoursesForProfessor(ctx, f.professor.ID)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "COMP 167", courses[0].Code)
	assert.Equal(t, "COMP 285", courses[1].Code)
}
