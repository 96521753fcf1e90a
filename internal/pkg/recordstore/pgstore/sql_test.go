package pgstore

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aggiereview/aggiereview/internal/pkg/apperrors"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
)

func TestBuildSelect(t *testing.T) {
	q := recordstore.Where(
		recordstore.Or(
			recordstore.ILike("code", "%comp%"),
			recordstore.ILike("name", "%comp%"),
		),
	).OrderBy(recordstore.Asc("code")).WithLimit(20)

	st, err := buildSelect(recordstore.Courses, q)
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT to_jsonb(t) FROM "courses" AS t WHERE (t."code" ILIKE $1 OR t."name" ILIKE $2) ORDER BY t."code" LIMIT 20`,
		st.sql)
	assert.Equal(t, []any{"%comp%", "%comp%"}, st.args)
}

func TestBuildSelect_NullAndIn(t *testing.T) {
	st, err := buildSelect(recordstore.Courses, recordstore.Where(
		recordstore.Eq("department_id", nil),
		recordstore.In("id", []string{"a", "b"}),
		recordstore.NotNull("name"),
	).OrderBy(recordstore.Desc("created_at")))
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT to_jsonb(t) FROM "courses" AS t WHERE t."department_id" IS NULL AND t."id" IN ($1,$2) AND t."name" IS NOT NULL ORDER BY t."created_at" DESC`,
		st.sql)
	assert.Equal(t, []any{"a", "b"}, st.args)
}

func TestBuildSelect_EmptyInMatchesNothing(t *testing.T) {
	st, err := buildSelect(recordstore.Courses, recordstore.Where(recordstore.In("department_id", []string{})))
	require.NoError(t, err)
	assert.Contains(t, st.sql, "WHERE (1=0)")
	assert.Empty(t, st.args)
}

func TestBuildInsert_FillsMissingColumnsWithDefault(t *testing.T) {
	st, err := buildInsert(recordstore.Courses, []recordstore.Row{
		{"code": "COMP 285", "name": "Data Structures"},
		{"code": "MATH 131", "department_id": "d1"},
	}, nil)
	require.NoError(t, err)

	assert.Contains(t, st.sql, `INSERT INTO "courses" AS t ("code","department_id","name")`)
	assert.Contains(t, st.sql, `VALUES ($1,DEFAULT,$2),($3,$4,DEFAULT)`)
	assert.True(t, strings.HasSuffix(st.sql, "RETURNING to_jsonb(t)"))
	assert.Equal(t, []any{"COMP 285", "Data Structures", "MATH 131", "d1"}, st.args)
}

func TestBuildInsert_UpsertIgnoreDuplicates(t *testing.T) {
	st, err := buildInsert(recordstore.Courses, []recordstore.Row{{"code": "COMP 285", "name": "DS"}},
		&recordstore.UpsertOptions{ConflictKey: []string{"code"}, IgnoreDuplicates: true})
	require.NoError(t, err)
	assert.Contains(t, st.sql, `ON CONFLICT ("code") DO NOTHING RETURNING to_jsonb(t)`)
	assert.Equal(t, []any{"COMP 285", "DS"}, st.args)
}

func TestBuildInsert_UpsertOverwrite(t *testing.T) {
	st, err := buildInsert(recordstore.Courses, []recordstore.Row{{"code": "COMP 285", "name": "DS"}},
		&recordstore.UpsertOptions{ConflictKey: []string{"code"}})
	require.NoError(t, err)
	assert.Contains(t, st.sql, `ON CONFLICT ("code") DO UPDATE SET "name" = EXCLUDED."name"`)
}

func TestBuildUpdate(t *testing.T) {
	st, err := buildUpdate(recordstore.Professors,
		recordstore.Row{"average_rating": 4.0, "total_reviews": 3},
		[]recordstore.Filter{recordstore.Eq("id", "p1")})
	require.NoError(t, err)

	assert.Equal(t,
		`UPDATE "professors" AS t SET "average_rating" = $1, "total_reviews" = $2 WHERE t."id" = $3 RETURNING to_jsonb(t)`,
		st.sql)
	assert.Equal(t, []any{4.0, 3, "p1"}, st.args)
}

func TestBuildUpdateAndDelete_RequireFilters(t *testing.T) {
	_, err := buildUpdate(recordstore.Professors, recordstore.Row{"title": "x"}, nil)
	assert.ErrorIs(t, err, errUnfiltered)

	_, err = buildDelete(recordstore.Reviews, nil)
	assert.ErrorIs(t, err, errUnfiltered)
}

func TestBuildCount(t *testing.T) {
	st, err := buildCount(recordstore.Reviews, []recordstore.Filter{recordstore.Eq("user_id", "u1")})
	require.NoError(t, err)
	assert.Equal(t, `SELECT count(*) FROM "reviews" AS t WHERE t."user_id" = $1`, st.sql)
}

func TestBuildSelect_EmptyOrMatchesNothing(t *testing.T) {
	st, err := buildSelect(recordstore.Courses, recordstore.Where(recordstore.Or()))
	require.NoError(t, err)
	assert.Contains(t, st.sql, "WHERE (1=0)")
}

func TestBuildSelect_RejectsFilterWithoutColumn(t *testing.T) {
	_, err := buildSelect(recordstore.Courses, recordstore.Where(recordstore.Eq("", "x")))
	assert.Error(t, err)
}

func TestBuildDelete(t *testing.T) {
	st, err := buildDelete(recordstore.Reviews, []recordstore.Filter{recordstore.Eq("id", "r1")})
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "reviews" AS t WHERE t."id" = $1 RETURNING to_jsonb(t)`, st.sql)
	assert.Equal(t, []any{"r1"}, st.args)
}

func TestClassify(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "reviews_user_professor_course_key"}
	err := classify(dup)
	assert.ErrorIs(t, err, recordstore.ErrConflict)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	for _, code := range []string{"22P02", "23503"} {
		err = classify(fmt.Errorf("query: %w", &pgconn.PgError{Code: code}))
		assert.ErrorIs(t, err, recordstore.ErrNotFound, code)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound, code)
		assert.NotErrorIs(t, err, recordstore.ErrTransient, code)
	}

	err = classify(errors.New("connection reset"))
	assert.ErrorIs(t, err, recordstore.ErrTransient)
	assert.NotErrorIs(t, err, recordstore.ErrConflict)
}
