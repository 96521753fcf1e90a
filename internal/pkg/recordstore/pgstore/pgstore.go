// Package pgstore implements recordstore.Store on PostgreSQL through pgx.
package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/aggiereview/aggiereview/internal/pkg/dberrors"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
)

// Querier is the subset of *pgxpool.Pool and pgx.Tx the store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists rows in PostgreSQL tables named after their collections.
type Store struct {
	db     Querier
	logger zerolog.Logger
}

var _ recordstore.Store = (*Store)(nil)

// New creates a PostgreSQL backed record store
func New(db Querier, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "pgstore").Logger(),
	}
}

// classify maps driver errors onto the recordstore error kinds
func classify(err error) error {
	if dberrors.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", recordstore.ErrConflict, dberrors.ConstraintName(err))
	}
	// a malformed id or a dangling reference names a record that cannot exist
	if dberrors.IsInvalidTextRepresentation(err) || dberrors.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: %s", recordstore.ErrNotFound, err.Error())
	}
	return fmt.Errorf("%w: %w", recordstore.ErrTransient, err)
}

func (s *Store) queryRows(ctx context.Context, st statement) ([]recordstore.Row, error) {
	s.logger.Debug().Str("sql", st.sql).Int("args", len(st.args)).Msg("Executing statement")

	rows, err := s.db.Query(ctx, st.sql, st.args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []recordstore.Row
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, classify(err)
		}
		row := recordstore.Row{}
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("failed to decode row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// Find returns all rows of collection matching q
func (s *Store) Find(ctx context.Context, collection string, q recordstore.Query) ([]recordstore.Row, error) {
	st, err := buildSelect(collection, q)
	if err != nil {
		return nil, err
	}
	return s.queryRows(ctx, st)
}

// FindOne returns the first matching row or recordstore.ErrNotFound
func (s *Store) FindOne(ctx context.Context, collection string, filters ...recordstore.Filter) (recordstore.Row, error) {
	rows, err := s.Find(ctx, collection, recordstore.Query{Filters: filters, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, recordstore.ErrNotFound
	}
	return rows[0], nil
}

// Insert writes rows in a single statement and returns them as stored
func (s *Store) Insert(ctx context.Context, collection string, rows ...recordstore.Row) ([]recordstore.Row, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	st, err := buildInsert(collection, rows, nil)
	if err != nil {
		return nil, err
	}
	return s.queryRows(ctx, st)
}

// Upsert inserts rows, resolving conflicts on opts.ConflictKey
func (s *Store) Upsert(ctx context.Context, collection string, rows []recordstore.Row, opts recordstore.UpsertOptions) (recordstore.UpsertResult, error) {
	if len(rows) == 0 {
		return recordstore.UpsertResult{}, nil
	}
	st, err := buildInsert(collection, rows, &opts)
	if err != nil {
		return recordstore.UpsertResult{}, err
	}
	written, err := s.queryRows(ctx, st)
	if err != nil {
		return recordstore.UpsertResult{}, err
	}
	return recordstore.UpsertResult{
		Rows:     written,
		Inserted: len(written),
		Skipped:  len(rows) - len(written),
	}, nil
}

// Update applies patch to every matching row
func (s *Store) Update(ctx context.Context, collection string, patch recordstore.Row, filters ...recordstore.Filter) ([]recordstore.Row, error) {
	st, err := buildUpdate(collection, patch, filters)
	if err != nil {
		return nil, err
	}
	return s.queryRows(ctx, st)
}

// Delete removes every matching row and returns the removed rows
func (s *Store) Delete(ctx context.Context, collection string, filters ...recordstore.Filter) ([]recordstore.Row, error) {
	st, err := buildDelete(collection, filters)
	if err != nil {
		return nil, err
	}
	return s.queryRows(ctx, st)
}

// Count returns the number of matching rows
func (s *Store) Count(ctx context.Context, collection string, filters ...recordstore.Filter) (int64, error) {
	st, err := buildCount(collection, filters)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.QueryRow(ctx, st.sql, st.args...).Scan(&n); err != nil {
		return 0, classify(err)
	}
	return n, nil
}
