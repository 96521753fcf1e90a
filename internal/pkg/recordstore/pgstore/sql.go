package pgstore

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
)

var errUnfiltered = errors.New("refusing to modify a collection without filters")

// returning projects every affected row as a single JSON document
const returning = "RETURNING to_jsonb(t)"

// statement is a parameterized SQL statement ready for execution
type statement struct {
	sql  string
	args []any
}

// sb renders Postgres-style $n placeholders
var sb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func table(collection string) string {
	return pgx.Identifier{collection}.Sanitize() + " AS t"
}

func column(name string) string {
	return "t." + pgx.Identifier{name}.Sanitize()
}

func predicate(f recordstore.Filter) (squirrel.Sqlizer, error) {
	if f.Op != recordstore.OpOr && f.Column == "" {
		return nil, fmt.Errorf("filter without column (op %d)", f.Op)
	}

	switch f.Op {
	case recordstore.OpEq:
		// a nil value renders IS NULL
		return squirrel.Eq{column(f.Column): f.Value}, nil
	case recordstore.OpILike:
		return squirrel.ILike{column(f.Column): f.Value}, nil
	case recordstore.OpIn:
		// an empty list renders (1=0)
		return squirrel.Eq{column(f.Column): f.Values}, nil
	case recordstore.OpNotNull:
		return squirrel.NotEq{column(f.Column): nil}, nil
	case recordstore.OpOr:
		// no alternatives renders (1=0)
		alts := make(squirrel.Or, 0, len(f.Any))
		for _, alt := range f.Any {
			p, err := predicate(alt)
			if err != nil {
				return nil, err
			}
			alts = append(alts, p)
		}
		return alts, nil
	default:
		return nil, fmt.Errorf("unsupported filter op %d", f.Op)
	}
}

func predicates(filters []recordstore.Filter) ([]squirrel.Sqlizer, error) {
	out := make([]squirrel.Sqlizer, 0, len(filters))
	for _, f := range filters {
		p, err := predicate(f)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// render finishes a builder and wraps build errors with the statement kind
func render(kind string, b squirrel.Sqlizer) (statement, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return statement{}, fmt.Errorf("failed to build %s statement: %w", kind, err)
	}
	return statement{sql: sql, args: args}, nil
}

func buildSelect(collection string, q recordstore.Query) (statement, error) {
	preds, err := predicates(q.Filters)
	if err != nil {
		return statement{}, err
	}

	query := sb.Select("to_jsonb(t)").From(table(collection))
	for _, p := range preds {
		query = query.Where(p)
	}
	for _, o := range q.Order {
		key := column(o.Column)
		if o.Desc {
			key += " DESC"
		}
		query = query.OrderBy(key)
	}
	if q.Limit > 0 {
		query = query.Limit(uint64(q.Limit))
	}
	return render("select", query)
}

func buildCount(collection string, filters []recordstore.Filter) (statement, error) {
	preds, err := predicates(filters)
	if err != nil {
		return statement{}, err
	}
	query := sb.Select("count(*)").From(table(collection))
	for _, p := range preds {
		query = query.Where(p)
	}
	return render("count", query)
}

// columnsOf returns the sorted union of keys across rows
func columnsOf(rows []recordstore.Row) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func buildInsert(collection string, rows []recordstore.Row, upsert *recordstore.UpsertOptions) (statement, error) {
	if len(rows) == 0 {
		return statement{}, errors.New("no rows to insert")
	}

	cols := columnsOf(rows)
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}

	query := sb.Insert(table(collection)).Columns(quoted...)
	for _, r := range rows {
		values := make([]any, len(cols))
		for j, c := range cols {
			v, ok := r[c]
			if !ok {
				values[j] = squirrel.Expr("DEFAULT")
				continue
			}
			values[j] = v
		}
		query = query.Values(values...)
	}

	if upsert != nil {
		if len(upsert.ConflictKey) == 0 {
			return statement{}, errors.New("upsert requires a conflict key")
		}
		query = query.Suffix(onConflict(cols, *upsert))
	}

	return render("insert", query.Suffix(returning))
}

func onConflict(cols []string, upsert recordstore.UpsertOptions) string {
	isKey := make(map[string]bool, len(upsert.ConflictKey))
	key := ""
	for i, c := range upsert.ConflictKey {
		if i > 0 {
			key += ", "
		}
		key += pgx.Identifier{c}.Sanitize()
		isKey[c] = true
	}
	clause := "ON CONFLICT (" + key + ")"

	sets := ""
	if !upsert.IgnoreDuplicates {
		for _, c := range cols {
			if isKey[c] {
				continue
			}
			if sets != "" {
				sets += ", "
			}
			q := pgx.Identifier{c}.Sanitize()
			sets += q + " = EXCLUDED." + q
		}
	}
	if sets == "" {
		return clause + " DO NOTHING"
	}
	return clause + " DO UPDATE SET " + sets
}

func buildUpdate(collection string, patch recordstore.Row, filters []recordstore.Filter) (statement, error) {
	if len(patch) == 0 {
		return statement{}, errors.New("empty update")
	}
	if len(filters) == 0 {
		return statement{}, errUnfiltered
	}
	preds, err := predicates(filters)
	if err != nil {
		return statement{}, err
	}

	query := sb.Update(table(collection))
	for _, c := range columnsOf([]recordstore.Row{patch}) {
		query = query.Set(pgx.Identifier{c}.Sanitize(), patch[c])
	}
	for _, p := range preds {
		query = query.Where(p)
	}
	return render("update", query.Suffix(returning))
}

func buildDelete(collection string, filters []recordstore.Filter) (statement, error) {
	if len(filters) == 0 {
		return statement{}, errUnfiltered
	}
	preds, err := predicates(filters)
	if err != nil {
		return statement{}, err
	}

	query := sb.Delete(table(collection))
	for _, p := range preds {
		query = query.Where(p)
	}
	return render("delete", query.Suffix(returning))
}
