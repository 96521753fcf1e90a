// Package memstore is an in-process recordstore.Store. It backs importer dry runs
// and the service tests, and mirrors the PostgreSQL store's observable behavior:
// generated ids and timestamps, unique keys, conflict errors and NULL ordering.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
)

// Operation names passed to a FaultFunc.
const (
	OpFind   = "find"
	OpInsert = "insert"
	OpUpsert = "upsert"
	OpUpdate = "update"
	OpDelete = "delete"
	OpCount  = "count"
)

// FaultFunc lets callers inject failures. A non-nil return aborts the operation
// with that error before any state changes.
type FaultFunc func(op, collection string, rows []recordstore.Row) error

// Option configures a Store.
type Option func(*Store)

// WithUniqueKey declares a unique constraint on collection.
func WithUniqueKey(collection string, columns ...string) Option {
	return func(s *Store) {
		s.unique[collection] = append(s.unique[collection], columns)
	}
}

// WithClock replaces time.Now for generated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store keeps collections in memory.
type Store struct {
	mu      sync.RWMutex
	data    map[string][]recordstore.Row
	unique  map[string][][]string
	now     func() time.Time
	last    time.Time
	fault   FaultFunc
	counter map[string]int
}

var _ recordstore.Store = (*Store)(nil)

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{
		data:    make(map[string][]recordstore.Row),
		unique:  make(map[string][][]string),
		now:     time.Now,
		counter: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetFault installs (or clears, with nil) a fault injection hook.
func (s *Store) SetFault(fn FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

// Calls reports how many times op ran against collection, including failed calls.
func (s *Store) Calls(op, collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counter[op+":"+collection]
}

func (s *Store) enter(op, collection string, rows []recordstore.Row) error {
	s.counter[op+":"+collection]++
	if s.fault != nil {
		if err := s.fault(op, collection, rows); err != nil {
			return err
		}
	}
	return nil
}

// timestamp returns a strictly increasing UTC time so creation order is total
func (s *Store) timestamp() string {
	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t.Format(time.RFC3339Nano)
}

// normalize converts a value to the shape it has after a JSON round trip, which is
// how rows come back from PostgreSQL's to_jsonb.
func normalize(v any) any {
	switch tv := v.(type) {
	case nil:
		return nil
	case time.Time:
		return tv.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if tv == nil {
			return nil
		}
		return tv.UTC().Format(time.RFC3339Nano)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Sprint(v)
	}
	return out
}

func normalizeRow(r recordstore.Row) recordstore.Row {
	out := make(recordstore.Row, len(r))
	for k, v := range r {
		out[k] = normalize(v)
	}
	return out
}

func copyRow(r recordstore.Row) recordstore.Row {
	out := make(recordstore.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

var likeCache sync.Map

// likeRegexp translates a LIKE pattern into an anchored case-insensitive regexp
func likeRegexp(pattern string) *regexp.Regexp {
	if re, ok := likeCache.Load(pattern); ok {
		return re.(*regexp.Regexp)
	}
	var sb strings.Builder
	sb.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	re := regexp.MustCompile(sb.String())
	likeCache.Store(pattern, re)
	return re
}

func matches(row recordstore.Row, f recordstore.Filter) bool {
	switch f.Op {
	case recordstore.OpEq:
		return equal(row[f.Column], normalize(f.Value))
	case recordstore.OpILike:
		s, ok := row[f.Column].(string)
		pattern, _ := f.Value.(string)
		return ok && likeRegexp(pattern).MatchString(s)
	case recordstore.OpIn:
		v := row[f.Column]
		if v == nil {
			return false
		}
		for _, candidate := range f.Values {
			if equal(v, normalize(candidate)) {
				return true
			}
		}
		return false
	case recordstore.OpNotNull:
		return row[f.Column] != nil
	case recordstore.OpOr:
		for _, alt := range f.Any {
			if matches(row, alt) {
				return true
			}
		}
		return false
	}
	return false
}

func matchesAll(row recordstore.Row, filters []recordstore.Filter) bool {
	for _, f := range filters {
		if !matches(row, f) {
			return false
		}
	}
	return true
}

// compare orders two column values; NULLs sort after everything else
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	if fa, ok := a.(float64); ok {
		if fb, ok := b.(float64); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}

	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	if ta, err := time.Parse(time.RFC3339Nano, sa); err == nil {
		if tb, err := time.Parse(time.RFC3339Nano, sb); err == nil {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(sa, sb)
}

func sortRows(rows []recordstore.Row, orders []recordstore.Order) {
	if len(orders) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range orders {
			a, b := rows[i][o.Column], rows[j][o.Column]
			c := compare(a, b)
			if c == 0 {
				continue
			}
			if o.Desc {
				// PostgreSQL puts NULLs first for DESC, which is the exact reverse.
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func keyOf(row recordstore.Row, columns []string) (string, bool) {
	parts := make([]string, len(columns))
	for i, c := range columns {
		v := row[c]
		if v == nil {
			// NULLs never collide in a unique index
			return "", false
		}
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, "\x00"), true
}

// conflicts reports whether candidate collides with any row in existing on a unique key
func (s *Store) conflicts(collection string, existing []recordstore.Row, candidate recordstore.Row, skip int) (string, bool) {
	for _, cols := range s.unique[collection] {
		key, ok := keyOf(candidate, cols)
		if !ok {
			continue
		}
		for i, row := range existing {
			if i == skip {
				continue
			}
			if other, ok := keyOf(row, cols); ok && other == key {
				return collection + "_" + strings.Join(cols, "_") + "_key", true
			}
		}
	}
	return "", false
}

func (s *Store) prepare(row recordstore.Row) recordstore.Row {
	r := normalizeRow(row)
	if r["id"] == nil {
		r["id"] = uuid.NewString()
	}
	if r["created_at"] == nil {
		r["created_at"] = s.timestamp()
	}
	return r
}

// Find returns matching rows in the requested order
func (s *Store) Find(ctx context.Context, collection string, q recordstore.Query) ([]recordstore.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpFind, collection, nil); err != nil {
		return nil, err
	}

	var out []recordstore.Row
	for _, row := range s.data[collection] {
		if matchesAll(row, q.Filters) {
			out = append(out, copyRow(row))
		}
	}
	sortRows(out, q.Order)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// FindOne returns the first matching row in insertion order
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

// Insert adds rows atomically; any unique violation rejects the whole call
func (s *Store) Insert(ctx context.Context, collection string, rows ...recordstore.Row) ([]recordstore.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpInsert, collection, rows); err != nil {
		return nil, err
	}

	staged := append([]recordstore.Row(nil), s.data[collection]...)
	out := make([]recordstore.Row, 0, len(rows))
	for _, row := range rows {
		r := s.prepare(row)
		if name, clash := s.conflicts(collection, staged, r, -1); clash {
			return nil, fmt.Errorf("%w: %s", recordstore.ErrConflict, name)
		}
		staged = append(staged, r)
		out = append(out, copyRow(r))
	}
	s.data[collection] = staged
	return out, nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// Upsert inserts rows and resolves conflicts on opts.ConflictKey
func (s *Store) Upsert(ctx context.Context, collection string, rows []recordstore.Row, opts recordstore.UpsertOptions) (recordstore.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpUpsert, collection, rows); err != nil {
		return recordstore.UpsertResult{}, err
	}

	declared := false
	for _, cols := range s.unique[collection] {
		if sameColumns(cols, opts.ConflictKey) {
			declared = true
			break
		}
	}
	if !declared {
		return recordstore.UpsertResult{}, fmt.Errorf("%w: no unique constraint on %s(%s)",
			recordstore.ErrTransient, collection, strings.Join(opts.ConflictKey, ", "))
	}

	staged := make([]recordstore.Row, len(s.data[collection]))
	for i, r := range s.data[collection] {
		staged[i] = copyRow(r)
	}

	var result recordstore.UpsertResult
	for _, row := range rows {
		r := normalizeRow(row)
		key, hasKey := keyOf(r, opts.ConflictKey)

		existing := -1
		if hasKey {
			for i, cur := range staged {
				if k, ok := keyOf(cur, opts.ConflictKey); ok && k == key {
					existing = i
					break
				}
			}
		}

		if existing >= 0 {
			if opts.IgnoreDuplicates {
				result.Skipped++
				continue
			}
			merged := copyRow(staged[existing])
			for k, v := range r {
				merged[k] = v
			}
			if name, clash := s.conflicts(collection, staged, merged, existing); clash {
				return recordstore.UpsertResult{}, fmt.Errorf("%w: %s", recordstore.ErrConflict, name)
			}
			staged[existing] = merged
			result.Rows = append(result.Rows, copyRow(merged))
			result.Inserted++
			continue
		}

		r = s.prepare(r)
		if name, clash := s.conflicts(collection, staged, r, -1); clash {
			return recordstore.UpsertResult{}, fmt.Errorf("%w: %s", recordstore.ErrConflict, name)
		}
		staged = append(staged, r)
		result.Rows = append(result.Rows, copyRow(r))
		result.Inserted++
	}

	s.data[collection] = staged
	return result, nil
}

// Update applies patch to every matching row
func (s *Store) Update(ctx context.Context, collection string, patch recordstore.Row, filters ...recordstore.Filter) ([]recordstore.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpUpdate, collection, []recordstore.Row{patch}); err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return nil, fmt.Errorf("refusing to update %s without filters", collection)
	}

	p := normalizeRow(patch)
	staged := make([]recordstore.Row, len(s.data[collection]))
	copy(staged, s.data[collection])

	var out []recordstore.Row
	for i, row := range staged {
		if !matchesAll(row, filters) {
			continue
		}
		updated := copyRow(row)
		for k, v := range p {
			updated[k] = v
		}
		if name, clash := s.conflicts(collection, staged, updated, i); clash {
			return nil, fmt.Errorf("%w: %s", recordstore.ErrConflict, name)
		}
		staged[i] = updated
		out = append(out, copyRow(updated))
	}
	s.data[collection] = staged
	return out, nil
}

// Delete removes every matching row
func (s *Store) Delete(ctx context.Context, collection string, filters ...recordstore.Filter) ([]recordstore.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpDelete, collection, nil); err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return nil, fmt.Errorf("refusing to delete from %s without filters", collection)
	}

	var kept, removed []recordstore.Row
	for _, row := range s.data[collection] {
		if matchesAll(row, filters) {
			removed = append(removed, copyRow(row))
			continue
		}
		kept = append(kept, row)
	}
	s.data[collection] = kept
	return removed, nil
}

// Count returns the number of matching rows
func (s *Store) Count(ctx context.Context, collection string, filters ...recordstore.Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpCount, collection, nil); err != nil {
		return 0, err
	}

	var n int64
	for _, row := range s.data[collection] {
		if matchesAll(row, filters) {
			n++
		}
	}
	return n, nil
}
