package recordstore

// Op is a filter operator.
type Op int

const (
	OpEq Op = iota
	OpILike
	OpIn
	OpNotNull
	OpOr
)

// Filter is a single predicate on a column. Or filters hold their alternatives in Any.
type Filter struct {
	Column string
	Op     Op
	Value  any
	Values []any
	Any    []Filter
}

// Eq matches rows whose column equals value. A nil value matches NULL.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// ILike matches rows whose column matches pattern case-insensitively, SQL LIKE syntax.
func ILike(column, pattern string) Filter {
	return Filter{Column: column, Op: OpILike, Value: pattern}
}

// In matches rows whose column equals any of values. An empty list matches nothing.
func In[T any](column string, values []T) Filter {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return Filter{Column: column, Op: OpIn, Values: vs}
}

// NotNull matches rows whose column is set.
func NotNull(column string) Filter {
	return Filter{Column: column, Op: OpNotNull}
}

// Or matches rows satisfying at least one of filters.
func Or(filters ...Filter) Filter {
	return Filter{Op: OpOr, Any: filters}
}

// Contains builds the %term% pattern used by search boxes.
func Contains(term string) string {
	return "%" + term + "%"
}

// Order sorts results by a column.
type Order struct {
	Column string
	Desc   bool
}

// Asc orders ascending by column.
func Asc(column string) Order { return Order{Column: column} }

// Desc orders descending by column.
func Desc(column string) Order { return Order{Column: column, Desc: true} }

// Query selects rows from a collection.
type Query struct {
	Filters []Filter
	Order   []Order
	Limit   int
}

// Where starts a query with the given filters.
func Where(filters ...Filter) Query {
	return Query{Filters: filters}
}

// OrderBy appends sort keys.
func (q Query) OrderBy(orders ...Order) Query {
	q.Order = append(q.Order, orders...)
	return q
}

// WithLimit caps the number of returned rows; zero means no cap.
func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}
