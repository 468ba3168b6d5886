// Package repository provides storage-agnostic query options and the generic
// store contract used by persistence adapters.
package repository

import "fmt"

// Option applies a modification to a Query.
type Option func(Query) Query

// Query holds conditions, ordering and pagination for store lookups.
type Query struct {
	conditions []Condition
	orders     []Order
	limit      int
	offset     int
}

// Build creates a Query from options.
func Build(options ...Option) Query {
	q := Query{}
	for _, opt := range options {
		q = opt(q)
	}
	return q
}

// Conditions returns the query conditions.
func (q Query) Conditions() []Condition {
	out := make([]Condition, len(q.conditions))
	copy(out, q.conditions)
	return out
}

// Orders returns the ordering specifications.
func (q Query) Orders() []Order {
	out := make([]Order, len(q.orders))
	copy(out, q.orders)
	return out
}

// Limit returns the result limit; 0 means unlimited.
func (q Query) Limit() int { return q.limit }

// Offset returns the result offset.
func (q Query) Offset() int { return q.offset }

// Condition is an equality or IN filter on one column.
type Condition struct {
	field string
	value any
	in    bool
}

// Field returns the column name.
func (c Condition) Field() string { return c.field }

// Value returns the compared value.
func (c Condition) Value() any { return c.value }

// In reports whether Value is a slice for an IN filter.
func (c Condition) In() bool { return c.in }

// String returns a readable representation.
func (c Condition) String() string {
	if c.in {
		return fmt.Sprintf("%s IN %v", c.field, c.value)
	}
	return fmt.Sprintf("%s = %v", c.field, c.value)
}

// Order is a sort specification.
type Order struct {
	field     string
	ascending bool
}

// Field returns the column name.
func (o Order) Field() string { return o.field }

// Ascending reports the sort direction.
func (o Order) Ascending() bool { return o.ascending }

// WithCondition adds a field = value filter. Domain packages build typed
// options on top of it.
func WithCondition(field string, value any) Option {
	return func(q Query) Query {
		q.conditions = append(q.conditions, Condition{field: field, value: value})
		return q
	}
}

// WithConditionIn adds a field IN (values) filter.
func WithConditionIn(field string, values any) Option {
	return func(q Query) Query {
		q.conditions = append(q.conditions, Condition{field: field, value: values, in: true})
		return q
	}
}

// WithID filters by the "id" column.
func WithID(id int64) Option {
	return WithCondition("id", id)
}

// WithLimit sets the maximum number of results.
func WithLimit(n int) Option {
	return func(q Query) Query {
		q.limit = n
		return q
	}
}

// WithOffset sets the result offset.
func WithOffset(n int) Option {
	return func(q Query) Query {
		q.offset = n
		return q
	}
}

// WithOrderAsc orders ascending by field.
func WithOrderAsc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field, ascending: true})
		return q
	}
}

// WithOrderDesc orders descending by field.
func WithOrderDesc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field})
		return q
	}
}

// WithPagination returns the limit and offset options for one page. Pages
// are numbered from 1.
func WithPagination(page, pageSize int) []Option {
	if page < 1 {
		page = 1
	}
	return []Option{WithLimit(pageSize), WithOffset((page - 1) * pageSize)}
}
