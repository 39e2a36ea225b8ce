package backend

import (
	"context"
	"strings"
)

// Request is a fully built query handed to a driver.
type Request struct {
	Table   string
	Select  Selection
	Filters []Filter
	// Limit caps the result size; zero means no limit.
	Limit int
}

// Columns returns every column the request references on the base table,
// excluding embedded relations and dotted filter columns.
func (r *Request) Columns() []string {
	seen := make(map[string]bool)
	var cols []string
	add := func(c string) {
		if c == "" || c == "*" || strings.Contains(c, ".") || seen[c] {
			return
		}
		seen[c] = true
		cols = append(cols, c)
	}
	for _, c := range r.Select.Columns {
		add(c)
	}
	for _, f := range r.Filters {
		for _, c := range f.Conditions {
			add(c.Column)
		}
	}
	return cols
}

// Embed returns the selected embed named name, if any.
func (r *Request) Embed(name string) (Embed, bool) {
	for _, e := range r.Select.Embeds {
		if e.Name == name {
			return e, true
		}
	}
	return Embed{}, false
}

// Query is a fluent request builder. Builder errors are reported by
// Execute.
type Query struct {
	driver Driver
	req    Request
	err    error
}

// Select sets the column list, e.g. "*,categories!inner(name,slug)".
func (q *Query) Select(columns string) *Query {
	sel, err := ParseSelect(columns)
	if err != nil {
		q.setErr(err)
		return q
	}
	q.req.Select = sel
	return q
}

// Eq adds column = value.
func (q *Query) Eq(column, value string) *Query {
	q.req.Filters = append(q.req.Filters, Filter{
		Conditions: []Condition{{Column: column, Op: OpEq, Value: value}},
	})
	return q
}

// In adds column IN values.
func (q *Query) In(column string, values []string) *Query {
	q.req.Filters = append(q.req.Filters, Filter{
		Conditions: []Condition{{Column: column, Op: OpIn, Values: append([]string(nil), values...)}},
	})
	return q
}

// ILike adds a case-insensitive pattern match; % is the wildcard.
func (q *Query) ILike(column, pattern string) *Query {
	q.req.Filters = append(q.req.Filters, Filter{
		Conditions: []Condition{{Column: column, Op: OpILike, Value: pattern}},
	})
	return q
}

// Or adds a disjunction written as comma-joined column.op.value clauses.
func (q *Query) Or(expr string) *Query {
	conds, err := ParseOr(expr)
	if err != nil {
		q.setErr(err)
		return q
	}
	q.req.Filters = append(q.req.Filters, Filter{Conditions: conds, Any: true})
	return q
}

// Limit caps the number of rows.
func (q *Query) Limit(n int) *Query {
	if n < 0 {
		n = 0
	}
	q.req.Limit = n
	return q
}

// Request returns a copy of the built request.
func (q *Query) Request() Request {
	return q.req
}

// Execute runs the query.
func (q *Query) Execute(ctx context.Context) Response {
	if q.err != nil {
		return Response{Err: ParseError(q.err)}
	}
	req := q.req
	return q.driver.Run(ctx, &req)
}

func (q *Query) setErr(err error) {
	if q.err == nil {
		q.err = err
	}
}
