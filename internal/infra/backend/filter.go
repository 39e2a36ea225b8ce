package backend

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Op is a filter operator.
type Op string

const (
	OpEq    Op = "eq"
	OpNeq   Op = "neq"
	OpLike  Op = "like"
	OpILike Op = "ilike"
	OpIn    Op = "in"
)

func parseOp(s string) (Op, bool) {
	switch op := Op(s); op {
	case OpEq, OpNeq, OpLike, OpILike, OpIn:
		return op, true
	}
	return "", false
}

// Condition is one column predicate. Column may be dotted to address an
// embedded relation (categories.slug).
type Condition struct {
	Column string
	Op     Op
	Value  string
	Values []string
}

// Filter is a group of conditions. A plain filter has one condition; an Or
// filter matches when any condition matches.
type Filter struct {
	Conditions []Condition
	Any        bool
}

// Relation returns the embed a dotted column addresses, or "".
func (c Condition) Relation() string {
	if i := strings.IndexByte(c.Column, '.'); i > 0 {
		return c.Column[:i]
	}
	return ""
}

// Field returns the column name without its relation prefix.
func (c Condition) Field() string {
	if i := strings.IndexByte(c.Column, '.'); i > 0 {
		return c.Column[i+1:]
	}
	return c.Column
}

// String renders the condition in column.op.value form.
func (c Condition) String() string {
	return c.Column + "." + c.operand()
}

// Param renders the condition as a PostgREST query parameter.
func (c Condition) Param() (key, value string) {
	return c.Column, c.operand()
}

func (c Condition) operand() string {
	if c.Op == OpIn {
		quoted := make([]string, len(c.Values))
		for i, v := range c.Values {
			quoted[i] = quoteValue(v)
		}
		return "in.(" + strings.Join(quoted, ",") + ")"
	}
	return string(c.Op) + "." + quoteValue(c.Value)
}

func quoteValue(v string) string {
	if strings.ContainsAny(v, `,.:()" `) {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return v
}

// Expr renders the conditions as a comma-joined clause list.
func (f Filter) Expr() string {
	parts := make([]string, len(f.Conditions))
	for i, c := range f.Conditions {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// String renders the filter; Or groups use PostgREST's or=(...) syntax.
func (f Filter) String() string {
	if f.Any {
		return "or(" + f.Expr() + ")"
	}
	return f.Expr()
}

// ParseOr parses a comma-joined list of column.op.value clauses, the
// grammar PostgREST accepts inside or=(...).
func ParseOr(expr string) ([]Condition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("empty or expression")
	}

	clauses, err := splitTopLevel(expr, ',')
	if err != nil {
		return nil, err
	}

	conds := make([]Condition, 0, len(clauses))
	for _, clause := range clauses {
		c, err := parseClause(strings.TrimSpace(clause))
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

func parseClause(clause string) (Condition, error) {
	parts := strings.Split(clause, ".")
	for i := 1; i < len(parts)-1; i++ {
		op, ok := parseOp(parts[i])
		if !ok {
			continue
		}
		column := strings.Join(parts[:i], ".")
		raw := strings.Join(parts[i+1:], ".")
		if op == OpIn {
			values, err := parseList(raw)
			if err != nil {
				return Condition{}, fmt.Errorf("clause %q: %w", clause, err)
			}
			return Condition{Column: column, Op: op, Values: values}, nil
		}
		return Condition{Column: column, Op: op, Value: unquote(raw)}, nil
	}
	return Condition{}, fmt.Errorf("clause %q: expected column.operator.value", clause)
}

func parseList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "(") || !strings.HasSuffix(raw, ")") {
		return nil, errors.New("in list must be parenthesized")
	}
	inner := raw[1 : len(raw)-1]
	if strings.TrimSpace(inner) == "" {
		return []string{}, nil
	}
	items, err := splitTopLevel(inner, ',')
	if err != nil {
		return nil, err
	}
	for i, it := range items {
		items[i] = unquote(strings.TrimSpace(it))
	}
	return items, nil
}

// splitTopLevel splits s on sep outside parentheses and double quotes.
func splitTopLevel(s string, sep rune) ([]string, error) {
	var (
		out     []string
		cur     strings.Builder
		depth   int
		inQuote bool
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inQuote:
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return nil, errors.New("unbalanced parentheses")
			}
		case r == sep && depth == 0:
			out = append(out, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	if depth != 0 || inQuote {
		return nil, errors.New("unterminated group or quote")
	}
	return append(out, cur.String()), nil
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return strings.ReplaceAll(v[1:len(v)-1], `\"`, `"`)
	}
	return v
}

// Lookup resolves a possibly dotted column against row.
func Lookup(row Row, column string) (any, bool) {
	rel, field, dotted := strings.Cut(column, ".")
	if !dotted {
		v, ok := row[column]
		return v, ok
	}
	switch nested := row[rel].(type) {
	case map[string]any:
		v, ok := nested[field]
		return v, ok
	case Row:
		v, ok := nested[field]
		return v, ok
	}
	return nil, false
}

// Match evaluates c against row.
func (c Condition) Match(row Row) bool {
	v, ok := Lookup(row, c.Column)
	if !ok || v == nil {
		return c.Op == OpNeq
	}
	s := stringify(v)

	switch c.Op {
	case OpEq:
		return s == c.Value
	case OpNeq:
		return s != c.Value
	case OpLike:
		return LikeMatch(c.Value, s)
	case OpILike:
		return LikeMatch(strings.ToLower(c.Value), strings.ToLower(s))
	case OpIn:
		for _, want := range c.Values {
			if s == want {
				return true
			}
		}
	}
	return false
}

// Match evaluates the filter against row.
func (f Filter) Match(row Row) bool {
	if len(f.Conditions) == 0 {
		return true
	}
	for _, c := range f.Conditions {
		hit := c.Match(row)
		if f.Any && hit {
			return true
		}
		if !f.Any && !hit {
			return false
		}
	}
	return !f.Any
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}

// LikeMatch reports whether s matches a SQL LIKE pattern where % matches any
// run of characters and _ matches exactly one.
func LikeMatch(pattern, s string) bool {
	p := []rune(pattern)
	t := []rune(s)

	pi, ti := 0, 0
	star, mark := -1, 0
	for ti < len(t) {
		switch {
		case pi < len(p) && p[pi] == '%':
			star = pi
			mark = ti
			pi++
		case pi < len(p) && (p[pi] == '_' || p[pi] == t[ti]):
			pi++
			ti++
		case star >= 0:
			pi = star + 1
			mark++
			ti = mark
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '%' {
		pi++
	}
	return pi == len(p)
}
