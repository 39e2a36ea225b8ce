package sqlstore

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/vietddude/localguide/internal/infra/backend"
)

const baseAlias = "t"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validIdent(s string) bool {
	return identRe.MatchString(s)
}

func quoteIdent(s string) string {
	return `"` + s + `"`
}

// embedAlias is the column prefix for an embedded relation's fields.
func embedAlias(name string) string {
	return "e_" + name
}

func embedColumn(name, field string) string {
	return name + "__" + field
}

type embedPlan struct {
	name    string
	columns []string
}

type builtQuery struct {
	sql    string
	args   []any
	embeds []embedPlan
}

// build renders req as a single SELECT. Embeds become joins: INNER for
// !inner hints, LEFT otherwise. Plain filters on an embedded relation are
// placed in its ON clause so an outer embed is nulled rather than dropping
// the parent.
func (s *Store) build(ctx context.Context, req *backend.Request) (*builtQuery, *backend.RemoteError) {
	if !validIdent(req.Table) {
		return nil, backend.ParseError(fmt.Errorf("invalid table name %q", req.Table))
	}

	q := &builtQuery{}
	var sel []string
	if req.Select.All {
		sel = append(sel, baseAlias+".*")
	}
	for _, col := range req.Select.Columns {
		if !validIdent(col) {
			return nil, backend.ParseError(fmt.Errorf("invalid column %q", col))
		}
		sel = append(sel, baseAlias+"."+quoteIdent(col))
	}

	joinConds := make(map[string][]string)
	joinArgs := make(map[string][]any)
	var where []string
	var whereArgs []any

	embedded := make(map[string]bool, len(req.Select.Embeds))
	for _, e := range req.Select.Embeds {
		embedded[e.Name] = true
	}

	for _, f := range req.Filters {
		if f.Any {
			parts := make([]string, 0, len(f.Conditions))
			for _, c := range f.Conditions {
				expr, args, rerr := s.condition(req, c, embedded)
				if rerr != nil {
					return nil, rerr
				}
				parts = append(parts, expr)
				whereArgs = append(whereArgs, args...)
			}
			if len(parts) > 0 {
				where = append(where, "("+strings.Join(parts, " OR ")+")")
			}
			continue
		}
		for _, c := range f.Conditions {
			expr, args, rerr := s.condition(req, c, embedded)
			if rerr != nil {
				return nil, rerr
			}
			if rel := c.Relation(); rel != "" {
				joinConds[rel] = append(joinConds[rel], expr)
				joinArgs[rel] = append(joinArgs[rel], args...)
				continue
			}
			where = append(where, expr)
			whereArgs = append(whereArgs, args...)
		}
	}

	var joins []string
	var args []any
	for _, e := range req.Select.Embeds {
		rel, ok := s.relations[req.Table][e.Name]
		if !ok {
			return nil, backend.MissingRelationshipError(req.Table, e.Name)
		}
		cols := e.Columns
		if len(cols) == 0 || (len(cols) == 1 && cols[0] == "*") {
			known, err := s.columns(ctx, rel.Table)
			if err != nil {
				return nil, s.translate(err, req)
			}
			if len(known) == 0 {
				return nil, backend.MissingRelationshipError(req.Table, e.Name)
			}
			cols = make([]string, 0, len(known))
			for c := range known {
				cols = append(cols, c)
			}
			sort.Strings(cols)
		}

		alias := embedAlias(e.Name)
		for _, col := range cols {
			if !validIdent(col) {
				return nil, backend.ParseError(fmt.Errorf("invalid column %q in %s", col, e.Name))
			}
			sel = append(sel, fmt.Sprintf("%s.%s AS %s", alias, quoteIdent(col), quoteIdent(embedColumn(e.Name, col))))
		}
		q.embeds = append(q.embeds, embedPlan{name: e.Name, columns: cols})

		kind := "LEFT JOIN"
		if e.Inner {
			kind = "INNER JOIN"
		}
		on := []string{fmt.Sprintf("%s.%s = %s.%s", alias, quoteIdent(rel.References), baseAlias, quoteIdent(rel.ForeignKey))}
		on = append(on, joinConds[e.Name]...)
		joins = append(joins, fmt.Sprintf("%s %s AS %s ON %s", kind, quoteIdent(rel.Table), alias, strings.Join(on, " AND ")))
		args = append(args, joinArgs[e.Name]...)
	}
	if len(sel) == 0 {
		sel = append(sel, baseAlias+".*")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s AS %s", strings.Join(sel, ", "), quoteIdent(req.Table), baseAlias)
	for _, j := range joins {
		b.WriteString(" ")
		b.WriteString(j)
	}
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	if req.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", req.Limit)
	}
	args = append(args, whereArgs...)

	q.sql = s.db.Rebind(b.String())
	q.args = args
	return q, nil
}

func (s *Store) condition(req *backend.Request, c backend.Condition, embedded map[string]bool) (string, []any, *backend.RemoteError) {
	var ref string
	if rel := c.Relation(); rel != "" {
		if !embedded[rel] {
			return "", nil, &backend.RemoteError{
				Message: fmt.Sprintf("'%s' is not an embedded resource in this request", rel),
				Status:  400,
				Code:    "PGRST108",
			}
		}
		if !validIdent(rel) || !validIdent(c.Field()) {
			return "", nil, backend.ParseError(fmt.Errorf("invalid column %q", c.Column))
		}
		ref = embedAlias(rel) + "." + quoteIdent(c.Field())
	} else {
		if !validIdent(c.Column) {
			return "", nil, backend.ParseError(fmt.Errorf("invalid column %q", c.Column))
		}
		ref = baseAlias + "." + quoteIdent(c.Column)
	}

	switch c.Op {
	case backend.OpEq:
		return ref + " = ?", []any{c.Value}, nil
	case backend.OpNeq:
		return ref + " <> ?", []any{c.Value}, nil
	case backend.OpLike:
		return "CAST(" + ref + " AS TEXT) LIKE ?", []any{c.Value}, nil
	case backend.OpILike:
		if s.dialect == DialectPostgres {
			return "CAST(" + ref + " AS TEXT) ILIKE ?", []any{c.Value}, nil
		}
		return "LOWER(CAST(" + ref + " AS TEXT)) LIKE LOWER(?)", []any{c.Value}, nil
	case backend.OpIn:
		if len(c.Values) == 0 {
			return "1 = 0", nil, nil
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(c.Values)), ", ")
		args := make([]any, len(c.Values))
		for i, v := range c.Values {
			args[i] = v
		}
		return ref + " IN (" + marks + ")", args, nil
	}
	return "", nil, backend.ParseError(fmt.Errorf("unsupported operator %q", c.Op))
}
