package sqlstore

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vietddude/localguide/internal/infra/backend"
)

var (
	pgColumnRe     = regexp.MustCompile(`column "?([\w.]+)"? does not exist`)
	pgRelationRe   = regexp.MustCompile(`relation "?([\w.]+)"? does not exist`)
	sqliteColumnRe = regexp.MustCompile(`no such column: "?([\w.]+)"?`)
	sqliteTableRe  = regexp.MustCompile(`no such table: "?([\w.]+)"?`)
)

// translate maps driver errors onto the canonical backend errors so the
// schema fault classifier sees the same shapes PostgREST produces.
func (s *Store) translate(err error, req *backend.Request) *backend.RemoteError {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return backend.TransportError(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == backend.CodeUndefinedColumn:
			return backend.MissingColumnError(columnName(pgColumnRe, pgErr.Message))
		case pgErr.Code == backend.CodeUndefinedTable:
			return s.missingTable(req, columnName(pgRelationRe, pgErr.Message), pgErr.Message)
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "53"), strings.HasPrefix(pgErr.Code, "57"):
			// connection exception, insufficient resources, operator intervention
			return &backend.RemoteError{Message: pgErr.Message, Status: 503, Code: pgErr.Code}
		}
		return &backend.RemoteError{Message: pgErr.Message, Status: 400, Code: pgErr.Code, Details: pgErr.Detail}
	}

	msg := err.Error()
	if m := sqliteColumnRe.FindStringSubmatch(msg); m != nil {
		return backend.MissingColumnError(stripAlias(m[1]))
	}
	if m := sqliteTableRe.FindStringSubmatch(msg); m != nil {
		return s.missingTable(req, m[1], msg)
	}
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY") {
		return &backend.RemoteError{Message: msg, Status: 503}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return backend.TransportError(err)
	}
	return &backend.RemoteError{Message: msg, Status: 500}
}

// missingTable distinguishes an absent base table from an absent embed target.
func (s *Store) missingTable(req *backend.Request, table, msg string) *backend.RemoteError {
	table = stripSchema(table)
	if req != nil && table != "" && table != req.Table {
		for name, rel := range s.relations[req.Table] {
			if rel.Table == table {
				return backend.MissingRelationshipError(req.Table, name)
			}
		}
	}
	return &backend.RemoteError{Message: msg, Status: 404, Code: backend.CodeUndefinedTable}
}

func columnName(re *regexp.Regexp, msg string) string {
	if m := re.FindStringSubmatch(msg); m != nil {
		return stripAlias(m[1])
	}
	return msg
}

// stripAlias drops the table alias from t.column or e_categories.slug.
func stripAlias(col string) string {
	if i := strings.IndexByte(col, '.'); i >= 0 {
		prefix := col[:i]
		if prefix == baseAlias {
			return col[i+1:]
		}
		if rel, ok := strings.CutPrefix(prefix, "e_"); ok {
			return rel + col[i:]
		}
	}
	return col
}

func stripSchema(table string) string {
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		return table[i+1:]
	}
	return table
}
