// Package sqlstore is a backend driver over a SQL database: Postgres through
// pgx, or SQLite through modernc.org/sqlite for local and offline use.
package sqlstore

import (
	"context"
	"embed"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Use pgx via database/sql
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/vietddude/localguide/internal/directory/metrics"
	"github.com/vietddude/localguide/internal/infra/backend"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

func (d Dialect) driverName() string {
	if d == DialectSQLite {
		return "sqlite"
	}
	return "pgx"
}

func (d Dialect) gooseDialect() string {
	if d == DialectSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// Config holds SQL connection configuration.
type Config struct {
	Dialect  Dialect
	DSN      string
	MaxConns int
	MinConns int
	// ArrayColumns are decoded into string lists. Postgres stores them as
	// text[], SQLite as JSON text.
	ArrayColumns []string
}

// Relation links a parent table to an embeddable table.
type Relation struct {
	Name       string
	From       string
	Table      string
	ForeignKey string
	References string
}

// DefaultRelations is the businesses -> categories link created by the
// bundled migrations.
var DefaultRelations = []Relation{
	{Name: "categories", From: "businesses", Table: "categories", ForeignKey: "category_id", References: "id"},
}

// Store implements backend.Driver over database/sql.
type Store struct {
	db        *sqlx.DB
	dialect   Dialect
	arrays    map[string]bool
	relations map[string]map[string]Relation
}

var _ backend.Driver = (*Store)(nil)
var _ backend.Describer = (*Store)(nil)

// Open connects and verifies the database.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Dialect == "" {
		cfg.Dialect = DialectPostgres
	}
	if cfg.Dialect != DialectPostgres && cfg.Dialect != DialectSQLite {
		return nil, fmt.Errorf("unsupported sql dialect %q", cfg.Dialect)
	}

	db, err := sqlx.Open(cfg.Dialect.driverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	} else {
		db.SetMaxOpenConns(10)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	} else {
		db.SetMaxIdleConns(2)
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if cfg.Dialect == DialectSQLite {
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout=5000",
			"PRAGMA foreign_keys=ON",
		}
		for _, p := range pragmas {
			if _, err := db.ExecContext(ctx, p); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("setting pragma %q: %w", p, err)
			}
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	arrays := cfg.ArrayColumns
	if arrays == nil {
		arrays = []string{"tags", "cover_images"}
	}
	s := &Store{
		db:        db,
		dialect:   cfg.Dialect,
		arrays:    make(map[string]bool, len(arrays)),
		relations: make(map[string]map[string]Relation),
	}
	for _, c := range arrays {
		s.arrays[c] = true
	}
	for _, rel := range DefaultRelations {
		s.AddRelation(rel)
	}
	return s, nil
}

// AddRelation registers an embeddable relation.
func (s *Store) AddRelation(rel Relation) {
	if rel.Name == "" {
		rel.Name = rel.Table
	}
	if rel.References == "" {
		rel.References = "id"
	}
	if s.relations[rel.From] == nil {
		s.relations[rel.From] = make(map[string]Relation)
	}
	s.relations[rel.From][rel.Name] = rel
}

// DB exposes the connection pool.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Dialect reports the SQL dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close implements backend.Driver.
func (s *Store) Close() error {
	return s.db.Close()
}

// Health checks the connection.
func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// StartMetricsCollector samples pool usage until ctx is done.
func (s *Store) StartMetricsCollector(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.recordPoolUsage()
			}
		}
	}()
}

func (s *Store) recordPoolUsage() {
	stats := s.db.Stats()
	// MaxOpenConnections is 0 when unlimited.
	if stats.MaxOpenConnections > 0 {
		usage := float64(stats.OpenConnections) / float64(stats.MaxOpenConnections) * 100
		metrics.DBConnectionPoolUsage.Set(usage)
	}
}

// Migrate applies the bundled migrations for the store's dialect.
func (s *Store) Migrate(ctx context.Context) (int64, error) {
	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(s.dialect.gooseDialect()); err != nil {
		return 0, err
	}
	dir := "migrations/" + string(s.dialect)
	if err := goose.UpContext(ctx, s.db.DB, dir); err != nil {
		return 0, fmt.Errorf("failed to migrate db: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, s.db.DB)
	if err != nil {
		return 0, fmt.Errorf("failed to read db version: %w", err)
	}
	return version, nil
}

// Run implements backend.Driver.
func (s *Store) Run(ctx context.Context, req *backend.Request) backend.Response {
	q, rerr := s.build(ctx, req)
	if rerr != nil {
		return backend.Response{Err: rerr}
	}

	rows, err := s.db.QueryxContext(ctx, q.sql, q.args...)
	if err != nil {
		return backend.Response{Err: s.translate(err, req)}
	}
	defer rows.Close()

	out := make([]backend.Row, 0)
	for rows.Next() {
		raw := make(map[string]any)
		if err := rows.MapScan(raw); err != nil {
			return backend.Response{Err: s.translate(err, req)}
		}
		out = append(out, s.decodeRow(raw, q.embeds))
	}
	if err := rows.Err(); err != nil {
		return backend.Response{Err: s.translate(err, req)}
	}
	return backend.Response{Data: out}
}

// DescribeSchema implements backend.Describer using catalog introspection.
func (s *Store) DescribeSchema(ctx context.Context, table string) (backend.Schema, error) {
	cols, err := s.columns(ctx, table)
	if err != nil {
		return backend.Schema{}, err
	}
	if len(cols) == 0 {
		return backend.Schema{}, fmt.Errorf("table %s not found", table)
	}

	schema := backend.Schema{
		CategorySlug: cols["category_slug"],
		Category:     cols["category"],
		Known:        true,
	}
	if rel, ok := s.relations[table]["categories"]; ok && cols[rel.ForeignKey] {
		target, err := s.columns(ctx, rel.Table)
		if err != nil {
			return backend.Schema{}, err
		}
		schema.CategoriesRelation = target[rel.References] && target["slug"]
	}
	return schema, nil
}

func (s *Store) columns(ctx context.Context, table string) (map[string]bool, error) {
	if !validIdent(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	var names []string
	var err error
	switch s.dialect {
	case DialectSQLite:
		err = s.db.SelectContext(ctx, &names, `SELECT name FROM pragma_table_info(?)`, table)
	default:
		err = s.db.SelectContext(ctx, &names,
			`SELECT column_name FROM information_schema.columns
			 WHERE table_schema = current_schema() AND table_name = $1`, table)
	}
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", table, err)
	}

	cols := make(map[string]bool, len(names))
	for _, n := range names {
		cols[n] = true
	}
	return cols, nil
}
