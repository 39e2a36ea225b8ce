// Package memory is an in-process backend driver. Tables are plain row
// slices; the column set of each table is fixed at creation so schema
// drift can be simulated by creating tables with fewer columns.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"sync"

	"github.com/vietddude/localguide/internal/infra/backend"
)

// Relation links a parent table to a related table through a foreign key.
type Relation struct {
	Name       string `json:"name"`
	From       string `json:"from"`
	Table      string `json:"table"`
	ForeignKey string `json:"foreign_key"`
	References string `json:"references"`
}

type table struct {
	columns map[string]bool
	order   []string
	rows    []backend.Row
}

// FaultFunc may fail a request before it runs.
type FaultFunc func(req *backend.Request) *backend.RemoteError

// Store is a concurrency-safe in-memory backend.
type Store struct {
	mu        sync.RWMutex
	tables    map[string]*table
	relations map[string]map[string]Relation
	fault     FaultFunc
}

var _ backend.Driver = (*Store)(nil)
var _ backend.Describer = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		tables:    make(map[string]*table),
		relations: make(map[string]map[string]Relation),
	}
}

// CreateTable declares a table with a fixed column set. Recreating a table
// drops its rows.
func (s *Store) CreateTable(name string, columns ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &table{columns: make(map[string]bool)}
	for _, c := range columns {
		if !t.columns[c] {
			t.columns[c] = true
			t.order = append(t.order, c)
		}
	}
	s.tables[name] = t
}

// Insert appends rows. Unknown tables are created with the union of the
// rows' keys as columns.
func (s *Store) Insert(name string, rows ...backend.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		t = &table{columns: make(map[string]bool)}
		for _, r := range rows {
			for k := range r {
				if !t.columns[k] {
					t.columns[k] = true
					t.order = append(t.order, k)
				}
			}
		}
		s.tables[name] = t
	}

	for _, r := range rows {
		for k := range r {
			if !t.columns[k] {
				return fmt.Errorf("insert into %s: %w", name, backend.MissingColumnError(k))
			}
		}
		t.rows = append(t.rows, maps.Clone(r))
	}
	return nil
}

// AddRelation registers an embeddable relation.
func (s *Store) AddRelation(rel Relation) {
	if rel.References == "" {
		rel.References = "id"
	}
	if rel.Name == "" {
		rel.Name = rel.Table
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.relations[rel.From] == nil {
		s.relations[rel.From] = make(map[string]Relation)
	}
	s.relations[rel.From][rel.Name] = rel
}

// SetFault installs a hook consulted before every request. Nil removes it.
func (s *Store) SetFault(fn FaultFunc) {
	s.mu.Lock()
	s.fault = fn
	s.mu.Unlock()
}

// Close implements backend.Driver.
func (s *Store) Close() error {
	return nil
}

// Run implements backend.Driver.
func (s *Store) Run(ctx context.Context, req *backend.Request) backend.Response {
	if err := ctx.Err(); err != nil {
		return backend.Response{Err: backend.TransportError(err)}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.fault != nil {
		if rerr := s.fault(req); rerr != nil {
			return backend.Response{Err: rerr}
		}
	}

	t, ok := s.tables[req.Table]
	if !ok {
		return backend.Response{Err: undefinedTable(req.Table)}
	}

	for _, c := range req.Columns() {
		if !t.columns[c] {
			return backend.Response{Err: backend.MissingColumnError(c)}
		}
	}

	embeds := make(map[string]backend.Embed)
	for _, e := range req.Select.Embeds {
		rel, target, rerr := s.relation(req.Table, e.Name)
		if rerr != nil {
			return backend.Response{Err: rerr}
		}
		for _, c := range e.Columns {
			if c != "*" && !target.columns[c] {
				return backend.Response{Err: backend.MissingColumnError(c)}
			}
		}
		if !t.columns[rel.ForeignKey] {
			return backend.Response{Err: backend.MissingRelationshipError(req.Table, e.Name)}
		}
		embeds[e.Name] = e
	}

	for _, f := range req.Filters {
		for _, c := range f.Conditions {
			rel := c.Relation()
			if rel == "" {
				continue
			}
			if _, _, rerr := s.relation(req.Table, rel); rerr != nil {
				return backend.Response{Err: rerr}
			}
			if _, ok := embeds[rel]; !ok {
				return backend.Response{Err: &backend.RemoteError{
					Message: fmt.Sprintf("'%s' is not an embedded resource in this request", rel),
					Status:  400,
					Code:    "PGRST108",
				}}
			}
		}
	}

	out := make([]backend.Row, 0)
	for _, base := range t.rows {
		full := maps.Clone(base)
		for name := range embeds {
			full[name] = s.related(req.Table, name, base)
		}

		if !s.keep(req, embeds, full) {
			continue
		}

		out = append(out, project(req.Select, full, embeds))
		if req.Limit > 0 && len(out) >= req.Limit {
			break
		}
	}
	return backend.Response{Data: out}
}

// keep applies request filters to full. A failing plain filter on a
// non-inner embed clears the embed instead of dropping the row.
func (s *Store) keep(req *backend.Request, embeds map[string]backend.Embed, full backend.Row) bool {
	for _, f := range req.Filters {
		if f.Match(full) {
			continue
		}
		if !f.Any && len(f.Conditions) == 1 {
			if rel := f.Conditions[0].Relation(); rel != "" && !embeds[rel].Inner {
				full[rel] = nil
				continue
			}
		}
		return false
	}
	return true
}

func (s *Store) relation(from, name string) (Relation, *table, *backend.RemoteError) {
	rel, ok := s.relations[from][name]
	if !ok {
		return Relation{}, nil, backend.MissingRelationshipError(from, name)
	}
	target, ok := s.tables[rel.Table]
	if !ok {
		return Relation{}, nil, backend.MissingRelationshipError(from, name)
	}
	return rel, target, nil
}

func (s *Store) related(from, name string, base backend.Row) any {
	rel, target, rerr := s.relation(from, name)
	if rerr != nil {
		return nil
	}
	key, ok := base[rel.ForeignKey]
	if !ok || key == nil {
		return nil
	}
	for _, r := range target.rows {
		if fmt.Sprint(r[rel.References]) == fmt.Sprint(key) {
			return map[string]any(maps.Clone(r))
		}
	}
	return nil
}

func project(sel backend.Selection, full backend.Row, embeds map[string]backend.Embed) backend.Row {
	row := make(backend.Row)
	if sel.All {
		for k, v := range full {
			if _, isEmbed := embeds[k]; !isEmbed {
				row[k] = v
			}
		}
	}
	for _, c := range sel.Columns {
		row[c] = full[c]
	}
	for name, e := range embeds {
		nested, ok := full[name].(map[string]any)
		if !ok {
			row[name] = nil
			continue
		}
		if len(e.Columns) == 0 || (len(e.Columns) == 1 && e.Columns[0] == "*") {
			row[name] = nested
			continue
		}
		picked := make(map[string]any, len(e.Columns))
		for _, c := range e.Columns {
			picked[c] = nested[c]
		}
		row[name] = picked
	}
	return row
}

func undefinedTable(name string) *backend.RemoteError {
	return &backend.RemoteError{
		Message: fmt.Sprintf("relation %q does not exist", name),
		Status:  404,
		Code:    backend.CodeUndefinedTable,
	}
}

// DescribeSchema implements backend.Describer.
func (s *Store) DescribeSchema(ctx context.Context, name string) (backend.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[name]
	if !ok {
		return backend.Schema{}, undefinedTable(name)
	}
	schema := backend.Schema{
		CategorySlug: t.columns["category_slug"],
		Category:     t.columns["category"],
		Known:        true,
	}
	if rel, _, rerr := s.relation(name, "categories"); rerr == nil && t.columns[rel.ForeignKey] {
		schema.CategoriesRelation = true
	}
	return schema, nil
}

// Seed is the JSON seed file layout.
type Seed struct {
	// Columns optionally fixes the column set per table; otherwise it is
	// inferred from the rows.
	Columns   map[string][]string      `json:"columns"`
	Tables    map[string][]backend.Row `json:"tables"`
	Relations []Relation               `json:"relations"`
}

// Load builds a store from seed.
func Load(seed Seed) (*Store, error) {
	s := New()
	for name, cols := range seed.Columns {
		s.CreateTable(name, cols...)
	}
	for name, rows := range seed.Tables {
		if err := s.Insert(name, rows...); err != nil {
			return nil, err
		}
	}
	for _, rel := range seed.Relations {
		s.AddRelation(rel)
	}
	return s, nil
}

// LoadFile reads a JSON seed file.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return Load(seed)
}
