// Package catalog resolves logical categories to canonical business records
// against a backend whose table shape may drift.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vietddude/localguide/internal/core/apperr"
	"github.com/vietddude/localguide/internal/core/classify"
	"github.com/vietddude/localguide/internal/core/domain"
	"github.com/vietddude/localguide/internal/directory/metrics"
	"github.com/vietddude/localguide/internal/infra/backend"
	"github.com/vietddude/localguide/internal/infra/cache"
	"github.com/vietddude/localguide/internal/infra/remote"
)

// SharedCache is a second cache tier consulted after the local cache.
// *redis.Client satisfies it.
type SharedCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// Config holds resolver settings.
type Config struct {
	Table        string
	DefaultLimit int
	GeoScanLimit int
	TTL          time.Duration
	Dedupe       bool
}

// DefaultConfig returns the resolver defaults.
func DefaultConfig() Config {
	return Config{
		Table:        "businesses",
		DefaultLimit: 20,
		GeoScanLimit: 500,
		TTL:          cache.DefaultTTL,
		Dedupe:       true,
	}
}

// Resolver finds businesses by category using an ordered chain of query
// shapes: flat slug column, categories join, keyword search on name and
// category, and finally name-only search.
type Resolver struct {
	cfg        Config
	client     *backend.Client
	exec       *remote.Executor
	cache      *cache.Cache
	shared     SharedCache
	schema     backend.Schema
	normalizer *Normalizer
	classifier *classify.Classifier
	log        *slog.Logger
	group      singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSharedCache adds a second cache tier.
func WithSharedCache(s SharedCache) Option {
	return func(r *Resolver) { r.shared = s }
}

// WithSchema sets the schema descriptor. Strategies the descriptor rules
// out are skipped.
func WithSchema(s backend.Schema) Option {
	return func(r *Resolver) { r.schema = s }
}

// WithClassifier replaces the default keyword rules.
func WithClassifier(c *classify.Classifier) Option {
	return func(r *Resolver) {
		r.classifier = c
		r.normalizer = NewNormalizer(c)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// NewResolver creates a resolver. A nil cache gets a private one.
func NewResolver(cfg Config, client *backend.Client, exec *remote.Executor, c *cache.Cache, opts ...Option) *Resolver {
	def := DefaultConfig()
	if cfg.Table == "" {
		cfg.Table = def.Table
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.GeoScanLimit <= 0 {
		cfg.GeoScanLimit = def.GeoScanLimit
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if c == nil {
		c = cache.New(cache.Options{DefaultTTL: cfg.TTL})
	}

	r := &Resolver{
		cfg:        cfg,
		client:     client,
		exec:       exec,
		cache:      c,
		classifier: classify.Default(),
		log:        slog.Default(),
	}
	r.normalizer = NewNormalizer(r.classifier)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Schema returns the descriptor in use.
func (r *Resolver) Schema() backend.Schema {
	return r.schema
}

// Normalizer returns the normalizer shared with the resolver.
func (r *Resolver) Normalizer() *Normalizer {
	return r.normalizer
}

// CategoryKey is the cache key for a category lookup.
func CategoryKey(slug string, limit int) string {
	return fmt.Sprintf("businesses:%s:%d", slug, limit)
}

type strategy struct {
	name    string
	allowed func(backend.Schema) bool
	query   func(r *Resolver, slug string, candidates []string, limit int) (*backend.Query, bool)
}

var strategies = []strategy{
	{
		name:    "flat",
		allowed: func(s backend.Schema) bool { return !s.Known || s.CategorySlug },
		query: func(r *Resolver, _ string, candidates []string, limit int) (*backend.Query, bool) {
			return r.client.From(r.cfg.Table).Select("*").In("category_slug", candidates).Limit(limit), true
		},
	},
	{
		name:    "relational",
		allowed: func(s backend.Schema) bool { return !s.Known || s.CategoriesRelation },
		query: func(r *Resolver, _ string, candidates []string, limit int) (*backend.Query, bool) {
			return r.client.From(r.cfg.Table).
				Select("*,categories!inner(name,slug)").
				In("categories.slug", candidates).
				Limit(limit), true
		},
	},
	{
		name:    "keyword",
		allowed: func(s backend.Schema) bool { return !s.Known || s.Category },
		query: func(r *Resolver, slug string, _ []string, limit int) (*backend.Query, bool) {
			expr, ok := keywordExpr(searchKeywords(r.classifier, slug), "name", "category")
			if !ok {
				return nil, false
			}
			return r.client.From(r.cfg.Table).Select("*").Or(expr).Limit(limit), true
		},
	},
	{
		name:    "name",
		allowed: func(backend.Schema) bool { return true },
		query: func(r *Resolver, slug string, _ []string, limit int) (*backend.Query, bool) {
			expr, ok := keywordExpr(searchKeywords(r.classifier, slug), "name")
			if !ok {
				return nil, false
			}
			return r.client.From(r.cfg.Table).Select("*").Or(expr).Limit(limit), true
		},
	},
}

// keywordExpr builds an or() expression matching any keyword as a
// case-insensitive substring of any column.
func keywordExpr(keywords []string, columns ...string) (string, bool) {
	f := backend.Filter{Any: true}
	for _, k := range keywords {
		for _, col := range columns {
			f.Conditions = append(f.Conditions, backend.Condition{Column: col, Op: backend.OpILike, Value: "%" + k + "%"})
		}
	}
	if len(f.Conditions) == 0 {
		return "", false
	}
	return f.Expr(), true
}

// ResolveCategory returns up to limit businesses in the category slug. It
// never fails: when every strategy is exhausted or the backend is
// unreachable the result is empty and the cause is logged. A non-positive
// limit uses the configured default.
func (r *Resolver) ResolveCategory(ctx context.Context, slug string, limit int) []domain.Business {
	if limit <= 0 {
		limit = r.cfg.DefaultLimit
	}
	key := CategoryKey(slug, limit)

	if hit, ok := r.lookup(ctx, key); ok {
		return hit
	}

	if !r.cfg.Dedupe {
		out, _ := r.resolve(ctx, key, slug, limit)
		return out
	}

	v, _, _ := r.group.Do(key, func() (any, error) {
		out, err := r.resolve(context.WithoutCancel(ctx), key, slug, limit)
		return out, err
	})
	out, _ := v.([]domain.Business)
	if out == nil {
		out = []domain.Business{}
	}
	return out
}

func (r *Resolver) lookup(ctx context.Context, key string) ([]domain.Business, bool) {
	if hit, ok := cache.GetAs[[]domain.Business](r.cache, key); ok {
		return hit, true
	}
	if r.shared == nil {
		return nil, false
	}

	var hit []domain.Business
	found, err := r.shared.GetJSON(ctx, key, &hit)
	if err != nil {
		r.log.Warn("Shared cache lookup failed", "key", key, "error", err)
		metrics.CacheLookups.WithLabelValues("shared", "error").Inc()
		return nil, false
	}
	if !found {
		metrics.CacheLookups.WithLabelValues("shared", "miss").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("shared", "hit").Inc()
	r.cache.Set(key, hit, r.cfg.TTL)
	return hit, true
}

func (r *Resolver) store(ctx context.Context, key string, out []domain.Business) {
	r.cache.Set(key, out, r.cfg.TTL)
	if r.shared == nil {
		return
	}
	if err := r.shared.SetJSON(ctx, key, out, r.cfg.TTL); err != nil {
		r.log.Warn("Shared cache write failed", "key", key, "error", err)
	}
}

// resolve runs the strategy chain. Failed and empty strategies move to the
// next one, except retryable failures, which end the chain. Only completed
// chains are cached.
func (r *Resolver) resolve(ctx context.Context, key, slug string, limit int) ([]domain.Business, error) {
	candidates := Candidates(slug)
	if len(candidates) == 0 {
		return []domain.Business{}, nil
	}
	defaultSlug := Canonical(slug)

	for _, st := range strategies {
		if !st.allowed(r.schema) {
			metrics.ResolverStrategyTotal.WithLabelValues(st.name, "skipped").Inc()
			continue
		}
		q, ok := st.query(r, slug, candidates, limit)
		if !ok {
			metrics.ResolverStrategyTotal.WithLabelValues(st.name, "skipped").Inc()
			continue
		}

		rows, err := remote.Execute(ctx, r.exec, "resolve."+st.name, func(ctx context.Context) ([]backend.Row, error) {
			return q.Execute(ctx).Result()
		})
		if err != nil {
			if fault := backend.ClassifyFault(err); fault != backend.FaultNone {
				metrics.ResolverStrategyTotal.WithLabelValues(st.name, "schema_fault").Inc()
				r.log.Debug("Strategy unavailable, falling back",
					"strategy", st.name,
					"slug", slug,
					"fault", fault.String(),
				)
				continue
			}
			metrics.ResolverStrategyTotal.WithLabelValues(st.name, "error").Inc()
			if apperr.IsRetryable(err) {
				// Retries are spent: the backend is unreachable.
				apperr.Report(r.log, err, "Category lookup failed", "slug", slug, "strategy", st.name)
				return []domain.Business{}, err
			}
			r.log.Debug("Strategy failed, falling back",
				"strategy", st.name,
				"slug", slug,
				"error", err,
			)
			continue
		}
		if len(rows) == 0 {
			metrics.ResolverStrategyTotal.WithLabelValues(st.name, "empty").Inc()
			continue
		}

		metrics.ResolverStrategyTotal.WithLabelValues(st.name, "hit").Inc()
		out := r.normalizer.Businesses(rows, defaultSlug)
		r.log.Debug("Resolved category", "slug", slug, "strategy", st.name, "count", len(out))
		r.store(ctx, key, out)
		return out, nil
	}

	r.log.Info("No businesses found for category", "slug", slug)
	out := []domain.Business{}
	r.store(ctx, key, out)
	return out, nil
}
