package catalog

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/localguide/internal/core/apperr"
	"github.com/vietddude/localguide/internal/core/domain"
	"github.com/vietddude/localguide/internal/infra/backend"
	"github.com/vietddude/localguide/internal/infra/cache"
	"github.com/vietddude/localguide/internal/infra/remote"
)

// Tables names the backend table of each collection.
type Tables struct {
	Businesses string `yaml:"businesses"`
	Listings   string `yaml:"listings"`
	Deals      string `yaml:"deals"`
	Events     string `yaml:"events"`
	News       string `yaml:"news"`
}

// DefaultTables returns the table names created by the bundled migrations.
func DefaultTables() Tables {
	return Tables{
		Businesses: "businesses",
		Listings:   "listings",
		Deals:      "deals",
		Events:     "events",
		News:       "news",
	}
}

func (t Tables) withDefaults() Tables {
	def := DefaultTables()
	if t.Businesses == "" {
		t.Businesses = def.Businesses
	}
	if t.Listings == "" {
		t.Listings = def.Listings
	}
	if t.Deals == "" {
		t.Deals = def.Deals
	}
	if t.Events == "" {
		t.Events = def.Events
	}
	if t.News == "" {
		t.News = def.News
	}
	return t
}

// Loader fetches the searchable collections.
type Loader struct {
	tables     Tables
	limit      int
	ttl        time.Duration
	client     *backend.Client
	exec       *remote.Executor
	cache      *cache.Cache
	normalizer *Normalizer
	log        *slog.Logger
}

// NewLoader creates a loader. limit bounds each collection; zero means no
// limit.
func NewLoader(tables Tables, limit int, client *backend.Client, exec *remote.Executor, c *cache.Cache, n *Normalizer, logger *slog.Logger) *Loader {
	if c == nil {
		c = cache.New(cache.Options{})
	}
	if n == nil {
		n = NewNormalizer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		tables:     tables.withDefaults(),
		limit:      limit,
		ttl:        cache.DefaultTTL,
		client:     client,
		exec:       exec,
		cache:      c,
		normalizer: n,
		log:        logger,
	}
}

// Load fetches all five collections concurrently. A collection whose fetch
// fails is returned empty; the others are unaffected.
func (l *Loader) Load(ctx context.Context) domain.Collections {
	var out domain.Collections
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out.Businesses = load(gctx, l, l.tables.Businesses, func(r backend.Row) domain.Business {
			return l.normalizer.Business(r, "")
		})
		return nil
	})
	g.Go(func() error {
		out.Listings = load(gctx, l, l.tables.Listings, l.normalizer.Listing)
		return nil
	})
	g.Go(func() error {
		out.Deals = load(gctx, l, l.tables.Deals, l.normalizer.Deal)
		return nil
	})
	g.Go(func() error {
		out.Events = load(gctx, l, l.tables.Events, l.normalizer.Event)
		return nil
	})
	g.Go(func() error {
		out.News = load(gctx, l, l.tables.News, l.normalizer.News)
		return nil
	})

	_ = g.Wait()
	return out
}

// CollectionKey is the cache key for a whole collection.
func CollectionKey(table string, limit int) string {
	return "collection:" + table + ":" + strconv.Itoa(limit)
}

func load[T any](ctx context.Context, l *Loader, table string, conv func(backend.Row) T) []T {
	key := CollectionKey(table, l.limit)
	if hit, ok := cache.GetAs[[]T](l.cache, key); ok {
		return hit
	}

	q := l.client.From(table).Select("*").Limit(l.limit)
	rows, err := remote.Execute(ctx, l.exec, "load."+table, func(ctx context.Context) ([]backend.Row, error) {
		return q.Execute(ctx).Result()
	})
	if err != nil {
		apperr.Report(l.log, err, "Collection load failed", "table", table)
		return []T{}
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, conv(row))
	}
	l.cache.Set(key, out, l.ttl)
	return out
}
