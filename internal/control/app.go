package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vietddude/localguide/internal/core/config"
	"github.com/vietddude/localguide/internal/directory/catalog"
	"github.com/vietddude/localguide/internal/directory/health"
	"github.com/vietddude/localguide/internal/directory/search"
	"github.com/vietddude/localguide/internal/directory/server"
	"github.com/vietddude/localguide/internal/infra/backend"
	"github.com/vietddude/localguide/internal/infra/backend/memory"
	"github.com/vietddude/localguide/internal/infra/backend/postgrest"
	"github.com/vietddude/localguide/internal/infra/backend/sqlstore"
	"github.com/vietddude/localguide/internal/infra/cache"
	redisclient "github.com/vietddude/localguide/internal/infra/redis"
	"github.com/vietddude/localguide/internal/infra/remote"
)

// App owns the directory components and their lifecycle.
type App struct {
	cfg      *config.AppConfig
	client   *backend.Client
	sql      *sqlstore.Store
	cache    *cache.Cache
	janitor  *cache.Janitor
	redis    *redisclient.Client
	resolver *catalog.Resolver
	loader   *catalog.Loader
	engine   *search.Engine
	monitor  *health.Monitor
	server   *server.Server
	log      *slog.Logger
}

// NewApp creates an App with all dependencies initialized.
func NewApp(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	log := slog.Default()
	tables := cfg.Backend.Tables
	if tables.Businesses == "" {
		tables.Businesses = catalog.DefaultTables().Businesses
	}

	// 1. Initialize Backend
	driver, sql, err := OpenBackend(ctx, cfg.Backend, cfg.Request.Timeout)
	if err != nil {
		return nil, err
	}
	client := backend.NewClient(driver)

	// 2. Resolve the schema descriptor once
	schema, err := ResolveSchema(ctx, client, cfg.Backend.Schema, tables.Businesses)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	log.Info("Backend ready", "driver", cfg.Backend.Driver, "schema", schema.Mode())

	// 3. Initialize Shared Components
	exec := remote.NewExecutor(cfg.Request, log)
	local := cache.New(cache.Options{DefaultTTL: cfg.Cache.TTL, MaxEntries: cfg.Cache.MaxEntries})
	janitor := cache.NewJanitor(local, cfg.Cache.SweepInterval, log)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}

	opts := []catalog.Option{catalog.WithSchema(schema), catalog.WithLogger(log)}

	// 4. Initialize Redis
	var rdb *redisclient.Client
	if cfg.Redis.Enabled() {
		rdb, err = redisclient.NewClient(cfg.Redis.Config)
		if err != nil {
			log.Warn("Failed to connect to Redis, shared cache disabled", "error", err)
			rdb = nil
		} else {
			opts = append(opts, catalog.WithSharedCache(rdb))
			log.Info("Shared cache enabled", "prefix", cfg.Redis.Prefix)
		}
	}

	resolver := catalog.NewResolver(catalog.Config{
		Table:        tables.Businesses,
		DefaultLimit: cfg.Resolver.DefaultLimit,
		GeoScanLimit: cfg.Resolver.GeoScanLimit,
		TTL:          cfg.Cache.TTL,
		Dedupe:       cfg.Cache.Dedupe(),
	}, client, exec, local, opts...)

	loader := catalog.NewLoader(tables, cfg.Resolver.CollectionLimit, client, exec, local, resolver.Normalizer(), log)
	engine := search.New(search.WithLocation(loc), search.WithLogger(log))

	// 5. Initialize Health Monitor
	components := []health.Component{
		{
			Name:     "backend",
			Critical: true,
			Check:    backendCheck(client, sql, tables.Businesses),
			Detail: func() any {
				return map[string]string{"driver": cfg.Backend.Driver, "schema": schema.Mode()}
			},
		},
		{
			Name:   "cache",
			Check:  func(context.Context) error { return nil },
			Detail: func() any { return map[string]int{"entries": local.Len()} },
		},
	}
	if rdb != nil {
		components = append(components, health.Component{Name: "redis", Check: rdb.Ping})
	}
	monitor := health.NewMonitor(components...)

	srv := server.NewServer(server.Config{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		DefaultLimit: cfg.Resolver.DefaultLimit,
	}, monitor, resolver, loader, engine, log)

	return &App{
		cfg:      cfg,
		client:   client,
		sql:      sql,
		cache:    local,
		janitor:  janitor,
		redis:    rdb,
		resolver: resolver,
		loader:   loader,
		engine:   engine,
		monitor:  monitor,
		server:   srv,
		log:      log,
	}, nil
}

// OpenBackend creates the driver selected by cfg. The SQL store is returned
// separately for the postgres and sqlite drivers, nil otherwise.
func OpenBackend(ctx context.Context, cfg config.BackendConfig, timeout time.Duration) (backend.Driver, *sqlstore.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		if cfg.SeedFile == "" {
			slog.Warn("Memory backend without seed file, lookups will be empty")
			return memory.New(), nil, nil
		}
		s, err := memory.LoadFile(cfg.SeedFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load seed file: %w", err)
		}
		slog.Info("Using memory backend", "seed", cfg.SeedFile)
		return s, nil, nil

	case config.DriverPostgREST:
		d, err := postgrest.New(postgrest.Config{URL: cfg.URL, APIKey: cfg.APIKey, Timeout: timeout})
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Using PostgREST backend", "url", cfg.URL)
		return d, nil, nil

	case config.DriverPostgres, config.DriverSQLite:
		dialect := sqlstore.DialectPostgres
		if cfg.Driver == config.DriverSQLite {
			dialect = sqlstore.DialectSQLite
		}
		s, err := sqlstore.Open(ctx, sqlstore.Config{
			Dialect:  dialect,
			DSN:      cfg.DSN,
			MaxConns: cfg.MaxConns,
			MinConns: cfg.MinConns,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init db: %w", err)
		}
		if cfg.AutoMigrate {
			version, err := s.Migrate(ctx)
			if err != nil {
				_ = s.Close()
				return nil, nil, fmt.Errorf("failed to migrate db: %w", err)
			}
			slog.Info("Database migrated", "version", version)
		}
		slog.Info("Using SQL backend", "dialect", dialect)
		return s, s, nil
	}
	return nil, nil, fmt.Errorf("unknown backend driver %q", cfg.Driver)
}

// ResolveSchema returns the fixed descriptor for mode, or introspects table
// when mode is auto. A failed introspection yields an unknown schema so the
// resolver falls back at runtime.
func ResolveSchema(ctx context.Context, client *backend.Client, mode, table string) (backend.Schema, error) {
	if mode != "" && mode != backend.ModeAuto {
		return backend.SchemaForMode(mode)
	}
	schema, err := backend.DescribeSchema(ctx, client, table)
	if err != nil {
		slog.Warn("Schema introspection failed, using runtime fallback", "table", table, "error", err)
		return backend.Schema{}, nil
	}
	return schema, nil
}

func backendCheck(client *backend.Client, sql *sqlstore.Store, table string) func(context.Context) error {
	if sql != nil {
		return sql.Health
	}
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_, err := client.From(table).Select("*").Limit(1).Execute(ctx).Result()
		return err
	}
}

// Resolver returns the category and location resolver.
func (a *App) Resolver() *catalog.Resolver { return a.resolver }

// Loader returns the collection loader.
func (a *App) Loader() *catalog.Loader { return a.loader }

// Engine returns the search engine.
func (a *App) Engine() *search.Engine { return a.engine }

// Handler returns the HTTP handler without starting a listener.
func (a *App) Handler() http.Handler { return a.server.Handler() }

// SQL returns the SQL store, or nil for the memory and postgrest drivers.
func (a *App) SQL() *sqlstore.Store { return a.sql }

// Monitor returns the health monitor.
func (a *App) Monitor() *health.Monitor { return a.monitor }

// Start starts the HTTP server and the cache janitor.
func (a *App) Start(ctx context.Context) error {
	go a.janitor.Start(ctx)

	// Start DB Metrics Collector
	if a.sql != nil {
		a.sql.StartMetricsCollector(ctx)
	}

	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("HTTP server failed", "error", err)
		}
	}()

	a.log.Info("HTTP server listening", "port", a.cfg.Server.Port)
	return nil
}

// Stop stops the server and releases connections.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping localguide...")

	err := a.server.Stop(ctx)

	// Close Redis
	if a.redis != nil {
		if cerr := a.redis.Close(); cerr != nil {
			a.log.Warn("Failed to close Redis", "error", cerr)
		}
	}
	if cerr := a.client.Close(); cerr != nil {
		a.log.Warn("Failed to close backend", "error", cerr)
	}
	return err
}

// Close releases connections without a running server.
func (a *App) Close() error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	return a.client.Close()
}
