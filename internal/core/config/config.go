package config

import (
	"time"

	"github.com/vietddude/localguide/internal/directory/catalog"
	redisclient "github.com/vietddude/localguide/internal/infra/redis"
	"github.com/vietddude/localguide/internal/infra/remote"
)

// Backend drivers.
const (
	DriverMemory    = "memory"
	DriverPostgREST = "postgrest"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Timezone string         `yaml:"timezone"`
	Backend  BackendConfig  `yaml:"backend"`
	Request  remote.Config  `yaml:"request"`
	Cache    CacheConfig    `yaml:"cache"`
	Redis    RedisConfig    `yaml:"redis"`
	Resolver ResolverConfig `yaml:"resolver"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"          validate:"gte=1,lte=65535"`
	ReadTimeout  time.Duration `yaml:"read_timeout"  validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"  validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
}

// BackendConfig selects and configures the record store.
type BackendConfig struct {
	Driver string `yaml:"driver"  validate:"oneof=memory postgrest postgres sqlite"`
	// URL and APIKey configure the postgrest driver.
	URL    string `yaml:"url"     validate:"required_if=Driver postgrest,omitempty,url"`
	APIKey string `yaml:"api_key"`
	// DSN configures the postgres and sqlite drivers.
	DSN         string `yaml:"dsn"          validate:"required_if=Driver postgres,required_if=Driver sqlite"`
	MaxConns    int    `yaml:"max_conns"    validate:"gte=0"`
	MinConns    int    `yaml:"min_conns"    validate:"gte=0"`
	AutoMigrate bool   `yaml:"auto_migrate"`
	// SeedFile is a JSON document of table -> rows loaded by the memory driver.
	SeedFile string `yaml:"seed_file"`
	// Schema is one of auto, flat, relational, keyword or name.
	Schema string         `yaml:"schema" validate:"oneof=auto flat relational keyword name"`
	Tables catalog.Tables `yaml:"tables"`
}

// CacheConfig holds local cache settings.
type CacheConfig struct {
	TTL            time.Duration `yaml:"ttl"             validate:"gte=0"`
	MaxEntries     int           `yaml:"max_entries"     validate:"gte=0"`
	SweepInterval  time.Duration `yaml:"sweep_interval"  validate:"gte=0"`
	DedupeInflight *bool         `yaml:"dedupe_inflight"`
}

// Dedupe reports whether concurrent identical lookups share one request.
func (c CacheConfig) Dedupe() bool {
	return c.DedupeInflight == nil || *c.DedupeInflight
}

// RedisConfig enables the shared cache tier when URL is set.
type RedisConfig struct {
	redisclient.Config `yaml:",inline"`
}

// Enabled reports whether a Redis URL is configured.
func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

// ResolverConfig holds lookup limits.
type ResolverConfig struct {
	DefaultLimit    int `yaml:"default_limit"    validate:"gte=0,lte=1000"`
	GeoScanLimit    int `yaml:"geo_scan_limit"   validate:"gte=0"`
	CollectionLimit int `yaml:"collection_limit" validate:"gte=0"`
}
