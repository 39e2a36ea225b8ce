package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/vietddude/localguide/internal/infra/cache"
	"github.com/vietddude/localguide/internal/infra/remote"
)

var validate = validator.New()

// Load reads configuration from a YAML file. An empty path yields the
// defaults.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Expand environment variables in the YAML content
		expandedData := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "America/Sao_Paulo"
	}

	if cfg.Backend.Driver == "" {
		cfg.Backend.Driver = DriverMemory
	}
	if cfg.Backend.Schema == "" {
		cfg.Backend.Schema = "auto"
	}

	def := remote.DefaultConfig()
	if cfg.Request.Timeout == 0 {
		cfg.Request.Timeout = def.Timeout
	}
	if cfg.Request.BaseDelay == 0 {
		cfg.Request.BaseDelay = def.BaseDelay
	}
	if cfg.Request.MaxDelay == 0 {
		cfg.Request.MaxDelay = def.MaxDelay
	}
	// retries: -1 disables retrying.
	if cfg.Request.Retries == 0 {
		cfg.Request.Retries = def.Retries
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = cache.DefaultTTL
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 10000
	}
	if cfg.Cache.SweepInterval == 0 {
		cfg.Cache.SweepInterval = time.Minute
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "localguide:"
	}

	if cfg.Resolver.DefaultLimit == 0 {
		cfg.Resolver.DefaultLimit = 20
	}
	if cfg.Resolver.GeoScanLimit == 0 {
		cfg.Resolver.GeoScanLimit = 500
	}
	if cfg.Resolver.CollectionLimit == 0 {
		cfg.Resolver.CollectionLimit = 200
	}
}
