// Package config loads the console configuration from defaults, an optional
// YAML file and TIPS_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"github.com/Cheertaboi/tips-console/internal/pagination"
	"github.com/Cheertaboi/tips-console/internal/sink"
	"github.com/Cheertaboi/tips-console/pkg/db"
)

const EnvPrefix = "TIPS"

const (
	SourcePostgres = "postgres"
	SourceFixture  = "fixture"

	SinkPostgres = "postgres"
	SinkRedis    = "redis"
)

type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Logging    LoggingConfig     `mapstructure:"logging"`
	Postgres   db.PostgresConfig `mapstructure:"postgres"`
	Redis      RedisConfig       `mapstructure:"redis"`
	Source     SourceConfig      `mapstructure:"source"`
	Sink       SinkConfig        `mapstructure:"sink"`
	Quota      QuotaConfig       `mapstructure:"quota"`
	Pagination PaginationConfig  `mapstructure:"pagination"`
	Composer   ComposerConfig    `mapstructure:"composer"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	RateLimit       RateLimit     `mapstructure:"rate_limit"`
}

type RateLimit struct {
	RPS   float64       `mapstructure:"rps"`
	Burst int           `mapstructure:"burst"`
	Idle  time.Duration `mapstructure:"idle"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RedisConfig struct {
	URL    string `mapstructure:"url"`
	Stream string `mapstructure:"stream"`
	MaxLen int64  `mapstructure:"max_len"`
}

type SourceConfig struct {
	Kind        string `mapstructure:"kind"`
	FixturePath string `mapstructure:"fixture_path"`
	Migrate     bool   `mapstructure:"migrate"`
}

type SinkConfig struct {
	Enabled    []string              `mapstructure:"enabled"`
	Dispatcher sink.DispatcherConfig `mapstructure:"dispatcher"`
}

type QuotaConfig struct {
	Capacity   int    `mapstructure:"capacity"`
	Timezone   string `mapstructure:"timezone"`
	DateLayout string `mapstructure:"date_layout"`
}

// Location resolves Timezone.
func (q QuotaConfig) Location() (*time.Location, error) {
	if q.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		return nil, fmt.Errorf("quota timezone: %w", err)
	}
	return loc, nil
}

type PaginationConfig struct {
	Window          pagination.Config `mapstructure:",squash"`
	DefaultPageSize int               `mapstructure:"default_page_size"`
	MaxPageSize     int               `mapstructure:"max_page_size"`
	CacheEntries    int               `mapstructure:"cache_entries"`
}

type ComposerConfig struct {
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	ExpiryInterval time.Duration `mapstructure:"expiry_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit.rps", 5.0)
	v.SetDefault("server.rate_limit.burst", 20)
	v.SetDefault("server.rate_limit.idle", 10*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "tips_console")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("postgres.max_idle_conns", 10)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.stream", "console.mutations")
	v.SetDefault("redis.max_len", 10000)

	v.SetDefault("source.kind", SourceFixture)
	v.SetDefault("source.fixture_path", "fixtures/console.yaml")
	v.SetDefault("source.migrate", false)

	v.SetDefault("sink.enabled", []string{})
	v.SetDefault("sink.dispatcher.workers", 2)
	v.SetDefault("sink.dispatcher.buffer", 256)
	v.SetDefault("sink.dispatcher.timeout", 5*time.Second)

	v.SetDefault("quota.capacity", 3)
	v.SetDefault("quota.timezone", "UTC")
	v.SetDefault("quota.date_layout", "2006-01-02")

	v.SetDefault("pagination.max_visible_slots", 7)
	v.SetDefault("pagination.start_threshold", 0)
	v.SetDefault("pagination.end_threshold", 0)
	v.SetDefault("pagination.radius", 0)
	v.SetDefault("pagination.default_page_size", 10)
	v.SetDefault("pagination.max_page_size", 100)
	v.SetDefault("pagination.cache_entries", 256)

	v.SetDefault("composer.session_ttl", 30*time.Minute)
	v.SetDefault("composer.expiry_interval", time.Minute)
}

// New returns a viper instance with the console defaults and environment
// binding. Flags may be bound to it before Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (if not empty) or ./config.yaml (if present) into v and
// decodes the result.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.RateLimit.RPS <= 0 {
		errs = append(errs, errors.New("server.rate_limit.rps must be positive"))
	}
	switch c.Source.Kind {
	case SourcePostgres:
	case SourceFixture:
		if c.Source.FixturePath == "" {
			errs = append(errs, errors.New("source.fixture_path is required for the fixture source"))
		}
	default:
		errs = append(errs, fmt.Errorf("source.kind must be %q or %q, got %q", SourcePostgres, SourceFixture, c.Source.Kind))
	}
	for _, s := range c.Sink.Enabled {
		if s != SinkPostgres && s != SinkRedis {
			errs = append(errs, fmt.Errorf("sink.enabled: unknown sink %q", s))
		}
	}
	if c.Quota.Capacity < 1 {
		errs = append(errs, errors.New("quota.capacity must be at least 1"))
	}
	if _, err := c.Quota.Location(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Pagination.Window.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Pagination.DefaultPageSize < 1 || c.Pagination.DefaultPageSize > c.Pagination.MaxPageSize {
		errs = append(errs, errors.New("pagination.default_page_size must be between 1 and max_page_size"))
	}
	if c.Composer.SessionTTL <= 0 {
		errs = append(errs, errors.New("composer.session_ttl must be positive"))
	}
	return errors.Join(errs...)
}

// SinkEnabled reports whether name is listed in sink.enabled.
func (c Config) SinkEnabled(name string) bool {
	for _, s := range c.Sink.Enabled {
		if s == name {
			return true
		}
	}
	return false
}
