package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"

	"github.com/sharipovr/aws-url-shortener/internal/logging"
	"github.com/sharipovr/aws-url-shortener/internal/shortener"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Redis   RedisConfig
	AWS     AWSConfig
	Code    CodeConfig
	Cache   CacheConfig
	Clicks  ClicksConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port    string `envconfig:"PORT" default:"3000"`
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:3000"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base URL must be an absolute http(s) URL, got: %q", c.BaseURL)
	}
	return nil
}

// StoreConfig selects and configures the link store
type StoreConfig struct {
	Backend     string `envconfig:"STORE_BACKEND" default:"sqlite"`
	Table       string `envconfig:"TABLE_NAME" default:"url-shortener"`
	DBPath      string `envconfig:"DB_PATH" default:"urls.db"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	AutoMigrate bool   `envconfig:"STORE_AUTO_MIGRATE" default:"false"`
}

// Validate validates the store configuration
func (c *StoreConfig) Validate() error {
	if c.Table == "" {
		return fmt.Errorf("table name cannot be empty")
	}

	switch c.Backend {
	case BackendMemory, BackendRedis, BackendDynamoDB:
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("database path cannot be empty")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("invalid store backend: %s (must be one of: memory, sqlite, postgres, redis, dynamodb)", c.Backend)
	}
	return nil
}

// RedisConfig holds redis connection configuration
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Validate validates the redis configuration
func (c *RedisConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("redis address cannot be empty")
	}
	if c.DB < 0 {
		return fmt.Errorf("redis DB must not be negative, got: %d", c.DB)
	}
	return nil
}

// AWSConfig holds DynamoDB client configuration
type AWSConfig struct {
	Region           string `envconfig:"AWS_REGION" default:"us-east-1"`
	DynamoDBEndpoint string `envconfig:"DYNAMODB_ENDPOINT"`
}

// Validate validates the AWS configuration
func (c *AWSConfig) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("AWS region cannot be empty")
	}
	return nil
}

// CodeConfig holds short code generation configuration
type CodeConfig struct {
	Alphabet    string `envconfig:"CODE_ALPHABET" default:"base62"`
	MaxAttempts int    `envconfig:"CODE_MAX_ATTEMPTS" default:"3"`
}

// Validate validates the code configuration
func (c *CodeConfig) Validate() error {
	if c.Alphabet != shortener.TypeBase62 && c.Alphabet != shortener.TypeHex {
		return fmt.Errorf("invalid code alphabet: %s (must be one of: base62, hex)", c.Alphabet)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("code max attempts must be positive, got: %d", c.MaxAttempts)
	}
	return nil
}

// Shortener returns the generator configuration
func (c *CodeConfig) Shortener() shortener.Config {
	return shortener.Config{Alphabet: c.Alphabet}
}

// CacheConfig holds URL cache configuration
type CacheConfig struct {
	Enabled bool `envconfig:"CACHE_ENABLED" default:"true"`
	Size    int  `envconfig:"CACHE_SIZE" default:"10000"`
}

// Validate validates the cache configuration
func (c *CacheConfig) Validate() error {
	if c.Enabled && c.Size < 1 {
		return fmt.Errorf("cache size must be positive, got: %d", c.Size)
	}
	return nil
}

// ClicksConfig holds click recorder configuration
type ClicksConfig struct {
	Workers   int           `envconfig:"CLICK_WORKERS" default:"4"`
	QueueSize int           `envconfig:"CLICK_QUEUE_SIZE" default:"1024"`
	Timeout   time.Duration `envconfig:"CLICK_TIMEOUT" default:"5s"`
}

// Validate validates the click recorder configuration
func (c *ClicksConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("click workers must not be negative, got: %d", c.Workers)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("click queue size must not be negative, got: %d", c.QueueSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("click timeout must be positive, got: %v", c.Timeout)
	}
	return nil
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level   string `envconfig:"LOG_LEVEL" default:"info"`
	Format  string `envconfig:"LOG_FORMAT" default:"json"`
	Verbose bool   `envconfig:"LOG_VERBOSE" default:"false"`
}

// Validate validates the logging configuration
func (c *LogConfig) Validate() error {
	if _, err := logging.ParseLevel(c.Level); err != nil {
		return err
	}
	if c.Format != logging.FormatJSON && c.Format != logging.FormatConsole {
		return fmt.Errorf("invalid log format: %s (must be one of: json, console)", c.Format)
	}
	return nil
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads an optional .env file from the working directory and then the
// environment. Values already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}
	sections := []struct {
		name   string
		target any
	}{
		{"Server", &cfg.Server},
		{"Store", &cfg.Store},
		{"Redis", &cfg.Redis},
		{"AWS", &cfg.AWS},
		{"Code", &cfg.Code},
		{"Cache", &cfg.Cache},
		{"Clicks", &cfg.Clicks},
		{"Log", &cfg.Log},
		{"Metrics", &cfg.Metrics},
	}
	for _, sec := range sections {
		if err := envconfig.Process("", sec.target); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", sec.name, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// section pairs a config section with its name for error messages
type section struct {
	name string
	v    interface{ Validate() error }
}

// Validate checks every section. Redis and AWS settings are only checked
// when their backend is selected.
func (c *Config) Validate() error {
	validators := []section{
		{"Server", &c.Server},
		{"Store", &c.Store},
		{"Code", &c.Code},
		{"Cache", &c.Cache},
		{"Clicks", &c.Clicks},
		{"Log", &c.Log},
	}
	switch c.Store.Backend {
	case BackendRedis:
		validators = append(validators, section{"Redis", &c.Redis})
	case BackendDynamoDB:
		validators = append(validators, section{"AWS", &c.AWS})
	}

	for _, s := range validators {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("invalid %s config: %w", s.name, err)
		}
	}
	return nil
}

// ApplyFlags overrides values with the flags explicitly set on the command
// line and re-validates the result. Unknown flag names are ignored.
func (c *Config) ApplyFlags(flags *pflag.FlagSet) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "port":
			c.Server.Port, err = flags.GetString(f.Name)
		case "base-url":
			c.Server.BaseURL, err = flags.GetString(f.Name)
		case "store":
			c.Store.Backend, err = flags.GetString(f.Name)
		case "table":
			c.Store.Table, err = flags.GetString(f.Name)
		case "db-path":
			c.Store.DBPath, err = flags.GetString(f.Name)
		case "database-url":
			c.Store.DatabaseURL, err = flags.GetString(f.Name)
		case "auto-migrate":
			c.Store.AutoMigrate, err = flags.GetBool(f.Name)
		case "redis-addr":
			c.Redis.Addr, err = flags.GetString(f.Name)
		case "code-alphabet":
			c.Code.Alphabet, err = flags.GetString(f.Name)
		case "cache-size":
			c.Cache.Size, err = flags.GetInt(f.Name)
		case "no-cache":
			var disabled bool
			disabled, err = flags.GetBool(f.Name)
			c.Cache.Enabled = !disabled
		case "click-workers":
			c.Clicks.Workers, err = flags.GetInt(f.Name)
		case "log-level":
			c.Log.Level, err = flags.GetString(f.Name)
		case "log-format":
			c.Log.Format, err = flags.GetString(f.Name)
		case "verbose":
			c.Log.Verbose, err = flags.GetBool(f.Name)
		case "metrics":
			c.Metrics.Enabled, err = flags.GetBool(f.Name)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to read flags: %w", err)
	}

	return c.Validate()
}
