// Package config loads server configuration.
//
// Values are layered: built-in defaults, then the TOML file named by
// MYFESTIVAL_CONFIG (if any), then environment variables. A .env file in the
// working directory is loaded into the environment first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// FileEnv names the variable pointing at an optional TOML config file.
const FileEnv = "MYFESTIVAL_CONFIG"

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the server configuration.
type Config struct {
	Addr     string      `toml:"addr" env:"MYFESTIVAL_ADDR"`
	Storage  Storage     `toml:"storage"`
	RedisURL string      `toml:"redis_url" env:"REDIS_URL"`
	Auth     Auth        `toml:"auth"`
	Log      Log         `toml:"log"`
	Tracing  Tracing     `toml:"tracing"`
	Lock     LockOptions `toml:"lock"`
}

type Storage struct {
	Driver      string `toml:"driver" env:"MYFESTIVAL_DB_DRIVER"`
	Path        string `toml:"path" env:"DB_PATH"`
	DatabaseURL string `toml:"database_url" env:"DATABASE_URL"`
}

type Auth struct {
	JWTSecret string   `toml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  Duration `toml:"token_ttl" env:"MYFESTIVAL_TOKEN_TTL"`
}

type Log struct {
	Level  slog.Level `toml:"level" env:"LOG_LEVEL"`
	Format string     `toml:"format" env:"LOG_FORMAT"`
}

// Tracing is disabled while Endpoint is empty.
type Tracing struct {
	Endpoint    string `toml:"endpoint" env:"MYFESTIVAL_OTEL_ENDPOINT"`
	ServiceName string `toml:"service_name" env:"MYFESTIVAL_OTEL_SERVICE_NAME"`
}

// LockOptions tune the Redis festival lock.
type LockOptions struct {
	Expiry     Duration `toml:"expiry" env:"MYFESTIVAL_LOCK_EXPIRY"`
	Tries      int      `toml:"tries" env:"MYFESTIVAL_LOCK_TRIES"`
	RetryDelay Duration `toml:"retry_delay" env:"MYFESTIVAL_LOCK_RETRY_DELAY"`
}

// Duration parses Go duration strings ("30s", "24h") from TOML and env.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Addr: ":8080",
		Storage: Storage{
			Driver: DriverSQLite,
			Path:   "./data/festival.db",
		},
		Auth: Auth{TokenTTL: Duration{24 * time.Hour}},
		Log: Log{
			Level:  slog.LevelInfo,
			Format: FormatText,
		},
		Tracing: Tracing{ServiceName: "myfestival"},
		Lock: LockOptions{
			Expiry:     Duration{30 * time.Second},
			Tries:      20,
			RetryDelay: Duration{250 * time.Millisecond},
		},
	}
}

// Load builds the configuration from defaults, the optional TOML file and
// the environment, then validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.Auth.TokenTTL.Duration <= 0 {
		return errors.New("config: token TTL must be positive")
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return errors.New("config: DB_PATH is required for sqlite")
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Log.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}

	if c.Lock.Tries < 1 {
		return errors.New("config: lock tries must be at least 1")
	}
	return nil
}
