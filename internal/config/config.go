// Package config loads the server configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config is the complete server configuration.
type Config struct {
	Addr      string        `yaml:"addr"`
	AdminUser string        `yaml:"admin_user"`
	Storage   StorageConfig `yaml:"storage"`
	Log       LogConfig     `yaml:"log"`
	CORS      CORSConfig    `yaml:"cors"`
	Auth      AuthConfig    `yaml:"auth"`
	Server    ServerConfig  `yaml:"server"`
}

// StorageConfig selects where content lives. Users, tokens, settings and
// books are always kept in SQLite; Driver only decides the slideshows, slides
// and announcements.
type StorageConfig struct {
	Driver        string `yaml:"driver"`
	SQLitePath    string `yaml:"sqlite_path"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type AuthConfig struct {
	TokenTTL string `yaml:"token_ttl"`
}

type ServerConfig struct {
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Addr:      ":8080",
		AdminUser: "admin",
		Storage: StorageConfig{
			Driver:        DriverSQLite,
			SQLitePath:    "sangam.sqlite3",
			MongoDatabase: "sangam",
		},
		Log: LogConfig{
			Level: "info",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Auth: AuthConfig{
			TokenTTL: "168h",
		},
		Server: ServerConfig{
			ShutdownTimeout: "10s",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("SANGAM_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("SANGAM_DB"); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := os.Getenv("SANGAM_MONGO_URI"); v != "" {
		c.Storage.MongoURI = v
		c.Storage.Driver = DriverMongo
	}
	if v := os.Getenv("SANGAM_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	switch c.Storage.Driver {
	case DriverSQLite:
	case DriverMongo:
		if c.Storage.MongoURI == "" {
			errs = append(errs, errors.New("storage.mongo_uri is required for the mongo driver"))
		}
		if c.Storage.MongoDatabase == "" {
			errs = append(errs, errors.New("storage.mongo_database is required for the mongo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q must be %s or %s", c.Storage.Driver, DriverSQLite, DriverMongo))
	}
	if c.Storage.SQLitePath == "" {
		errs = append(errs, errors.New("storage.sqlite_path is required"))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := positiveDuration("auth.token_ttl", c.Auth.TokenTTL); err != nil {
		errs = append(errs, err)
	}
	if _, err := positiveDuration("server.shutdown_timeout", c.Server.ShutdownTimeout); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// LogLevel returns the configured slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	l, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// TokenTTL returns the token lifetime, defaulting to a week.
func (c *Config) TokenTTL() time.Duration {
	d, err := positiveDuration("auth.token_ttl", c.Auth.TokenTTL)
	if err != nil {
		return 7 * 24 * time.Hour
	}
	return d
}

// ShutdownTimeout returns how long in-flight requests get on shutdown.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := positiveDuration("server.shutdown_timeout", c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level %q must be debug, info, warn or error", s)
	}
	return l, nil
}

func positiveDuration(key, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s %q must be a positive duration", key, s)
	}
	return d, nil
}
