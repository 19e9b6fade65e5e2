// Package config loads runtime settings with viper.
//
// PRECEDENCE (highest first):
//  1. environment variables
//  2. an optional dotenv file (".env" in the working directory by default)
//  3. the defaults below
//
// Load validates everything up front so a bad deployment fails at startup,
// not on the first request.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultEnvFile is read by Load when present.
const DefaultEnvFile = ".env"

// StoreKind identifies the favorites backend selected by STORE_URL.
type StoreKind string

const (
	StoreSQLite StoreKind = "sqlite"
	StoreMemory StoreKind = "memory"
	StoreRedis  StoreKind = "redis"
)

type Config struct {
	Port int `mapstructure:"PORT"`

	StoreURL string `mapstructure:"STORE_URL"`
	DBName   string `mapstructure:"DB_NAME"`

	MarvelPublicKey  string `mapstructure:"MARVEL_PUBLIC_KEY"`
	MarvelPrivateKey string `mapstructure:"MARVEL_PRIVATE_KEY"`
	MarvelBaseURL    string `mapstructure:"MARVEL_BASE_URL"`

	CORSOrigins string `mapstructure:"CORS_ORIGINS"`

	ListCacheSize   int `mapstructure:"LIST_CACHE_SIZE"`
	LookupCacheSize int `mapstructure:"LOOKUP_CACHE_SIZE"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var defaults = map[string]any{
	"PORT":               8001,
	"STORE_URL":          "sqlite://data",
	"DB_NAME":            "marvel",
	"MARVEL_PUBLIC_KEY":  "",
	"MARVEL_PRIVATE_KEY": "",
	"MARVEL_BASE_URL":    "https://gateway.marvel.com/v1/public",
	"CORS_ORIGINS":       "*",
	"LIST_CACHE_SIZE":    100,
	"LOOKUP_CACHE_SIZE":  50,
	"LOG_LEVEL":          "info",
	"LOG_FORMAT":         "text",
}

// Load reads configuration from envFile (if it exists) and the environment.
// Pass "" to skip the file entirely.
func Load(envFile string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: binding %s: %w", key, err)
		}
	}

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: reading %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be in 1..65535, got %d", c.Port))
	}
	if strings.TrimSpace(c.MarvelPublicKey) == "" {
		errs = append(errs, errors.New("MARVEL_PUBLIC_KEY is required"))
	}
	if strings.TrimSpace(c.MarvelPrivateKey) == "" {
		errs = append(errs, errors.New("MARVEL_PRIVATE_KEY is required"))
	}
	if strings.TrimSpace(c.MarvelBaseURL) == "" {
		errs = append(errs, errors.New("MARVEL_BASE_URL must not be empty"))
	}
	if _, err := c.StoreKind(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.DBName) == "" {
		errs = append(errs, errors.New("DB_NAME must not be empty"))
	}
	if c.ListCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("LIST_CACHE_SIZE must be positive, got %d", c.ListCacheSize))
	}
	if c.LookupCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("LOOKUP_CACHE_SIZE must be positive, got %d", c.LookupCacheSize))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// StoreKind classifies STORE_URL.
func (c *Config) StoreKind() (StoreKind, error) {
	switch {
	case c.StoreURL == ":memory:":
		return StoreMemory, nil
	case strings.HasPrefix(c.StoreURL, "sqlite://"):
		return StoreSQLite, nil
	case strings.HasPrefix(c.StoreURL, "redis://"), strings.HasPrefix(c.StoreURL, "rediss://"):
		return StoreRedis, nil
	default:
		return "", fmt.Errorf("STORE_URL must be sqlite://<dir>, :memory: or redis://..., got %q", c.StoreURL)
	}
}

// SQLitePath is the database file for sqlite:// and ":memory:" stores:
// <dir>/<DB_NAME>.db or ":memory:".
func (c *Config) SQLitePath() string {
	if c.StoreURL == ":memory:" {
		return ":memory:"
	}
	dir := strings.TrimPrefix(c.StoreURL, "sqlite://")
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, c.DBName+".db")
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}

	if strings.ToLower(c.LogFormat) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", s)
	}
	return level, nil
}
