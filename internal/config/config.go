// Package config loads the API server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to application-specific variables.
const EnvPrefix = "BRANDCOLOUR_"

// Config holds the service settings.
type Config struct {
	HTTPPort       string
	DatabaseType   string // sqlite or postgres
	DatabaseDSN    string
	SQLitePath     string
	FetchTimeout   time.Duration
	LoadTimeout    time.Duration
	MaxImageBytes  int64
	MaxImagePixels int64
	SampleStride   int
	AllowedOrigins []string
	DevMode        bool
	LogJSON        bool
}

// Load reads envFile (if it exists) into the process environment without
// overriding variables that are already set, then builds a Config.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPPort:       getEnv("HTTP_PORT", ":8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabaseDSN:    getEnv("DB_DSN", ""),
		SQLitePath:     getEnv("SQLITE_PATH", "data/brandcolour.db"),
		FetchTimeout:   time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
		LoadTimeout:    time.Duration(getEnvInt("LOAD_TIMEOUT_SECONDS", 15)) * time.Second,
		MaxImageBytes:  int64(getEnvInt("MAX_IMAGE_BYTES", 5<<20)),
		MaxImagePixels: int64(getEnvInt("MAX_IMAGE_PIXELS", 4096*4096)),
		SampleStride:   getEnvInt("SAMPLE_STRIDE", 4),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		DevMode:        getEnvBool("DEV_MODE", false),
		LogJSON:        getEnvBool(EnvPrefix+"LOG_JSON", false),
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings for consistency.
func (c Config) Validate() error {
	var errs []error
	switch c.DatabaseType {
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, fmt.Errorf("SQLITE_PATH is required for sqlite"))
		}
	case "postgres":
		if c.DatabaseDSN == "" {
			errs = append(errs, fmt.Errorf("DB_DSN is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid DB_TYPE: %q (valid: sqlite, postgres)", c.DatabaseType))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT_SECONDS must be positive"))
	}
	if c.LoadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("LOAD_TIMEOUT_SECONDS must be positive"))
	}
	if c.MaxImageBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_IMAGE_BYTES must be positive"))
	}
	if c.MaxImagePixels <= 0 {
		errs = append(errs, fmt.Errorf("MAX_IMAGE_PIXELS must be positive"))
	}
	if c.SampleStride < 1 {
		errs = append(errs, fmt.Errorf("SAMPLE_STRIDE must be at least 1"))
	}
	return errors.Join(errs...)
}

// DSN returns the data source name for the configured database.
func (c Config) DSN() string {
	if c.DatabaseType == "sqlite" {
		return c.SQLitePath
	}
	return c.DatabaseDSN
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

func getEnvSlice(key, defaultValue string) []string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
