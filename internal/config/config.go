package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"

	"orderboard/internal/errors"
)

// Identifiers of the published order sheet. SHEET_ID and SHEET_GID override them.
const (
	DefaultSpreadsheetID = "1Vt7pX3RQbYPpGz0Hy8p6cQwZ6jW7mN0jS3k2Y1a9oUc"
	DefaultSheetGID      = "0"
	DefaultExportBaseURL = "https://docs.google.com/spreadsheets/d"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig `validate:"required"`
	Source    SourceConfig `validate:"required"`
	Cache     CacheConfig  `validate:"required"`
	Data      DataConfig   `validate:"required"`
	Logging   LoggingConfig
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required,numeric"`
	GinMode string `validate:"oneof=debug release test"`
}

// SourceConfig describes where the order table comes from
type SourceConfig struct {
	SpreadsheetID string        `validate:"required_without=File"`
	SheetGID      string        `validate:"required_without=File"`
	Format        string        `validate:"oneof=csv xlsx"`
	File          string        // local export, bypasses HTTP when set
	Demo          bool          // generated orders, bypasses both
	BaseURL       string        `validate:"omitempty,url"`
	Timeout       time.Duration `validate:"gt=0"`
	MaxBytes      int64         `validate:"gt=0"`
}

// CacheConfig holds dataset cache settings
type CacheConfig struct {
	TTL  time.Duration `validate:"gt=0"`
	Size int           `validate:"min=1"`
}

// DataConfig holds data normalization settings
type DataConfig struct {
	Timezone           string `validate:"required"`
	DecimalSeparator   string `validate:"len=1"`
	ThousandsSeparator string `validate:"max=1"`
	StatusTablesFile   string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string `validate:"oneof=ERROR WARN INFO DEBUG TRACE"`
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Location resolves the configured timezone
func (d DataConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, errors.Wrapf(errors.ConfigInvalid(err.Error()), "unknown timezone %q", d.Timezone)
	}
	return loc, nil
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Source:    *loadSourceConfig(),
		Cache:     *loadCacheConfig(),
		Data:      *loadDataConfig(),
		Logging:   *loadLoggingConfig(),
		Profiling: *loadProfilingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadSourceConfig() *SourceConfig {
	return &SourceConfig{
		SpreadsheetID: getEnvOrDefault("SHEET_ID", DefaultSpreadsheetID),
		SheetGID:      getEnvOrDefault("SHEET_GID", DefaultSheetGID),
		Format:        strings.ToLower(getEnvOrDefault("SOURCE_FORMAT", "csv")),
		File:          getEnvOrDefault("SOURCE_FILE", ""),
		Demo:          getEnvBoolOrDefault("SOURCE_DEMO", false),
		BaseURL:       strings.TrimRight(getEnvOrDefault("SOURCE_BASE_URL", DefaultExportBaseURL), "/"),
		Timeout:       getEnvDurationOrDefault("SOURCE_TIMEOUT", 15*time.Second),
		MaxBytes:      int64(getEnvIntOrDefault("SOURCE_MAX_BYTES", 10<<20)),
	}
}

func loadCacheConfig() *CacheConfig {
	return &CacheConfig{
		TTL:  getEnvDurationOrDefault("CACHE_TTL", 5*time.Minute),
		Size: getEnvIntOrDefault("CACHE_SIZE", 8),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		Timezone:           getEnvOrDefault("TIMEZONE", "America/Argentina/Buenos_Aires"),
		DecimalSeparator:   getEnvOrDefault("DECIMAL_SEPARATOR", ","),
		ThousandsSeparator: getEnvOrDefault("THOUSANDS_SEPARATOR", "."),
		StatusTablesFile:   getEnvOrDefault("STATUS_TABLES_FILE", ""),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if config.Data.DecimalSeparator == config.Data.ThousandsSeparator {
		return errors.ConfigInvalid("decimal and thousands separators must differ")
	}
	if _, err := config.Data.Location(); err != nil {
		return err
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
