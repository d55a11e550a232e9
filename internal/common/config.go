package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/constants"
)

// Config holds all application configuration
type Config struct {
	Log      LogConfig
	Source   SourceConfig
	Output   OutputConfig
	Database DatabaseConfig
	Report   ReportConfig
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string // "text" | "json"
}

// SourceConfig holds text-extraction configuration
type SourceConfig struct {
	Backend   string // "auto" | "pdftotext" | "native" | "text"
	Pdftotext string
	Timeout   time.Duration
	MaxPages  int // 0 = all pages
}

// OutputConfig holds output-related configuration
type OutputConfig struct {
	Format constants.OutputFormat
	Dir    string
}

// DatabaseConfig holds database-related configuration (postgres output only)
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// ReportConfig holds report-variant configuration
type ReportConfig struct {
	Variant     string
	VariantsDir string
}

// LoadConfig loads configuration from environment variables, reading a .env
// file first when one is present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	format, ok := constants.ParseOutputFormat(getEnv("OUTPUT_FORMAT", "csv"))
	if !ok {
		format = constants.OutputFormat(strings.ToLower(getEnv("OUTPUT_FORMAT", "")))
	}

	return &Config{
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Source: SourceConfig{
			Backend:   getEnv("EXTRACT_BACKEND", "auto"),
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Timeout:   getEnvAsDuration("EXTRACT_TIMEOUT", 2*time.Minute),
			MaxPages:  getEnvAsInt("EXTRACT_MAX_PAGES", 0),
		},
		Output: OutputConfig{
			Format: format,
			Dir:    getEnv("OUTPUT_DIR", ""),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 4),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 0),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Report: ReportConfig{
			Variant:     getEnv("REPORT_VARIANT", ""),
			VariantsDir: getEnv("VARIANTS_DIR", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if _, ok := constants.ParseOutputFormat(string(c.Output.Format)); !ok {
		return NewAppError("CONFIG_ERROR", "OUTPUT_FORMAT must be one of csv, xlsx, sqlite, postgres", ErrInvalidInput)
	}
	if c.Output.Format == constants.OutputPostgres && c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required for postgres output", ErrInvalidInput)
	}
	if c.Source.MaxPages < 0 {
		return NewAppError("CONFIG_ERROR", "EXTRACT_MAX_PAGES must not be negative", ErrInvalidInput)
	}
	switch c.Source.Backend {
	case "auto", "pdftotext", "native", "text":
	default:
		return NewAppError("CONFIG_ERROR", "EXTRACT_BACKEND must be one of auto, pdftotext, native, text", ErrInvalidInput)
	}
	return nil
}
