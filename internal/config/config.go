package config

import (
	"os"
	"strconv"
	"strings"

	"gora/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Analysis AnalysisConfig
	LogLevel string
}

// DatabaseConfig holds database connection settings. An empty URL keeps runs in memory.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// AnalysisConfig holds the defaults a manager starts from before input-file options
// are applied.
type AnalysisConfig struct {
	DDFMethod        int
	InverseNotation  bool
	ReferenceModel   string
	Filter           string
	SortAttr         string
	SortDirection    string
	IPFMaxIterations int
	IPFTolerance     float64
	MaxStateSpace    float64
	SearchWidth      int
	SearchLevels     int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Server:   *loadServerConfig(),
		Analysis: *loadAnalysisConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
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

func loadAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		DDFMethod:        getEnvIntOrDefault("DDF_METHOD", 0),
		InverseNotation:  getEnvBoolOrDefault("INVERSE_NOTATION", false),
		ReferenceModel:   getEnvOrDefault("REFERENCE_MODEL", "default"),
		Filter:           getEnvOrDefault("FILTER", ""),
		SortAttr:         getEnvOrDefault("SORT_ATTR", "information"),
		SortDirection:    strings.ToLower(getEnvOrDefault("SORT_DIRECTION", "descending")),
		IPFMaxIterations: getEnvIntOrDefault("IPF_MAX_ITERATIONS", 1000),
		IPFTolerance:     getEnvFloatOrDefault("IPF_TOLERANCE", 1e-10),
		MaxStateSpace:    getEnvFloatOrDefault("MAX_STATE_SPACE", 1e7),
		SearchWidth:      getEnvIntOrDefault("SEARCH_WIDTH", 3),
		SearchLevels:     getEnvIntOrDefault("SEARCH_LEVELS", 7),
	}
}

func validateConfig(config *Config) error {
	a := config.Analysis
	if a.DDFMethod != 0 && a.DDFMethod != 1 {
		return errors.ConfigInvalid("DDF_METHOD must be 0 or 1")
	}
	if a.SortDirection != "ascending" && a.SortDirection != "descending" {
		return errors.ConfigInvalid("SORT_DIRECTION must be ascending or descending")
	}
	if a.IPFMaxIterations <= 0 {
		return errors.ConfigInvalid("IPF_MAX_ITERATIONS must be positive")
	}
	if a.IPFTolerance <= 0 {
		return errors.ConfigInvalid("IPF_TOLERANCE must be positive")
	}
	if a.MaxStateSpace < 1 {
		return errors.ConfigInvalid("MAX_STATE_SPACE must be at least 1")
	}
	if a.SearchWidth <= 0 || a.SearchLevels <= 0 {
		return errors.ConfigInvalid("SEARCH_WIDTH and SEARCH_LEVELS must be positive")
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
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
