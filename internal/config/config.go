package config

import (
	"os"
	"strconv"

	"minevision/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Data   DataConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig holds data source settings
type DataConfig struct {
	// SourceFile is the fatigue alert workbook (.xlsx or .csv).
	SourceFile string
	// TopN bounds ranked listings (top operators, top assets).
	TopN int
	// DemoMode serves a generated workbook when no source file is set.
	DemoMode bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Data: DataConfig{
			SourceFile: getEnvOrDefault("MINEVISION_SOURCE_FILE", ""),
			TopN:       getEnvIntOrDefault("MINEVISION_TOP_N", 10),
			DemoMode:   getEnvBoolOrDefault("MINEVISION_DEMO", false),
		},
	}

	if config.Data.SourceFile == "" && !config.Data.DemoMode {
		return nil, errors.ConfigInvalid("MINEVISION_SOURCE_FILE is required unless MINEVISION_DEMO=true")
	}
	if config.Data.TopN <= 0 {
		return nil, errors.ConfigInvalid("MINEVISION_TOP_N must be positive")
	}

	return config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
