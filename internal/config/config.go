package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// EngineEdge is the native Edge TTS engine (in-process).
const EngineEdge = "edge"

// EngineEdgeCLI shells out to the edge-tts command line tool.
const EngineEdgeCLI = "edge-cli"

// Config holds all application configuration.
type Config struct {
	// HTTP settings
	HTTPPort    int
	BearerToken string

	// TTS settings
	DefaultVoice string
	Engine       string
	EdgeTTSPath  string
	SynthTimeout time.Duration

	// Cache settings
	CacheDir string

	// Behavior settings
	MaxTextLength int

	// Logging settings
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		// HTTP settings
		HTTPPort:    getEnvInt("TTS_PORT", 18790),
		BearerToken: os.Getenv("BEARER_TOKEN"),

		// TTS settings
		DefaultVoice: getEnvString("TTS_VOICE", "en-US-AvaNeural"),
		Engine:       getEnvString("TTS_ENGINE", EngineEdge),
		EdgeTTSPath:  getEnvString("EDGE_TTS_PATH", "edge-tts"),
		SynthTimeout: getEnvDuration("TTS_TIMEOUT", 30*time.Second),

		// Cache settings
		CacheDir: getEnvString("TTS_CACHE_DIR", filepath.Join(os.TempDir(), "ttserve-cache")),

		// Behavior settings
		MaxTextLength: getEnvInt("MAX_TEXT_LENGTH", 5000),

		// Logging settings
		LogLevel:  getEnvString("LOG_LEVEL", "info"),
		LogFormat: getEnvString("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AuthDisabled returns true if bearer token authentication is disabled.
func (c *Config) AuthDisabled() bool {
	return c.BearerToken == ""
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return errors.New("TTS_PORT must be between 1 and 65535")
	}

	if c.DefaultVoice == "" {
		return errors.New("TTS_VOICE must not be empty")
	}

	if c.Engine != EngineEdge && c.Engine != EngineEdgeCLI {
		return errors.New("TTS_ENGINE must be one of: edge, edge-cli")
	}

	if c.SynthTimeout <= 0 {
		return errors.New("TTS_TIMEOUT must be positive")
	}

	if c.CacheDir == "" {
		return errors.New("TTS_CACHE_DIR must not be empty")
	}

	if c.MaxTextLength < 1 {
		return errors.New("MAX_TEXT_LENGTH must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[c.LogFormat] {
		return errors.New("LOG_FORMAT must be one of: text, json")
	}

	return nil
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
