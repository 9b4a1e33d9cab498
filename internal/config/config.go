package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/mzahid/tartil/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port       string
	DBPath     string
	ExportsDir string

	// Remote persistence is optional: an empty RemoteURL runs the app in
	// local-only mode, which is a supported state, not an error.
	RemoteURL    string
	RemoteAPIKey string

	// Speech synthesis endpoint used by the reference audio producer.
	SynthURL    string
	SynthAPIKey string
	SynthVoice  string

	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", constants.DefaultPort),
		DBPath:       getEnv("DB_PATH", constants.DefaultDBPath),
		ExportsDir:   getEnv("EXPORTS_DIR", constants.DefaultExportsDir),
		RemoteURL:    getEnv("REMOTE_URL", ""),
		RemoteAPIKey: getEnv("REMOTE_API_KEY", ""),
		SynthURL:     getEnv("SYNTH_URL", ""),
		SynthAPIKey:  getEnv("SYNTH_API_KEY", ""),
		SynthVoice:   getEnv("SYNTH_VOICE", constants.DefaultVoice),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.ExportsDir == "" {
		errors = append(errors, "EXPORTS_DIR cannot be empty")
	}

	if c.RemoteURL != "" {
		if u, err := url.Parse(c.RemoteURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("REMOTE_URL is not a valid URL: %s", c.RemoteURL))
		}
	}

	if c.SynthURL != "" {
		if u, err := url.Parse(c.SynthURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("SYNTH_URL is not a valid URL: %s", c.SynthURL))
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// RemoteEnabled reports whether a remote store has been configured.
func (c *Config) RemoteEnabled() bool {
	return c.RemoteURL != ""
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
