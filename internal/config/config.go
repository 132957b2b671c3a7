// Package config loads application configuration from the environment and
// persists small user preferences to a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names read by LoadFromEnv.
const (
	GoogleAPIKeyEnv = "GOOGLE_API_KEY"
	ProjectEnv      = "LAUNCHPAD_PROJECT"
	EditorEnv       = "EDITOR"
	LogLevelEnv     = "LAUNCHPAD_TUI_LOG_LEVEL"
	LogFileEnv      = "LAUNCHPAD_TUI_LOG_FILE"
)

const (
	defaultProject  = "nova"
	defaultEditor   = "nvim"
	defaultLogLevel = "warning"
	defaultTimeout  = 30 * time.Second
)

// Config holds the runtime configuration for the application.
type Config struct {
	GoogleAPIKey string
	Project      string
	Editor       string
	LogLevel     string
	LogFile      string
	Timeout      time.Duration
}

// LoadFromEnv builds a Config from the process environment. A .env file in
// the working directory is loaded first when present; a missing file is not
// an error. The Gemini API key is required.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()

	apiKey := os.Getenv(GoogleAPIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%s is not set", GoogleAPIKeyEnv)
	}

	cfg := &Config{
		GoogleAPIKey: apiKey,
		Project:      envOrDefault(ProjectEnv, defaultProject),
		Editor:       envOrDefault(EditorEnv, defaultEditor),
		LogLevel:     envOrDefault(LogLevelEnv, defaultLogLevel),
		LogFile:      os.Getenv(LogFileEnv),
		Timeout:      defaultTimeout,
	}

	if cfg.LogFile == "" {
		path, err := DefaultLogFile()
		if err != nil {
			return nil, err
		}
		cfg.LogFile = path
	}

	return cfg, nil
}

// DefaultLogFile returns the log file path under the user's home directory.
func DefaultLogFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".launchpad-tui", "launchpad-tui.log"), nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
