package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds small user preferences that survive restarts.
type Prefs struct {
	SpinnerLabelIndex int    `toml:"spinner_label_index"`
	DefaultStatus     string `toml:"default_status"`
}

const defaultPrefsPath = "~/.launchpad-tui/prefs.toml"

func defaultPrefs() Prefs {
	return Prefs{SpinnerLabelIndex: 0, DefaultStatus: "New"}
}

// LoadPrefs reads preferences from path, or the default location when path
// is empty. A missing or unreadable file degrades gracefully to defaults.
func LoadPrefs(path string) Prefs {
	resolved, err := resolvePrefsPath(path)
	if err != nil {
		return defaultPrefs()
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return defaultPrefs()
	}

	prefs := defaultPrefs()
	if err := toml.Unmarshal(data, &prefs); err != nil {
		return defaultPrefs()
	}
	if strings.TrimSpace(prefs.DefaultStatus) == "" {
		prefs.DefaultStatus = defaultPrefs().DefaultStatus
	}
	if prefs.SpinnerLabelIndex < 0 {
		prefs.SpinnerLabelIndex = 0
	}
	return prefs
}

// SavePrefs writes preferences to path, or the default location when path is
// empty. The file is replaced atomically so a crash never leaves a torn file.
func SavePrefs(path string, p Prefs) error {
	resolved, err := resolvePrefsPath(path)
	if err != nil {
		return fmt.Errorf("resolve prefs path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := atomic.WriteFile(resolved, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePrefsPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
