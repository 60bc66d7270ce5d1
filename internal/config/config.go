/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in
// the user scope. Environment variables are treated as read-only overrides
// at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark" (informational for now)
}

type EditorConfig struct {
	DefaultWidth   int    `yaml:"default_width"`
	DefaultHeight  int    `yaml:"default_height"`
	PaletteVersion string `yaml:"palette_version"`
}

type PersistenceConfig struct {
	// AutosaveDelayMs is the debounce window between a dirtying edit and the
	// autosave commit. One timer is pending at most.
	AutosaveDelayMs int `yaml:"autosave_delay_ms"`
	// GalleryCap bounds the design gallery; oldest-by-update designs beyond
	// the cap are evicted on save.
	GalleryCap int `yaml:"gallery_cap"`
	// DataDir overrides the default per-user location of the designs database.
	DataDir string `yaml:"data_dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int               `yaml:"config_version"`
	General       GeneralConfig     `yaml:"general"`
	Editor        EditorConfig      `yaml:"editor"`
	Persistence   PersistenceConfig `yaml:"persistence"`
	Logging       LoggingConfig     `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system"},
		Editor:        EditorConfig{DefaultWidth: 29, DefaultHeight: 29, PaletteVersion: "v1"},
		Persistence:   PersistenceConfig{AutosaveDelayMs: 1000, GalleryCap: 30, DataDir: ""},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvAutosaveDelayMs = "BB_AUTOSAVE_DELAY_MS"
	EnvGalleryCap      = "BB_GALLERY_CAP"
	EnvDataDir         = "BB_DATA_DIR"
	EnvTelemetryOptIn  = "BB_TELEMETRY_OPT_IN"
	EnvLogLevel        = "BB_LOG_LEVEL"
	EnvLogFormat       = "BB_LOG_FORMAT"
	EnvLogSource       = "BB_LOG_SOURCE"
	EnvLogFile         = "BB_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Beadboard")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Beadboard")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "beadboard")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// DataDir resolves the directory holding the designs database, honoring the
// config override, then the env override, then the platform default next to
// the config file.
func (c AppConfig) EffectiveDataDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		return v, nil
	}
	if strings.TrimSpace(c.Persistence.DataDir) != "" {
		return c.Persistence.DataDir, nil
	}
	p, err := ConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(p), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.Editor.DefaultWidth > 0 {
		dst.Editor.DefaultWidth = src.Editor.DefaultWidth
	}
	if src.Editor.DefaultHeight > 0 {
		dst.Editor.DefaultHeight = src.Editor.DefaultHeight
	}
	if strings.TrimSpace(src.Editor.PaletteVersion) != "" {
		dst.Editor.PaletteVersion = strings.TrimSpace(src.Editor.PaletteVersion)
	}
	if src.Persistence.AutosaveDelayMs > 0 {
		dst.Persistence.AutosaveDelayMs = src.Persistence.AutosaveDelayMs
	}
	if src.Persistence.GalleryCap > 0 {
		dst.Persistence.GalleryCap = src.Persistence.GalleryCap
	}
	if strings.TrimSpace(src.Persistence.DataDir) != "" {
		dst.Persistence.DataDir = strings.TrimSpace(src.Persistence.DataDir)
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvAutosaveDelayMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Persistence.AutosaveDelayMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvGalleryCap)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Persistence.GalleryCap = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.Persistence.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		lv := strings.ToLower(v)
		cfg.General.TelemetryOptIn = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	switch key {
	case "persistence.autosave_delay_ms":
		if os.Getenv(EnvAutosaveDelayMs) != "" {
			return EnvAutosaveDelayMs, true
		}
	case "persistence.gallery_cap":
		if os.Getenv(EnvGalleryCap) != "" {
			return EnvGalleryCap, true
		}
	case "persistence.data_dir":
		if os.Getenv(EnvDataDir) != "" {
			return EnvDataDir, true
		}
	case "general.telemetry_opt_in":
		if os.Getenv(EnvTelemetryOptIn) != "" {
			return EnvTelemetryOptIn, true
		}
	case "logging.level":
		if os.Getenv(EnvLogLevel) != "" {
			return EnvLogLevel, true
		}
	case "logging.format":
		if os.Getenv(EnvLogFormat) != "" {
			return EnvLogFormat, true
		}
	case "logging.source":
		if os.Getenv(EnvLogSource) != "" {
			return EnvLogSource, true
		}
	case "logging.file":
		if os.Getenv(EnvLogFile) != "" {
			return EnvLogFile, true
		}
	}
	return "", false
}
