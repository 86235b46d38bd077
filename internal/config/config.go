/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	applog "leancanvas/internal/log"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type GeneralConfig struct {
	Theme string `yaml:"theme"` // "system" | "light" | "dark"
}

type ImportConfig struct {
	// Strict validates imported documents against the canvas schema and rejects
	// anything that is not an object of ten strings.
	Strict bool `yaml:"strict"`
}

type ExportConfig struct {
	Dir       string  `yaml:"dir"`
	BaseName  string  `yaml:"base_name"`
	PNGWidth  int     `yaml:"png_width"`
	PNGHeight int     `yaml:"png_height"`
	Scale     float64 `yaml:"scale"`
}

type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
	Keep    int  `yaml:"keep"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Import        ImportConfig  `yaml:"import"`
	Export        ExportConfig  `yaml:"export"`
	History       HistoryConfig `yaml:"history"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{Theme: "system"},
		Import:        ImportConfig{Strict: true},
		Export:        ExportConfig{Dir: ".", BaseName: "lean-canvas", PNGWidth: 1600, PNGHeight: 1000, Scale: 1},
		History:       HistoryConfig{Enabled: true, Keep: 200},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath   = "LCV_CONFIG"
	EnvImportStrict = "LCV_IMPORT_STRICT"
	EnvExportDir    = "LCV_EXPORT_DIR"
	EnvHistory      = "LCV_HISTORY"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "LCV_LOG_LEVEL"
	EnvLogFormat = "LCV_LOG_FORMAT"
	EnvLogSource = "LCV_LOG_SOURCE"
	EnvLogFile   = "LCV_LOG_FILE"
)

// ConfigPath returns the per-user config file path. LCV_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Dir is the per-user directory holding config.yaml and the history database.
func Dir() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return filepath.Dir(p), nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "LeanCanvas")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "LeanCanvas")
	default: // linux and others
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "leancanvas")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "leancanvas")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. A file that does not parse is reported, and the
// defaults plus overrides are still returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	var perr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg, data)
		} else {
			perr = fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, perr
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

// mergeInto copies the values set in the file over dst. raw lets booleans that
// default to true be told apart from absent keys.
func mergeInto(dst *AppConfig, src *AppConfig, raw []byte) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	present := presentKeys(raw)
	if present["import.strict"] {
		dst.Import.Strict = src.Import.Strict
	}
	if strings.TrimSpace(src.Export.Dir) != "" {
		dst.Export.Dir = strings.TrimSpace(src.Export.Dir)
	}
	if strings.TrimSpace(src.Export.BaseName) != "" {
		dst.Export.BaseName = strings.TrimSpace(src.Export.BaseName)
	}
	if src.Export.PNGWidth > 0 {
		dst.Export.PNGWidth = src.Export.PNGWidth
	}
	if src.Export.PNGHeight > 0 {
		dst.Export.PNGHeight = src.Export.PNGHeight
	}
	if src.Export.Scale > 0 {
		dst.Export.Scale = src.Export.Scale
	}
	if present["history.enabled"] {
		dst.History.Enabled = src.History.Enabled
	}
	if src.History.Keep > 0 {
		dst.History.Keep = src.History.Keep
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

// presentKeys lists "section.key" for every key written in the YAML document.
func presentKeys(raw []byte) map[string]bool {
	out := map[string]bool{}
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return out
	}
	for sec, n := range doc {
		if n.Kind != yaml.MappingNode {
			continue
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			out[sec+"."+n.Content[i].Value] = true
		}
	}
	return out
}

func parseBool(v string) bool {
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	lv := strings.ToLower(v)
	return lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvImportStrict)); v != "" {
		cfg.Import.Strict = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportDir)); v != "" {
		cfg.Export.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistory)); v != "" {
		cfg.History.Enabled = parseBool(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"import.strict":   EnvImportStrict,
		"export.dir":      EnvExportDir,
		"history.enabled": EnvHistory,
		"logging.level":   EnvLogLevel,
		"logging.format":  EnvLogFormat,
		"logging.source":  EnvLogSource,
		"logging.file":    EnvLogFile,
	}
	if env, ok := names[key]; ok && os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}

// LogOptions maps the logging section onto logger options.
func (l LoggingConfig) LogOptions() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}
