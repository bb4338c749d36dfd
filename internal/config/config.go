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

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal, so newer files load in older builds.

type WorkspaceConfig struct {
	// Dir is where layout and canvas records live. Empty means the
	// platform default under the user's data directory.
	Dir string `yaml:"dir"`
	// AutosaveCanvas disables dynamic-canvas autosave when false. Static
	// canvases always require an explicit save regardless. Tri-state so a
	// config file that omits the key keeps the default (enabled) instead of
	// silently switching autosave off.
	AutosaveCanvas *bool `yaml:"autosave_canvas,omitempty"`
}

// AutosaveEnabled resolves the tri-state autosave setting; unset means on.
func (w WorkspaceConfig) AutosaveEnabled() bool {
	return w.AutosaveCanvas == nil || *w.AutosaveCanvas
}

type SyncConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type GeneralConfig struct {
	Theme        string `yaml:"theme"` // "system" | "light" | "dark"
	EnableServer bool   `yaml:"enable_server"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	General       GeneralConfig   `yaml:"general"`
	Workspace     WorkspaceConfig `yaml:"workspace"`
	Sync          SyncConfig      `yaml:"sync"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{Theme: "system", EnableServer: false},
		Workspace:     WorkspaceConfig{Dir: ""},
		Sync:          SyncConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000, TLSInsecure: false},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvWorkspaceDir  = "GSH_WORKSPACE_DIR"
	EnvAutosave      = "GSH_AUTOSAVE_CANVAS"
	EnvSyncURL       = "GSH_SYNC_URL"
	EnvSyncTimeoutMs = "GSH_SYNC_TIMEOUT_MS"
	EnvTLSInsecure   = "GSH_TLS_INSECURE"
	EnvEnableServer  = "GSH_ENABLE_SERVER"
	EnvLogLevel      = "GSH_LOG_LEVEL"
	EnvLogFormat     = "GSH_LOG_FORMAT"
	EnvLogSource     = "GSH_LOG_SOURCE"
	EnvLogFile       = "GSH_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService = "GridShell"
	keyringToken   = "sync_token"
)

// TokenStore abstracts the keyring so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var tokenStore TokenStore = &osKeyring{}

// SetTokenStore replaces the keyring backend, returning the previous one.
func SetTokenStore(ts TokenStore) TokenStore {
	prev := tokenStore
	tokenStore = ts
	return prev
}

type osKeyring struct{}

func (k *osKeyring) Get(service, key string) (string, error) {
	return keyring.Get(service, key)
}
func (k *osKeyring) Set(service, key, value string) error {
	return keyring.Set(service, key, value)
}
func (k *osKeyring) Delete(service, key string) error {
	return keyring.Delete(service, key)
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GridShell")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GridShell")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "gridshell")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// DefaultWorkspaceDir is where records land when workspace.dir is unset.
func DefaultWorkspaceDir() string {
	switch runtime.GOOS {
	case "windows":
		if base := os.Getenv("AppData"); base != "" {
			return filepath.Join(base, "GridShell", "workspace")
		}
		return filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming", "GridShell", "workspace")
	case "darwin":
		return filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GridShell", "workspace")
	default:
		return filepath.Join(os.Getenv("HOME"), ".local", "share", "gridshell", "workspace")
	}
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// The sync token is loaded from the keyring and returned separately, never kept in the struct.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into the OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
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
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

// ClearToken removes the sync token from the keyring.
func ClearToken() error {
	return tokenStore.Delete(keyringService, keyringToken)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.EnableServer = src.General.EnableServer
	if src.Workspace.AutosaveCanvas != nil {
		dst.Workspace.AutosaveCanvas = src.Workspace.AutosaveCanvas
	}
	if strings.TrimSpace(src.Workspace.Dir) != "" {
		dst.Workspace.Dir = strings.TrimSpace(src.Workspace.Dir)
	}
	if src.Sync.BaseURL != "" {
		dst.Sync.BaseURL = src.Sync.BaseURL
	}
	if src.Sync.TimeoutMs != 0 {
		dst.Sync.TimeoutMs = src.Sync.TimeoutMs
	}
	dst.Sync.TLSInsecure = src.Sync.TLSInsecure
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
	if v := strings.TrimSpace(os.Getenv(EnvWorkspaceDir)); v != "" {
		cfg.Workspace.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutosave)); v != "" {
		on := isTruthy(v)
		cfg.Workspace.AutosaveCanvas = &on
	}
	if v := strings.TrimSpace(os.Getenv(EnvSyncURL)); v != "" {
		cfg.Sync.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSyncTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sync.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTLSInsecure)); v != "" {
		cfg.Sync.TLSInsecure = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvEnableServer)); v != "" {
		cfg.General.EnableServer = isTruthy(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func isTruthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var name string
	switch key {
	case "workspace.dir":
		name = EnvWorkspaceDir
	case "workspace.autosave_canvas":
		name = EnvAutosave
	case "sync.base_url":
		name = EnvSyncURL
	case "sync.timeout_ms":
		name = EnvSyncTimeoutMs
	case "sync.tls_insecure":
		name = EnvTLSInsecure
	case "general.enable_server":
		name = EnvEnableServer
	case "logging.level":
		name = EnvLogLevel
	case "logging.format":
		name = EnvLogFormat
	case "logging.source":
		name = EnvLogSource
	case "logging.file":
		name = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(name) != "" {
		return name, true
	}
	return "", false
}

// EffectiveWorkspaceDir resolves the workspace directory, falling back to
// the platform default when unset.
func (w WorkspaceConfig) EffectiveWorkspaceDir() string {
	if strings.TrimSpace(w.Dir) != "" {
		return w.Dir
	}
	return DefaultWorkspaceDir()
}
