// Package config resolves the MOS agent configuration once at process start.
//
// Values come from an optional YAML file overlaid by environment variables;
// the environment always wins so container deployments can override a baked-in
// file without editing it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults mirroring the deployed service.
const (
	DefaultProfileDir    = "/opt/mos_profile"
	DefaultPageTimeoutMS = 30000
	DefaultModel         = "gpt-4o-mini"
	DefaultListenAddr    = ":8000"
)

// Config holds all settings the agent reads. It is resolved once in main and
// passed down; no component re-reads the environment after startup.
type Config struct {
	// ProfileDir is the preferred persistent browser profile directory.
	// If it cannot be created, ~/.mos_profile is tried instead.
	ProfileDir string `yaml:"profile_dir"`

	// PageTimeout bounds every UI-facing wait (navigation, element
	// resolution, login completion).
	PageTimeout time.Duration `yaml:"-"`

	// PageTimeoutMS is the YAML/env representation of PageTimeout.
	PageTimeoutMS int `yaml:"page_timeout_ms"`

	// Headless controls the default browser mode.
	Headless bool `yaml:"headless"`

	// LoginUser and LoginPassword are the optional portal credentials. When
	// unset, a detected login wall surfaces ErrAuthenticationRequired so a
	// headed session can be completed manually.
	LoginUser     string `yaml:"login_user"`
	LoginPassword string `yaml:"login_password"`

	// OpenAIAPIKey, OpenAIModel and OpenAIBaseURL configure the LLM
	// collaborator. Chat endpoints are disabled when the key is empty.
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIModel   string `yaml:"openai_model"`
	OpenAIBaseURL string `yaml:"openai_base_url"`

	// ListenAddr is the HTTP bind address.
	ListenAddr string `yaml:"listen_addr"`

	// MaxToolRounds caps the tool-dispatch loop.
	MaxToolRounds int `yaml:"max_tool_rounds"`
}

// Load resolves configuration from the YAML file at path (optional; "" means
// ~/.mos-agent/config.yaml, and a missing file is not an error) overlaid by
// the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ProfileDir:    DefaultProfileDir,
		PageTimeoutMS: DefaultPageTimeoutMS,
		Headless:      true,
		OpenAIModel:   DefaultModel,
		ListenAddr:    DefaultListenAddr,
		MaxToolRounds: 6,
	}

	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".mos-agent", "config.yaml")
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.PageTimeoutMS <= 0 {
		cfg.PageTimeoutMS = DefaultPageTimeoutMS
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = 6
	}
	cfg.PageTimeout = time.Duration(cfg.PageTimeoutMS) * time.Millisecond

	return cfg, nil
}

// applyEnv overlays environment variables onto cfg. Empty variables leave the
// existing value in place.
func applyEnv(cfg *Config) {
	if v := os.Getenv("MOS_PROFILE_DIR"); v != "" {
		cfg.ProfileDir = v
	}
	if v := os.Getenv("MOS_PAGE_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.PageTimeoutMS = ms
		}
	}
	if v := os.Getenv("MOS_HEADLESS"); v != "" {
		cfg.Headless = parseBool(v)
	}
	if v := os.Getenv("MOS_LOGIN_USER"); v != "" {
		cfg.LoginUser = v
	}
	if v := os.Getenv("MOS_LOGIN_PASSWORD"); v != "" {
		cfg.LoginPassword = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.OpenAIModel = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAIBaseURL = v
	}
	if v := os.Getenv("MOS_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("MOS_MAX_TOOL_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxToolRounds = n
		}
	}
}

// parseBool accepts the truthy spellings the original deployment used.
func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// HasCredentials reports whether portal credentials are configured.
func (c *Config) HasCredentials() bool {
	return c.LoginUser != "" && c.LoginPassword != ""
}
