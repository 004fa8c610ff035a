package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv points HOME at an empty directory and blanks every variable the
// loader reads, so tests see only what they set themselves.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{
		"MOS_PROFILE_DIR", "MOS_PAGE_TIMEOUT_MS", "MOS_HEADLESS",
		"MOS_LOGIN_USER", "MOS_LOGIN_PASSWORD",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
		"MOS_LISTEN_ADDR", "MOS_MAX_TOOL_ROUNDS",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultProfileDir, cfg.ProfileDir)
	assert.Equal(t, 30*time.Second, cfg.PageTimeout)
	assert.True(t, cfg.Headless)
	assert.Equal(t, DefaultModel, cfg.OpenAIModel)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, 6, cfg.MaxToolRounds)
	assert.False(t, cfg.HasCredentials())
}

func TestLoadFromFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profile_dir: /data/profile
page_timeout_ms: 5000
headless: false
login_user: user@example.com
login_password: hunter2
openai_model: gpt-4o
listen_addr: ":9000"
max_tool_rounds: 10
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/profile", cfg.ProfileDir)
	assert.Equal(t, 5*time.Second, cfg.PageTimeout)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 10, cfg.MaxToolRounds)
	assert.True(t, cfg.HasCredentials())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile_dir: /from/file\npage_timeout_ms: 5000\n"), 0o600))

	t.Setenv("MOS_PROFILE_DIR", "/from/env")
	t.Setenv("MOS_PAGE_TIMEOUT_MS", "1500")
	t.Setenv("MOS_HEADLESS", "no")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MOS_LISTEN_ADDR", ":7000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.ProfileDir)
	assert.Equal(t, 1500*time.Millisecond, cfg.PageTimeout)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, ":7000", cfg.ListenAddr)
}

func TestLoadMissingFileNotAnError(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultProfileDir, cfg.ProfileDir)
}

func TestLoadMalformedFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile_dir: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadInvalidTimeoutFallsBack(t *testing.T) {
	isolateEnv(t)
	t.Setenv("MOS_PAGE_TIMEOUT_MS", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.PageTimeout)
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{" Yes ", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"on", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseBool(tt.in))
		})
	}
}

func TestHeadlessEnvSpellings(t *testing.T) {
	isolateEnv(t)

	t.Setenv("MOS_HEADLESS", "yes")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Headless)

	t.Setenv("MOS_HEADLESS", "0")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Headless)
}
