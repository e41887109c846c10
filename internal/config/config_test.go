package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
llm:
  provider: mock
  model: canned
admin:
  username: owner
  password: s3cret
store:
  tax_rate: "0.06"
logger:
  mode: production
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, "canned", cfg.LLM.Model)
	assert.Equal(t, "owner", cfg.Admin.Username)
	assert.Equal(t, "s3cret", cfg.Admin.Password)
	assert.Equal(t, "0.06", cfg.Store.TaxRate)
	assert.Equal(t, "production", cfg.Logger.Mode)

	// untouched keys fall back to defaults
	assert.Equal(t, "GEMINI_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, 0.7, cfg.LLM.Temperature)
	assert.Equal(t, "RM", cfg.Store.Currency)
	assert.Equal(t, int64(1), cfg.Catalog.NodeID)
}

func TestEnvOverride(t *testing.T) {
	path := writeConfig(t, "llm:\n  provider: gemini\n")
	t.Setenv("BUILDRIGHT_LLM_PROVIDER", "mock")
	t.Setenv("BUILDRIGHT_SERVER_ADDR", ":7070")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoadConfigWithoutFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, "123", cfg.Admin.Password)
	assert.Equal(t, "0.08", cfg.Store.TaxRate)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFileMalformed(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")
	_, err := LoadFile(path)
	assert.Error(t, err)
}
