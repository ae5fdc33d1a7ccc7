// ABOUTME: Tests for TOML config loading and validation
// ABOUTME: Covers defaults, env expansion, and URL/mode validation failures

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTOML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tui.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Full(t *testing.T) {
	path := writeTOML(t, `
[server]
url = "https://chat.example.com"

[display]
mode = "last-turn"
collapsible = true
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://chat.example.com", cfg.Server.URL)
	assert.Equal(t, "last-turn", cfg.Display.Mode)
	assert.True(t, cfg.Display.Collapsible)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8484", cfg.Server.URL)
	assert.Equal(t, "full", cfg.Display.Mode)
}

func TestLoadConfig_ExpandsEnvVars(t *testing.T) {
	t.Setenv("WEFT_SERVER_URL", "http://10.0.0.5:9000")
	path := writeTOML(t, `
[server]
url = "${WEFT_SERVER_URL}"
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000", cfg.Server.URL)
}

func TestLoadConfig_RejectsBadScheme(t *testing.T) {
	path := writeTOML(t, `
[server]
url = "ftp://example.com"
`)

	_, err := loadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http or https")
}

func TestLoadConfig_RejectsBadMode(t *testing.T) {
	path := writeTOML(t, `
[server]
url = "http://localhost:8484"

[display]
mode = "sideways"
`)

	_, err := loadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display.mode")
}
