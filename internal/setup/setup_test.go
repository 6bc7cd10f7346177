package setup

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigPath(t *testing.T) {
	home := func() (string, error) { return "/home/ana", nil }
	env := func(vals map[string]string) func(string) string {
		return func(k string) string { return vals[k] }
	}

	tests := []struct {
		name string
		goos string
		env  map[string]string
		want string
		err  bool
	}{
		{"darwin", "darwin", nil, "/home/ana/Library/Application Support/Claude/claude_desktop_config.json", false},
		{"linux", "linux", nil, "/home/ana/.config/Claude/claude_desktop_config.json", false},
		{"linux xdg", "linux", map[string]string{"XDG_CONFIG_HOME": "/xdg"}, "/xdg/Claude/claude_desktop_config.json", false},
		{"windows", "windows", map[string]string{"APPDATA": "/appdata"}, filepath.Join("/appdata", "Claude", "claude_desktop_config.json"), false},
		{"windows without appdata", "windows", nil, "", true},
		{"plan9", "plan9", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := configPath(tt.goos, env(tt.env), home)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := configPath("darwin", env(nil), func() (string, error) { return "", errors.New("no home") })
	assert.Error(t, err)
}

func TestConfigurePreservesOtherEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "claude", "config.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{
  "globalShortcut": "Ctrl+Space",
  "mcpServers": {"other": {"command": "/bin/other"}}
}`), 0o644))

	binary := filepath.Join(dir, BinaryName)
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755))

	written, err := Configure(Options{ConfigPath: path, BinaryPath: binary, DataDir: "/data/lab"})
	require.NoError(t, err)
	assert.Equal(t, path, written)

	var raw map[string]json.RawMessage
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `"Ctrl+Space"`, string(raw["globalShortcut"]))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/bin/other", cfg.MCPServers["other"].Command)
	assert.Equal(t, binary, cfg.MCPServers[ServerName].Command)
	assert.Equal(t, "/data/lab", cfg.MCPServers[ServerName].Env[DataDirEnv])

	status, err := Inspect(path)
	require.NoError(t, err)
	assert.True(t, status.Configured)
	assert.Empty(t, status.Issues)
	assert.Equal(t, "/data/lab", status.DataDir)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		status, err := Inspect(filepath.Join(dir, "absent.json"))
		require.NoError(t, err)
		assert.False(t, status.Configured)
		assert.Equal(t, []string{"server is not registered"}, status.Issues)
	})

	t.Run("binary gone", func(t *testing.T) {
		path := filepath.Join(dir, "gone.json")
		require.NoError(t, Save(path, &DesktopConfig{MCPServers: map[string]MCPServerConfig{
			ServerName: {Command: filepath.Join(dir, "nothing-here")},
		}}))
		status, err := Inspect(path)
		require.NoError(t, err)
		assert.True(t, status.Configured)
		require.Len(t, status.Issues, 1)
		assert.Contains(t, status.Issues[0], "not found")
	})

	t.Run("not executable", func(t *testing.T) {
		binary := filepath.Join(dir, "plain")
		require.NoError(t, os.WriteFile(binary, []byte("x"), 0o644))
		path := filepath.Join(dir, "plain.json")
		require.NoError(t, Save(path, &DesktopConfig{MCPServers: map[string]MCPServerConfig{
			ServerName: {Command: binary},
		}}))
		status, err := Inspect(path)
		require.NoError(t, err)
		require.Len(t, status.Issues, 1)
		assert.Contains(t, status.Issues[0], "not executable")
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
		_, err := Inspect(path)
		assert.Error(t, err)
	})
}
