package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	def := Default()
	require.NoError(t, def.Validate())
	assert.Equal(t, BackendMemory, def.State.Backend)
	assert.Equal(t, "claude", def.Agent.BinaryPath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(s *Settings) {}, false},
		{"file backend with dir", func(s *Settings) { s.State.Backend = BackendFile }, false},
		{"unknown backend", func(s *Settings) { s.State.Backend = "redis" }, true},
		{"file backend without dir", func(s *Settings) { s.State.Backend = BackendFile; s.State.Dir = "" }, true},
		{"empty agent binary", func(s *Settings) { s.Agent.BinaryPath = "" }, true},
		{"negative max attempts", func(s *Settings) { s.Run.MaxAttempts = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoaderLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "test-config.yaml")
	configContent := `
state:
  backend: file
  dir: /var/lib/mcod
agent:
  binary_path: /custom/path/agent
output:
  truncate_lines: 50
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	cfg, err := NewLoader().LoadFromFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.State.Backend)
	assert.Equal(t, "/var/lib/mcod", cfg.State.Dir)
	assert.Equal(t, "/custom/path/agent", cfg.Agent.BinaryPath)
	assert.Equal(t, 50, cfg.Output.TruncateLines)
	// Untouched settings keep their defaults.
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoaderLoadFromFileNonExistent(t *testing.T) {
	_, err := NewLoader().LoadFromFile("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoaderEnvOverride(t *testing.T) {
	t.Setenv("MCOD_AGENT_PATH", "/env/agent")
	t.Setenv("MCOD_STATE_BACKEND", "file")
	t.Setenv("MCOD_STATE_DIR", "/env/state")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "/env/agent", cfg.Agent.BinaryPath)
	assert.Equal(t, BackendFile, cfg.State.Backend)
	assert.Equal(t, "/env/state", cfg.State.Dir)
}

func TestLoaderConfigPathEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("agent:\n  binary_path: /from/file\n"), 0o644))
	t.Setenv("MCOD_CONFIG_PATH", configPath)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "/from/file", cfg.Agent.BinaryPath)
}

func TestLoaderEnvBeatsFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("agent:\n  binary_path: /from/file\n"), 0o644))
	t.Setenv("MCOD_CONFIG_PATH", configPath)
	t.Setenv("MCOD_AGENT_PATH", "/from/env")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Agent.BinaryPath)
}

func TestLoaderDefaultsWithNoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(originalWd)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.State.Backend)
	assert.Equal(t, "claude", cfg.Agent.BinaryPath)
}

func TestLoaderRejectsInvalidSettings(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("state:\n  backend: redis\n"), 0o644))

	_, err := NewLoader().LoadFromFile(configPath)
	assert.Error(t, err)
}
