// Package settings provides engine configuration loading and management.
//
// Settings are loaded using Viper, supporting YAML config files and
// environment variable overrides. Defaults work out of the box; a config
// file customizes the state store, agent backend, and output formatting.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (MCOD_ prefix)
//  2. Config file specified by MCOD_CONFIG_PATH
//  3. ./mcod.yaml
//  4. [Default] values
package settings

import "fmt"

// State store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
)

// Settings is the root configuration of the engine.
type Settings struct {
	// State configures the orchestration state store.
	State StateSettings `mapstructure:"state"`

	// Agent configures the external agent backend.
	Agent AgentSettings `mapstructure:"agent"`

	// Run configures directive execution loops.
	Run RunSettings `mapstructure:"run"`

	// Output configures terminal output formatting.
	Output OutputSettings `mapstructure:"output"`

	// Log configures structured logging.
	Log LogSettings `mapstructure:"log"`
}

// StateSettings selects and configures the state store backend.
type StateSettings struct {
	// Backend is "memory" or "file".
	Backend string `mapstructure:"backend"`

	// Dir is the directory for the file backend.
	Dir string `mapstructure:"dir"`
}

// AgentSettings configures the agent CLI adapter.
type AgentSettings struct {
	// BinaryPath is the agent executable.
	BinaryPath string `mapstructure:"binary_path"`

	// WorkDir is the working directory of spawned agent processes.
	// Empty means the current directory.
	WorkDir string `mapstructure:"work_dir"`

	// ExtraArgs are appended to the agent's default CLI arguments.
	ExtraArgs []string `mapstructure:"extra_args"`
}

// RunSettings configures the run command's execution loop.
type RunSettings struct {
	// MaxAttempts bounds how often a failing step is retried before the
	// run command gives up. Zero means retry without bound.
	MaxAttempts int `mapstructure:"max_attempts"`
}

// OutputSettings configures terminal output.
type OutputSettings struct {
	// TruncateLines limits how many lines of step output are echoed.
	TruncateLines int `mapstructure:"truncate_lines"`

	// Color enables styled output.
	Color bool `mapstructure:"color"`
}

// LogSettings configures structured logging.
type LogSettings struct {
	// Level is debug, info, warn, or error.
	Level string `mapstructure:"level"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		State: StateSettings{
			Backend: BackendMemory,
			Dir:     ".mcod/state",
		},
		Agent: AgentSettings{
			BinaryPath: "claude",
		},
		Run: RunSettings{
			MaxAttempts: 0,
		},
		Output: OutputSettings{
			TruncateLines: 20,
			Color:         true,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// Validate checks settings consistency.
func (s *Settings) Validate() error {
	switch s.State.Backend {
	case BackendMemory, BackendFile:
	default:
		return fmt.Errorf("invalid state backend %q (want %q or %q)", s.State.Backend, BackendMemory, BackendFile)
	}
	if s.State.Backend == BackendFile && s.State.Dir == "" {
		return fmt.Errorf("state dir must be set for the file backend")
	}
	if s.Agent.BinaryPath == "" {
		return fmt.Errorf("agent binary path must not be empty")
	}
	if s.Run.MaxAttempts < 0 {
		return fmt.Errorf("max attempts must not be negative")
	}
	return nil
}
