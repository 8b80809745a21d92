package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of all engine environment variables.
const EnvPrefix = "MCOD"

// Loader loads [Settings] via Viper.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment bindings
// configured.
func NewLoader() *Loader {
	v := viper.New()

	def := Default()
	v.SetDefault("state.backend", def.State.Backend)
	v.SetDefault("state.dir", def.State.Dir)
	v.SetDefault("agent.binary_path", def.Agent.BinaryPath)
	v.SetDefault("agent.work_dir", def.Agent.WorkDir)
	v.SetDefault("run.max_attempts", def.Run.MaxAttempts)
	v.SetDefault("output.truncate_lines", def.Output.TruncateLines)
	v.SetDefault("output.color", def.Output.Color)
	v.SetDefault("log.level", def.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short-form variables for the settings people override most.
	v.BindEnv("agent.binary_path", EnvPrefix+"_AGENT_PATH")
	v.BindEnv("state.backend", EnvPrefix+"_STATE_BACKEND")
	v.BindEnv("state.dir", EnvPrefix+"_STATE_DIR")
	v.BindEnv("log.level", EnvPrefix+"_LOG_LEVEL")

	return &Loader{v: v}
}

// Load resolves settings from the environment and the first config file
// found. Absence of a config file is not an error; defaults apply.
func (l *Loader) Load() (*Settings, error) {
	if path := os.Getenv(EnvPrefix + "_CONFIG_PATH"); path != "" {
		return l.LoadFromFile(path)
	}

	l.v.SetConfigName("mcod")
	l.v.SetConfigType("yaml")
	l.v.AddConfigPath(".")
	if home, err := os.UserConfigDir(); err == nil {
		l.v.AddConfigPath(home + "/mcod")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return l.unmarshal()
}

// LoadFromFile loads settings from an explicit config file path.
func (l *Loader) LoadFromFile(path string) (*Settings, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Settings, error) {
	var s Settings
	if err := l.v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error unmarshaling settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
