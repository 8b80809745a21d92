// Package cli implements the mcod command-line interface.
//
// The CLI wires the engine together: settings from [settings.NewLoader], a
// state store per the configured backend, an adapter registry with the agent
// backend registered, and the [server.Server] facade the commands talk to.
//
// Commands return an [ExitError] instead of calling os.Exit so behavior
// stays testable; [Execute] converts the error to a process exit code.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mcod/internal/adapter"
	"mcod/internal/adapter/agent"
	"mcod/internal/server"
	"mcod/internal/settings"
	"mcod/internal/state"
)

// AdapterAgent is the default backend name registered by [Execute].
const AdapterAgent = "agent"

// App carries the wired dependencies of the CLI commands.
type App struct {
	Settings *settings.Settings
	Server   *server.Server
	Log      *zap.Logger

	// Out receives command output; os.Stdout outside tests.
	Out io.Writer
}

// NewApp creates an App over pre-built dependencies.
func NewApp(s *settings.Settings, srv *server.Server, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		Settings: s,
		Server:   srv,
		Log:      log,
		Out:      os.Stdout,
	}
}

// NewRootCommand builds the root command with all subcommands attached.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "mcod",
		Short:         "Workflow orchestration for agent backends",
		Long:          "mcod turns declarative workflow directories into step directives,\nexecutes them through an agent backend, and tracks progress until\nevery step meets its success criteria.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCommand(app))
	root.AddCommand(newStatusCommand(app))
	root.AddCommand(newValidateCommand(app))
	root.AddCommand(newAdaptersCommand(app))
	return root
}

// Execute wires the application from settings and runs the root command,
// returning the process exit code.
func Execute() int {
	cfg, err := settings.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log, err := buildLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer log.Sync()

	store, err := buildStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	registry := adapter.NewRegistry()
	backend := agent.New(cfg.Agent.BinaryPath,
		agent.WithWorkDir(cfg.Agent.WorkDir),
		agent.WithExtraArgs(cfg.Agent.ExtraArgs...),
		agent.WithLogger(log))
	if err := registry.Register(AdapterAgent, backend); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	app := NewApp(cfg, server.New(store, registry, log), log)
	defer app.Server.Shutdown()

	if err := NewRootCommand(app).Execute(); err != nil {
		if code, ok := IsExitError(err); ok {
			return code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func buildStore(cfg *settings.Settings) (state.Store, error) {
	switch cfg.State.Backend {
	case settings.BackendFile:
		return state.NewFileStore(cfg.State.Dir)
	default:
		return state.NewMemoryStore(), nil
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}
