// Package agent executes directives through an external agent CLI.
//
// The [Agent] adapter renders a directive into a single prompt, spawns the
// agent binary in streaming JSON mode, and folds the session's streamed
// output into an [adapter.Result]. A session that runs but fails is reported
// through the result status; only infrastructure failures (the binary cannot
// be started) surface as errors.
package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"mcod/internal/adapter"
)

// DefaultBinary is the agent CLI spawned when none is configured.
const DefaultBinary = "claude"

// defaultArgs puts the agent into non-interactive streaming mode.
var defaultArgs = []string{"--dangerously-skip-permissions", "--output-format", "stream-json"}

// Agent runs directives through an external agent CLI process, one process
// per directive.
type Agent struct {
	binary  string
	args    []string
	workDir string
	log     *zap.Logger
}

// Option configures an [Agent].
type Option func(*Agent)

// WithArgs replaces the default CLI arguments placed before the prompt.
func WithArgs(args ...string) Option {
	return func(a *Agent) { a.args = args }
}

// WithExtraArgs appends to the CLI arguments placed before the prompt.
func WithExtraArgs(args ...string) Option {
	return func(a *Agent) { a.args = append(a.args, args...) }
}

// WithWorkDir sets the working directory of spawned processes.
func WithWorkDir(dir string) Option {
	return func(a *Agent) { a.workDir = dir }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(a *Agent) { a.log = log }
}

// New creates an agent adapter for the given binary. An empty binary name
// selects [DefaultBinary].
func New(binary string, opts ...Option) *Agent {
	if binary == "" {
		binary = DefaultBinary
	}
	a := &Agent{
		binary: binary,
		args:   append([]string(nil), defaultArgs...),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Execute implements [adapter.Adapter].
func (a *Agent) Execute(ctx context.Context, d adapter.Directive) (adapter.Result, error) {
	prompt := renderPrompt(d)

	args := append(append([]string{}, a.args...), "-p", prompt)
	cmd := exec.CommandContext(ctx, a.binary, args...)
	cmd.Dir = a.workDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return adapter.Result{}, fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return adapter.Result{}, fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return adapter.Result{}, fmt.Errorf("failed to start agent %q: %w", a.binary, err)
	}

	a.log.Debug("agent session started",
		zap.String("binary", a.binary),
		zap.String("step_id", d.StepID))

	stderrTail := make(chan string, 1)
	go func() {
		var last string
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			last = scanner.Text()
		}
		stderrTail <- last
	}()

	var (
		output strings.Builder
		final  Event
	)
	for event := range parseStream(stdout) {
		if event.Text != "" {
			if output.Len() > 0 {
				output.WriteString("\n")
			}
			output.WriteString(event.Text)
		}
		if event.Final {
			final = event
		}
	}

	waitErr := cmd.Wait()
	lastStderr := <-stderrTail

	result := adapter.Result{
		Output: output.String(),
		Status: adapter.StatusSuccess,
	}
	if final.Result != "" {
		result.Output = final.Result
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return adapter.Result{}, fmt.Errorf("agent %q failed: %w", a.binary, waitErr)
		}
		result.Status = adapter.StatusError
		result.Error = fmt.Sprintf("agent exited with code %d", exitErr.ExitCode())
		if lastStderr != "" {
			result.Error = fmt.Sprintf("%s: %s", result.Error, lastStderr)
		}
		a.log.Warn("agent session failed",
			zap.String("step_id", d.StepID),
			zap.Int("exit_code", exitErr.ExitCode()))
		return result, nil
	}

	if final.Failed {
		result.Status = adapter.StatusError
		result.Error = "agent reported an error result"
	}
	return result, nil
}

// Cleanup implements [adapter.Adapter]. Processes are per-directive, so
// there is nothing to release.
func (a *Agent) Cleanup() error { return nil }
