// Package server is the top-level facade of the orchestration engine.
//
// A [Server] ties together configuration loading, the state store, the
// adapter registry, and the orchestrator behind one API: start a workflow
// directory, pull and execute directives, feed results back, and inspect
// status. Callers that embed the engine talk to this package only.
package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mcod/internal/adapter"
	"mcod/internal/config"
	"mcod/internal/evaluator"
	"mcod/internal/orchestrator"
	"mcod/internal/state"
)

// Server coordinates workflow runs end to end. All methods are safe for
// concurrent use.
type Server struct {
	orch     *orchestrator.Orchestrator
	registry *adapter.Registry
	log      *zap.Logger

	// mu guards configs, the per-directory parse cache. Configuration is
	// immutable once loaded, so concurrent runs share entries.
	mu      sync.Mutex
	configs map[string]*config.WorkflowConfig
}

// New creates a server over the given store and adapter registry. A nil
// logger disables logging.
func New(store state.Store, registry *adapter.Registry, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		orch:     orchestrator.New(store, log),
		registry: registry,
		log:      log,
		configs:  make(map[string]*config.WorkflowConfig),
	}
}

// Start loads the workflow directory and begins a new orchestration with a
// generated id. Variable overrides are merged over the workflow's data
// variables before the first directive is issued.
func (s *Server) Start(dir, adapterName string, overrides map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.start(id, dir, adapterName, overrides); err != nil {
		return "", err
	}
	return id, nil
}

// Resume rebinds an existing orchestration id to its workflow directory and
// backend, picking up durable progress from the store. Resuming an id the
// store has never seen is equivalent to starting it fresh under that id.
func (s *Server) Resume(id, dir, adapterName string) error {
	return s.start(id, dir, adapterName, nil)
}

func (s *Server) start(id, dir, adapterName string, overrides map[string]any) error {
	cfg, err := s.loadConfig(dir)
	if err != nil {
		return err
	}

	backend, err := s.registry.Get(adapterName)
	if err != nil {
		return err
	}

	if err := s.orch.Start(id, cfg, backend); err != nil {
		return err
	}

	if len(overrides) > 0 {
		if err := s.orch.OverrideVariables(id, overrides); err != nil {
			return err
		}
	}

	s.log.Info("workflow started",
		zap.String("orchestration_id", id),
		zap.String("dir", dir),
		zap.String("adapter", adapterName))
	return nil
}

// NextDirective returns the current directive for an orchestration.
func (s *Server) NextDirective(id string) (adapter.Directive, error) {
	return s.orch.NextDirective(id)
}

// ExecuteDirective runs the current directive through the orchestration's
// backend and returns the raw result without evaluating it.
func (s *Server) ExecuteDirective(ctx context.Context, id string) (adapter.Result, error) {
	return s.orch.ExecuteDirective(ctx, id)
}

// ProcessResult evaluates a result and advances the orchestration when the
// step passed.
func (s *Server) ProcessResult(id string, result adapter.Result) (evaluator.Evaluation, error) {
	return s.orch.ProcessResult(id, result)
}

// Status reports an orchestration's progress.
func (s *Server) Status(id string) (orchestrator.StatusReport, error) {
	return s.orch.Status(id)
}

// Adapters lists the registered backend names.
func (s *Server) Adapters() []string {
	return s.registry.Names()
}

// Shutdown releases all backend resources.
func (s *Server) Shutdown() error {
	return s.registry.Cleanup()
}

func (s *Server) loadConfig(dir string) (*config.WorkflowConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg, ok := s.configs[dir]; ok {
		return cfg, nil
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow from %s: %w", dir, err)
	}
	s.configs[dir] = cfg
	return cfg, nil
}
