// Package executor runs out-of-process SVM solvers over hashicorp/go-plugin.
package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/colourmask/internal/plugin/solver"
	"github.com/jmylchreest/colourmask/internal/svm"
	"github.com/jmylchreest/colourmask/pkg/plugin"
)

// remoteSolver is the host view of a dispensed solver.
type remoteSolver interface {
	Train(ctx context.Context, problem plugin.Problem, params plugin.Params) (*plugin.Model, error)
	GetMetadata() (plugin.PluginInfo, error)
}

// Executor trains models in a solver plugin process. It implements svm.Trainer.
// The process is started on first use and stays up until Close.
type Executor struct {
	path   string
	logger hclog.Logger

	mu     sync.Mutex
	client *goplugin.Client
	solver remoteSolver
	dial   func() (remoteSolver, error)
}

// New creates an Executor for the plugin binary at path. The process is not
// started until the first Train call.
func New(path string, logger hclog.Logger) (*Executor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat solver plugin: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("solver plugin path is a directory: %s", path)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return nil, fmt.Errorf("solver plugin is not executable: %s", path)
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	e := &Executor{
		path:   path,
		logger: logger.Named("plugin"),
	}
	e.dial = e.dialProcess
	return e, nil
}

// Train implements svm.Trainer. Inputs are validated locally first so the
// plugin only ever sees well-formed requests.
func (e *Executor) Train(ctx context.Context, p svm.Problem, params svm.Params) (*svm.Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	remote, err := e.connect()
	if err != nil {
		return nil, err
	}

	e.logger.Debug("training in plugin", "path", e.path, "samples", len(p.Samples), "kernel", params.Kernel)

	m, err := remote.Train(ctx, solver.ProblemToWire(p), solver.ParamsToWire(params))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// The plugin keeps solving after the host gives up.
			e.Close()
			return nil, ctxErr
		}
		return nil, fmt.Errorf("solver plugin %s: %w", e.path, solver.ErrorFromWire(err))
	}

	model, err := solver.ModelFromWire(m, len(p.Samples[0]))
	if err != nil {
		return nil, fmt.Errorf("solver plugin %s: %w", e.path, err)
	}
	return model, nil
}

// Metadata returns the plugin's self description, starting it if needed.
func (e *Executor) Metadata() (plugin.PluginInfo, error) {
	remote, err := e.connect()
	if err != nil {
		return plugin.PluginInfo{}, err
	}
	info, err := remote.GetMetadata()
	if err != nil {
		return plugin.PluginInfo{}, fmt.Errorf("failed to get plugin metadata: %w", err)
	}
	return info, nil
}

// Close kills the plugin process if one is running.
func (e *Executor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client != nil {
		e.client.Kill()
		e.client = nil
	}
	e.solver = nil
}

func (e *Executor) connect() (remoteSolver, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.solver != nil {
		return e.solver, nil
	}
	remote, err := e.dial()
	if err != nil {
		return nil, err
	}
	e.solver = remote
	return remote, nil
}

// dialProcess starts the plugin binary. Callers hold e.mu.
func (e *Executor) dialProcess() (remoteSolver, error) {
	e.client = goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig:  plugin.Handshake,
		Plugins:          plugin.PluginMap(nil),
		Cmd:              exec.Command(e.path), // #nosec G204 - user-configured plugin path
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger:           e.logger,
	})

	rpcClient, err := e.client.Client()
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(plugin.SolverPluginName)
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	remote, ok := raw.(*plugin.SolverRPCClient)
	if !ok {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("plugin dispensed unexpected type %T", raw)
	}
	return remote, nil
}
