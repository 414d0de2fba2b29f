// Package solver bridges svm trainers and the public solver plugin protocol.
package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jmylchreest/colourmask/internal/svm"
	"github.com/jmylchreest/colourmask/internal/version"
	"github.com/jmylchreest/colourmask/pkg/plugin"
)

// Solver serves an svm.Trainer as a plugin.Solver.
type Solver struct {
	trainer svm.Trainer
	info    plugin.PluginInfo
}

// New wraps trainer. The metadata name is used in host logs.
func New(name, description string, trainer svm.Trainer) *Solver {
	kernels := make([]string, 0, len(svm.ValidKernels()))
	for _, k := range svm.ValidKernels() {
		kernels = append(kernels, string(k))
	}
	return &Solver{
		trainer: trainer,
		info: plugin.PluginInfo{
			Name:            name,
			Version:         version.Short(),
			ProtocolVersion: plugin.ProtocolVersion,
			Description:     description,
			Kernels:         kernels,
		},
	}
}

// Train implements plugin.Solver.
func (s *Solver) Train(ctx context.Context, problem plugin.Problem, params plugin.Params) (*plugin.Model, error) {
	m, err := s.trainer.Train(ctx, ProblemFromWire(problem), ParamsFromWire(params))
	if err != nil {
		return nil, &plugin.RPCError{Code: codeFor(err), Message: err.Error()}
	}
	return ModelToWire(m), nil
}

// GetMetadata implements plugin.Solver.
func (s *Solver) GetMetadata() plugin.PluginInfo {
	return s.info
}

func codeFor(err error) plugin.ErrorCode {
	switch {
	case errors.Is(err, svm.ErrInvalidParameters):
		return plugin.CodeInvalidParameters
	case errors.Is(err, svm.ErrInvalidProblem):
		return plugin.CodeInvalidProblem
	case errors.Is(err, svm.ErrDegenerateKernel):
		return plugin.CodeDegenerateKernel
	default:
		return ""
	}
}

// ErrorFromWire restores the svm sentinel behind a coded plugin error.
func ErrorFromWire(err error) error {
	var rpcErr *plugin.RPCError
	if !errors.As(err, &rpcErr) {
		return err
	}
	switch rpcErr.Code {
	case plugin.CodeInvalidParameters:
		return fmt.Errorf("%w: %s", svm.ErrInvalidParameters, rpcErr.Message)
	case plugin.CodeInvalidProblem:
		return fmt.Errorf("%w: %s", svm.ErrInvalidProblem, rpcErr.Message)
	case plugin.CodeDegenerateKernel:
		return fmt.Errorf("%w: %s", svm.ErrDegenerateKernel, rpcErr.Message)
	default:
		return err
	}
}

// ProblemToWire converts a training set for transport.
func ProblemToWire(p svm.Problem) plugin.Problem {
	return plugin.Problem{Samples: p.Samples, Labels: p.Labels}
}

// ProblemFromWire converts a received training set.
func ProblemFromWire(p plugin.Problem) svm.Problem {
	return svm.Problem{Samples: p.Samples, Labels: p.Labels}
}

// ParamsToWire converts training parameters for transport.
func ParamsToWire(p svm.Params) plugin.Params {
	return plugin.Params{Kernel: string(p.Kernel), C: p.C, Gamma: p.Gamma}
}

// ParamsFromWire converts received training parameters.
func ParamsFromWire(p plugin.Params) svm.Params {
	return svm.Params{Kernel: svm.Kernel(p.Kernel), C: p.C, Gamma: p.Gamma}
}

// ModelToWire converts a trained model for transport.
func ModelToWire(m *svm.Model) *plugin.Model {
	return &plugin.Model{
		Kernel:         string(m.Kernel),
		C:              m.C,
		Gamma:          m.Gamma,
		SupportVectors: m.SupportVectors,
		Coefficients:   m.Coefficients,
		Rho:            m.Rho,
		Iterations:     m.Iterations,
	}
}

// ModelFromWire converts and checks a received model.
func ModelFromWire(m *plugin.Model, dim int) (*svm.Model, error) {
	if m == nil {
		return nil, errors.New("plugin returned no model")
	}
	kernel := svm.Kernel(m.Kernel)
	if !kernel.Valid() {
		return nil, fmt.Errorf("plugin returned unknown kernel %q", m.Kernel)
	}
	if len(m.SupportVectors) != len(m.Coefficients) {
		return nil, fmt.Errorf("plugin returned %d support vectors but %d coefficients",
			len(m.SupportVectors), len(m.Coefficients))
	}
	if !finite(m.Rho) || !finite(m.Gamma) || !finite(m.C) {
		return nil, fmt.Errorf("plugin returned non-finite parameters (rho %v, gamma %v, C %v)", m.Rho, m.Gamma, m.C)
	}
	for i, sv := range m.SupportVectors {
		if len(sv) != dim {
			return nil, fmt.Errorf("support vector %d has dimension %d, want %d", i, len(sv), dim)
		}
		if !finite(m.Coefficients[i]) {
			return nil, fmt.Errorf("coefficient %d is %v", i, m.Coefficients[i])
		}
		for j, v := range sv {
			if !finite(v) {
				return nil, fmt.Errorf("support vector %d component %d is %v", i, j, v)
			}
		}
	}
	return &svm.Model{
		Kernel:         kernel,
		C:              m.C,
		Gamma:          m.Gamma,
		SupportVectors: m.SupportVectors,
		Coefficients:   m.Coefficients,
		Rho:            m.Rho,
		Iterations:     m.Iterations,
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
