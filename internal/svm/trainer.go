package svm

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidParameters is returned for unusable kernel or regularisation settings.
	ErrInvalidParameters = errors.New("invalid svm parameters")

	// ErrInvalidProblem is returned for malformed training data.
	ErrInvalidProblem = errors.New("invalid svm problem")

	// ErrDegenerateKernel is returned when the kernel matrix holds non-finite values.
	ErrDegenerateKernel = errors.New("degenerate kernel matrix")
)

// Trainer fits a model to a labelled problem.
type Trainer interface {
	Train(ctx context.Context, p Problem, params Params) (*Model, error)
}

// Problem is a set of samples with +1/-1 labels.
type Problem struct {
	Samples [][]float64 `json:"samples"`
	Labels  []float64   `json:"labels"`
}

// Validate checks that the problem is non-empty, consistently shaped, finite,
// and holds both classes.
func (p Problem) Validate() error {
	if len(p.Samples) == 0 {
		return fmt.Errorf("%w: no samples", ErrInvalidProblem)
	}
	if len(p.Samples) != len(p.Labels) {
		return fmt.Errorf("%w: %d samples but %d labels", ErrInvalidProblem, len(p.Samples), len(p.Labels))
	}

	dim := len(p.Samples[0])
	var pos, neg int
	for i, s := range p.Samples {
		if len(s) != dim || dim == 0 {
			return fmt.Errorf("%w: sample %d has %d features, want %d", ErrInvalidProblem, i, len(s), dim)
		}
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: sample %d is not finite", ErrInvalidProblem, i)
			}
		}
		switch p.Labels[i] {
		case 1:
			pos++
		case -1:
			neg++
		default:
			return fmt.Errorf("%w: label %v at %d, want +1 or -1", ErrInvalidProblem, p.Labels[i], i)
		}
	}
	if pos == 0 || neg == 0 {
		return fmt.Errorf("%w: need both classes, got %d positive and %d negative", ErrInvalidProblem, pos, neg)
	}

	return nil
}

// Params are the training hyperparameters.
type Params struct {
	Kernel Kernel  `json:"kernel"`
	C      float64 `json:"c"`
	Gamma  float64 `json:"gamma"`
}

// ExponentParams builds parameters from base-2 exponents: C = 2^cExp, gamma = 2^gammaExp.
func ExponentParams(kernel Kernel, cExp, gammaExp int) Params {
	return Params{
		Kernel: kernel,
		C:      math.Pow(2, float64(cExp)),
		Gamma:  math.Pow(2, float64(gammaExp)),
	}
}

// Validate checks the kernel is known and C and gamma are finite and positive.
func (p Params) Validate() error {
	if !p.Kernel.Valid() {
		return fmt.Errorf("%w: unknown kernel %q", ErrInvalidParameters, p.Kernel)
	}
	if !finitePositive(p.C) {
		return fmt.Errorf("%w: C must be finite and positive, got %v", ErrInvalidParameters, p.C)
	}
	// The linear kernel ignores gamma but a caller passing garbage is still a bug.
	if !finitePositive(p.Gamma) {
		return fmt.Errorf("%w: gamma must be finite and positive, got %v", ErrInvalidParameters, p.Gamma)
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
