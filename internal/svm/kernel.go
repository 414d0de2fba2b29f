// Package svm trains and evaluates binary soft-margin kernel support vector machines.
//
// Training solves the C-SVC dual problem with sequential minimal optimisation.
// The solver sits behind the Trainer interface so an out-of-process solver can
// replace it without changing callers.
package svm

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Kernel identifies the similarity function of the feature space.
type Kernel string

const (
	// KernelLinear is the dot product x·y.
	KernelLinear Kernel = "linear"

	// KernelTriangular is -gamma·‖x-y‖, conditionally positive definite.
	KernelTriangular Kernel = "triangular"

	// KernelRBF is exp(-gamma·‖x-y‖²).
	KernelRBF Kernel = "rbf"
)

// ValidKernels returns the supported kernels.
func ValidKernels() []Kernel {
	return []Kernel{KernelLinear, KernelTriangular, KernelRBF}
}

// Valid reports whether k is a supported kernel.
func (k Kernel) Valid() bool {
	switch k {
	case KernelLinear, KernelTriangular, KernelRBF:
		return true
	}
	return false
}

// ParseKernel parses a kernel name, ignoring case.
func ParseKernel(name string) (Kernel, error) {
	k := Kernel(strings.ToLower(strings.TrimSpace(name)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown kernel %q (valid: %v)", ErrInvalidParameters, name, ValidKernels())
	}
	return k, nil
}

// Eval computes K(x, y).
func (k Kernel) Eval(x, y []float64, gamma float64) float64 {
	switch k {
	case KernelLinear:
		return floats.Dot(x, y)
	case KernelTriangular:
		return -gamma * floats.Distance(x, y, 2)
	case KernelRBF:
		d := floats.Distance(x, y, 2)
		return math.Exp(-gamma * d * d)
	default:
		return math.NaN()
	}
}
