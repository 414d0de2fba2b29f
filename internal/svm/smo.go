package svm

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultEpsilon is the stopping tolerance on the KKT violation.
	DefaultEpsilon = 1e-3

	// DefaultMaxIterations caps the optimisation loop.
	DefaultMaxIterations = 10_000_000

	// tau replaces non-positive curvature along a working pair.
	tau = 1e-12

	// ctxCheckInterval is how many iterations run between cancellation checks.
	ctxCheckInterval = 256
)

// SMO trains C-SVC models with sequential minimal optimisation using
// second-order working set selection. The full kernel matrix is held in memory,
// which suits the few dozen colour samples a picker produces.
type SMO struct {
	Epsilon       float64
	MaxIterations int
}

// NewSMO creates an SMO trainer with default tolerances.
func NewSMO() *SMO {
	return &SMO{
		Epsilon:       DefaultEpsilon,
		MaxIterations: DefaultMaxIterations,
	}
}

// Train implements Trainer.
func (s *SMO) Train(ctx context.Context, p Problem, params Params) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	q, err := signedKernelMatrix(p, params)
	if err != nil {
		return nil, err
	}

	eps := s.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	sol := newSolver(q, p.Labels, params.C, eps)
	iterations, err := sol.solve(ctx, maxIter)
	if err != nil {
		return nil, err
	}

	model := &Model{
		Kernel:     params.Kernel,
		C:          params.C,
		Gamma:      params.Gamma,
		Rho:        sol.rho(),
		Iterations: iterations,
	}
	for i, a := range sol.alpha {
		if a <= 0 {
			continue
		}
		sv := make([]float64, len(p.Samples[i]))
		copy(sv, p.Samples[i])
		model.SupportVectors = append(model.SupportVectors, sv)
		model.Coefficients = append(model.Coefficients, p.Labels[i]*a)
	}

	return model, nil
}

// signedKernelMatrix builds Q[i][j] = y[i]·y[j]·K(x[i], x[j]).
func signedKernelMatrix(p Problem, params Params) (*mat.SymDense, error) {
	n := len(p.Samples)
	q := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			k := params.Kernel.Eval(p.Samples[i], p.Samples[j], params.Gamma)
			if math.IsNaN(k) || math.IsInf(k, 0) {
				return nil, fmt.Errorf("%w: K(%d, %d) = %v", ErrDegenerateKernel, i, j, k)
			}
			q.SetSym(i, j, p.Labels[i]*p.Labels[j]*k)
		}
	}
	return q, nil
}

// solver minimises ½αᵀQα - eᵀα subject to yᵀα = 0 and 0 ≤ α ≤ C.
type solver struct {
	q     *mat.SymDense
	qd    []float64
	y     []float64
	alpha []float64
	grad  []float64
	c     float64
	eps   float64
}

func newSolver(q *mat.SymDense, y []float64, c, eps float64) *solver {
	n := q.SymmetricDim()
	s := &solver{
		q:     q,
		qd:    make([]float64, n),
		y:     y,
		alpha: make([]float64, n),
		grad:  make([]float64, n),
		c:     c,
		eps:   eps,
	}
	for i := 0; i < n; i++ {
		s.qd[i] = q.At(i, i)
		// Gradient of the objective at alpha = 0.
		s.grad[i] = -1
	}
	return s
}

func (s *solver) upper(i int) bool { return s.alpha[i] >= s.c }
func (s *solver) lower(i int) bool { return s.alpha[i] <= 0 }

func (s *solver) solve(ctx context.Context, maxIter int) (int, error) {
	iter := 0
	for iter < maxIter {
		if iter%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return iter, err
			}
		}

		i, j, ok := s.selectWorkingSet()
		if !ok {
			break
		}
		iter++
		s.update(i, j)
	}
	return iter, nil
}

// selectWorkingSet picks the maximal violating i and the j giving the largest
// second-order decrease of the objective. ok is false once the KKT gap is below eps.
func (s *solver) selectWorkingSet() (int, int, bool) {
	gmax, gmax2 := math.Inf(-1), math.Inf(-1)
	gmaxIdx, gminIdx := -1, -1
	objDiffMin := math.Inf(1)

	for t := range s.alpha {
		if s.y[t] == 1 {
			if !s.upper(t) && -s.grad[t] >= gmax {
				gmax = -s.grad[t]
				gmaxIdx = t
			}
		} else if !s.lower(t) && s.grad[t] >= gmax {
			gmax = s.grad[t]
			gmaxIdx = t
		}
	}

	i := gmaxIdx
	if i == -1 {
		return 0, 0, false
	}

	for j := range s.alpha {
		var gradDiff, quad float64
		if s.y[j] == 1 {
			if s.lower(j) {
				continue
			}
			gradDiff = gmax + s.grad[j]
			if s.grad[j] >= gmax2 {
				gmax2 = s.grad[j]
			}
			quad = s.qd[i] + s.qd[j] - 2*s.y[i]*s.q.At(i, j)
		} else {
			if s.upper(j) {
				continue
			}
			gradDiff = gmax - s.grad[j]
			if -s.grad[j] >= gmax2 {
				gmax2 = -s.grad[j]
			}
			quad = s.qd[i] + s.qd[j] + 2*s.y[i]*s.q.At(i, j)
		}

		if gradDiff <= 0 {
			continue
		}
		if quad <= 0 {
			quad = tau
		}
		if objDiff := -(gradDiff * gradDiff) / quad; objDiff <= objDiffMin {
			gminIdx = j
			objDiffMin = objDiff
		}
	}

	if gmax+gmax2 < s.eps || gminIdx == -1 {
		return 0, 0, false
	}
	return i, gminIdx, true
}

// update solves the two-variable subproblem for (i, j), clips to the box and
// refreshes the gradient.
func (s *solver) update(i, j int) {
	c := s.c
	qij := s.q.At(i, j)
	oldI, oldJ := s.alpha[i], s.alpha[j]

	if s.y[i] != s.y[j] {
		quad := s.qd[i] + s.qd[j] + 2*qij
		if quad <= 0 {
			quad = tau
		}
		delta := (-s.grad[i] - s.grad[j]) / quad
		diff := s.alpha[i] - s.alpha[j]
		s.alpha[i] += delta
		s.alpha[j] += delta

		if diff > 0 {
			if s.alpha[j] < 0 {
				s.alpha[j] = 0
				s.alpha[i] = diff
			}
		} else if s.alpha[i] < 0 {
			s.alpha[i] = 0
			s.alpha[j] = -diff
		}
		// Both bounds equal C, so the C_i - C_j split collapses to diff > 0.
		if diff > 0 {
			if s.alpha[i] > c {
				s.alpha[i] = c
				s.alpha[j] = c - diff
			}
		} else if s.alpha[j] > c {
			s.alpha[j] = c
			s.alpha[i] = c + diff
		}
	} else {
		quad := s.qd[i] + s.qd[j] - 2*qij
		if quad <= 0 {
			quad = tau
		}
		delta := (s.grad[i] - s.grad[j]) / quad
		sum := s.alpha[i] + s.alpha[j]
		s.alpha[i] -= delta
		s.alpha[j] += delta

		if sum > c {
			if s.alpha[i] > c {
				s.alpha[i] = c
				s.alpha[j] = sum - c
			}
		} else if s.alpha[j] < 0 {
			s.alpha[j] = 0
			s.alpha[i] = sum
		}
		if sum > c {
			if s.alpha[j] > c {
				s.alpha[j] = c
				s.alpha[i] = sum - c
			}
		} else if s.alpha[i] < 0 {
			s.alpha[i] = 0
			s.alpha[j] = sum
		}
	}

	dI, dJ := s.alpha[i]-oldI, s.alpha[j]-oldJ
	for k := range s.grad {
		s.grad[k] += s.q.At(i, k)*dI + s.q.At(j, k)*dJ
	}
}

// rho is the average of y·grad over free multipliers, or the midpoint of the
// feasible interval when every multiplier sits at a bound.
func (s *solver) rho() float64 {
	ub, lb := math.Inf(1), math.Inf(-1)
	var sumFree float64
	var nFree int

	for i := range s.alpha {
		yg := s.y[i] * s.grad[i]
		switch {
		case s.upper(i):
			if s.y[i] == -1 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		case s.lower(i):
			if s.y[i] == 1 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		default:
			nFree++
			sumFree += yg
		}
	}

	if nFree > 0 {
		return sumFree / float64(nFree)
	}
	return (ub + lb) / 2
}
