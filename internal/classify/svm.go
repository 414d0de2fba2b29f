package classify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmylchreest/colourmask/internal/colour"
	"github.com/jmylchreest/colourmask/internal/svm"
)

// SVM trains a binary kernel SVM on unit-scaled colour vectors of the positive
// (+1) and negative (-1) samples. C and gamma are given as base-2 exponents.
type SVM struct {
	Positive      []colour.RGB
	Negative      []colour.RGB
	Space         colour.ColorSpace
	Kernel        svm.Kernel
	CExponent     int
	GammaExponent int
}

// Method implements Strategy.
func (SVM) Method() Method { return MethodSVM }

func (SVM) sealed() {}

// Params returns the effective training parameters.
func (s SVM) Params() svm.Params {
	return svm.ExponentParams(s.Kernel, s.CExponent, s.GammaExponent)
}

// Validate implements Strategy.
func (s SVM) Validate() error {
	if len(s.Positive) == 0 {
		return ErrEmptyPositiveSet
	}
	if len(s.Negative) == 0 {
		return ErrEmptyNegativeSet
	}
	if err := validateSpace(s.Space); err != nil {
		return err
	}
	if err := s.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKernelParameters, err)
	}
	return nil
}

// Problem builds the training set, positives first.
func (s SVM) Problem() svm.Problem {
	n := len(s.Positive) + len(s.Negative)
	p := svm.Problem{
		Samples: make([][]float64, 0, n),
		Labels:  make([]float64, 0, n),
	}
	for _, c := range s.Positive {
		v := s.Space.Apply(c, colour.ScaleUnit)
		p.Samples = append(p.Samples, v[:])
		p.Labels = append(p.Labels, 1)
	}
	for _, c := range s.Negative {
		v := s.Space.Apply(c, colour.ScaleUnit)
		p.Samples = append(p.Samples, v[:])
		p.Labels = append(p.Labels, -1)
	}
	return p
}

// Train validates the strategy and fits a model with trainer.
func (s SVM) Train(ctx context.Context, trainer svm.Trainer) (*SVMClassifier, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	model, err := trainer.Train(ctx, s.Problem(), s.Params())
	if err != nil {
		if errors.Is(err, svm.ErrInvalidParameters) || errors.Is(err, svm.ErrDegenerateKernel) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKernelParameters, err)
		}
		return nil, fmt.Errorf("failed to train svm: %w", err)
	}

	return &SVMClassifier{model: model, space: s.Space}, nil
}

// SVMClassifier is a trained SVM strategy.
type SVMClassifier struct {
	model *svm.Model
	space colour.ColorSpace
}

// Model returns the trained model.
func (c *SVMClassifier) Model() *svm.Model {
	return c.model
}

// Score returns the decision value for a pixel colour.
func (c *SVMClassifier) Score(px colour.RGB) float64 {
	v := c.space.Apply(px, colour.ScaleUnit)
	return c.model.Predict(v[:])
}

// Classify implements Classifier.
func (c *SVMClassifier) Classify(px colour.RGB) bool {
	return c.Score(px) > 0
}
