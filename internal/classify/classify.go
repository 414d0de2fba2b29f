// Package classify decides, pixel by pixel, whether a colour belongs to the
// foreground described by user-picked samples.
//
// Two strategies are available: Threshold compares against reference colours
// with a distance metric, SVM trains a kernel machine on positive and negative
// samples. Both are validated and prepared once, then classify any number of
// pixels without further allocation.
package classify

import (
	"errors"
	"fmt"

	"github.com/jmylchreest/colourmask/internal/colour"
)

var (
	// ErrEmptyReferenceSet is returned when a threshold strategy has no reference colours.
	ErrEmptyReferenceSet = errors.New("no color selected, filtering aborted")

	// ErrEmptyPositiveSet is returned when an SVM strategy has no positive samples.
	ErrEmptyPositiveSet = errors.New("no positive color selected, filtering aborted")

	// ErrEmptyNegativeSet is returned when an SVM strategy has no negative samples.
	ErrEmptyNegativeSet = errors.New("no negative color selected, filtering aborted")

	// ErrInvalidKernelParameters is returned for an unknown kernel or non-finite C/gamma.
	ErrInvalidKernelParameters = errors.New("invalid kernel parameters")

	// ErrUnknownStrategy is returned for a nil strategy.
	ErrUnknownStrategy = errors.New("unknown classification strategy")

	// ErrInvalidColorSpace is returned for an unknown colour space.
	ErrInvalidColorSpace = colour.ErrInvalidColorSpace

	// ErrInvalidMetric is returned for an unknown distance metric.
	ErrInvalidMetric = colour.ErrInvalidMetric
)

// Method names a classification strategy.
type Method string

const (
	// MethodThreshold classifies by distance to reference colours.
	MethodThreshold Method = "threshold"

	// MethodSVM classifies with a trained support vector machine.
	MethodSVM Method = "svm"
)

// Classifier returns the foreground verdict for a pixel colour.
// Implementations are read-only after construction and safe for concurrent use.
type Classifier interface {
	Classify(c colour.RGB) bool
}

// Strategy is a fully configured classification request. It is implemented
// only by Threshold and SVM.
type Strategy interface {
	// Method returns the strategy identifier.
	Method() Method

	// Validate reports configuration errors without doing any work.
	Validate() error

	sealed()
}

func validateSpace(space colour.ColorSpace) error {
	if !space.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidColorSpace, space)
	}
	return nil
}
