package classify

import (
	"github.com/jmylchreest/colourmask/internal/colour"
)

// Threshold marks a pixel as foreground when it lies strictly closer than
// Threshold to at least one reference colour.
type Threshold struct {
	ReferenceColours []colour.RGB
	Space            colour.ColorSpace
	Metric           colour.MetricKind
	Threshold        int
}

// Method implements Strategy.
func (Threshold) Method() Method { return MethodThreshold }

func (Threshold) sealed() {}

// Validate implements Strategy.
func (t Threshold) Validate() error {
	if len(t.ReferenceColours) == 0 {
		return ErrEmptyReferenceSet
	}
	if err := validateSpace(t.Space); err != nil {
		return err
	}
	if _, err := colour.NewMetric(t.Metric); err != nil {
		return err
	}
	return nil
}

// DisplayColour returns the inverted average of the reference colours.
func (t Threshold) DisplayColour() colour.RGB {
	return colour.Average(t.ReferenceColours).Invert()
}

// Compile validates the strategy and transforms the reference colours once.
func (t Threshold) Compile() (*ThresholdClassifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	metric, _ := colour.NewMetric(t.Metric)
	refs := make([]colour.Vector, len(t.ReferenceColours))
	for i, c := range t.ReferenceColours {
		refs[i] = t.Space.Apply(c, colour.Scale255)
	}

	return &ThresholdClassifier{
		refs:      refs,
		space:     t.Space,
		metric:    metric,
		threshold: float64(t.Threshold),
	}, nil
}

// ThresholdClassifier is a compiled Threshold strategy.
type ThresholdClassifier struct {
	refs      []colour.Vector
	space     colour.ColorSpace
	metric    colour.Metric
	threshold float64
}

// Classify implements Classifier.
func (c *ThresholdClassifier) Classify(px colour.RGB) bool {
	v := c.space.Apply(px, colour.Scale255)
	for _, ref := range c.refs {
		if c.metric.Distance(v, ref) < c.threshold {
			return true
		}
	}
	return false
}
