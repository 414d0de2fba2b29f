package colour

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalidMetric is returned for an unknown distance metric.
var ErrInvalidMetric = errors.New("invalid distance metric")

// MetricKind names a distance metric.
type MetricKind string

const (
	// MetricL1 is the sum of absolute per-channel differences.
	MetricL1 MetricKind = "l1"

	// MetricL2 is the Euclidean norm of the per-channel differences.
	MetricL2 MetricKind = "l2"
)

// Metric measures how far apart two colour-space vectors are.
type Metric interface {
	// Distance returns a non-negative, symmetric distance that is zero iff a == b.
	Distance(a, b Vector) float64

	// MaxDistance returns the largest distance two vectors can have when each of
	// the given number of channels spans channelRange.
	MaxDistance(channels int, channelRange float64) float64

	// Kind returns the metric identifier.
	Kind() MetricKind
}

// ValidMetrics returns the supported metric kinds.
func ValidMetrics() []MetricKind {
	return []MetricKind{MetricL1, MetricL2}
}

// NewMetric returns the metric for kind.
func NewMetric(kind MetricKind) (Metric, error) {
	switch kind {
	case MetricL1:
		return L1{}, nil
	case MetricL2:
		return L2{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: %v)", ErrInvalidMetric, kind, ValidMetrics())
	}
}

// ParseMetric parses a metric name, ignoring case.
func ParseMetric(name string) (MetricKind, error) {
	kind := MetricKind(strings.ToLower(strings.TrimSpace(name)))
	if _, err := NewMetric(kind); err != nil {
		return "", err
	}
	return kind, nil
}

// L1 is the Manhattan distance.
type L1 struct{}

// Distance implements Metric.
func (L1) Distance(a, b Vector) float64 {
	return floats.Distance(a[:], b[:], 1)
}

// MaxDistance implements Metric.
func (L1) MaxDistance(channels int, channelRange float64) float64 {
	return float64(channels) * channelRange
}

// Kind implements Metric.
func (L1) Kind() MetricKind { return MetricL1 }

// L2 is the Euclidean distance.
type L2 struct{}

// Distance implements Metric.
func (L2) Distance(a, b Vector) float64 {
	return floats.Distance(a[:], b[:], 2)
}

// MaxDistance implements Metric.
func (L2) MaxDistance(channels int, channelRange float64) float64 {
	return math.Sqrt(float64(channels)) * channelRange
}

// Kind implements Metric.
func (L2) Kind() MetricKind { return MetricL2 }

// ThresholdRange is the integer range a threshold picker offers for a metric,
// with tick spacing rounded to readable values.
type ThresholdRange struct {
	Max       int `json:"max"`
	Default   int `json:"default"`
	MajorTick int `json:"major_tick"`
	MinorTick int `json:"minor_tick"`
}

// NewThresholdRange calibrates a picker range from the metric's maximum distance.
// The maximum is rounded up to a whole number of major ticks and the default
// sits at a tenth of it.
func NewThresholdRange(m Metric, channels int, channelRange float64) ThresholdRange {
	maxDist := int(math.Floor(m.MaxDistance(channels, channelRange)))
	major := int(math.Ceil(float64(maxDist)/100.0)) * 20
	if major == 0 {
		return ThresholdRange{}
	}
	minor := int(math.Ceil(float64(major) / 5.0))
	maxDist = int(math.Ceil(float64(maxDist)/float64(major))) * major

	return ThresholdRange{
		Max:       maxDist,
		Default:   int(math.Ceil(float64(maxDist) / 10.0)),
		MajorTick: major,
		MinorTick: minor,
	}
}

// Rescale maps value from r onto to, keeping the same fraction of the range.
// The result is truncated; rescaling onto an equal range returns value.
func (r ThresholdRange) Rescale(value int, to ThresholdRange) int {
	if r.Max == 0 {
		return 0
	}
	return value * to.Max / r.Max
}
