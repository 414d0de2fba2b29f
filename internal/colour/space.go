package colour

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Channels is the number of channels produced by every supported colour space.
const Channels = 3

// ErrInvalidColorSpace is returned for an unknown colour space selector.
var ErrInvalidColorSpace = errors.New("invalid colour space")

// Vector is a point in a colour space.
type Vector [Channels]float64

// ColorSpace selects the coordinate system colours are mapped into before comparison.
type ColorSpace string

const (
	// SpaceRGB keeps the red, green and blue channels.
	SpaceRGB ColorSpace = "rgb"

	// SpaceHSV maps to hue, saturation and value.
	SpaceHSV ColorSpace = "hsv"

	// SpaceH1H2H3 maps to the H1H2H3 opponent decomposition:
	// h1 = (r+g)/2, h2 = (r-g+1)/2, h3 = (2b-r-g+2)/4.
	SpaceH1H2H3 ColorSpace = "h1h2h3"
)

// Scale selects the numeric domain of a transformed vector.
type Scale int

const (
	// Scale255 produces channels in [0, 255].
	Scale255 Scale = iota

	// ScaleUnit produces channels in [0, 1].
	ScaleUnit
)

// Range returns the width of a channel in this scale.
func (s Scale) Range() float64 {
	if s == ScaleUnit {
		return 1
	}
	return 255
}

// ValidColorSpaces returns the supported colour spaces.
func ValidColorSpaces() []ColorSpace {
	return []ColorSpace{SpaceRGB, SpaceHSV, SpaceH1H2H3}
}

// Valid reports whether s is a supported colour space.
func (s ColorSpace) Valid() bool {
	switch s {
	case SpaceRGB, SpaceHSV, SpaceH1H2H3:
		return true
	}
	return false
}

// String returns the display name of the colour space.
func (s ColorSpace) String() string {
	switch s {
	case SpaceRGB:
		return "RGB"
	case SpaceHSV:
		return "HSV"
	case SpaceH1H2H3:
		return "H1H2H3"
	default:
		return string(s)
	}
}

// ParseColorSpace parses a colour space name, ignoring case.
func ParseColorSpace(name string) (ColorSpace, error) {
	s := ColorSpace(strings.ToLower(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q (valid: %v)", ErrInvalidColorSpace, name, ValidColorSpaces())
	}
	return s, nil
}

// Transform maps c into the colour space at the requested scale.
func Transform(c RGB, space ColorSpace, scale Scale) (Vector, error) {
	if !space.Valid() {
		return Vector{}, fmt.Errorf("%w: %q", ErrInvalidColorSpace, space)
	}
	return space.Apply(c, scale), nil
}

// Apply maps c into the colour space without validating the selector.
// An unknown space yields the zero vector; use Transform when the space is untrusted.
func (s ColorSpace) Apply(c RGB, scale Scale) Vector {
	// Exact integer channels, no round trip through [0, 1].
	if s == SpaceRGB && scale == Scale255 {
		return Vector{float64(c.R), float64(c.G), float64(c.B)}
	}

	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	var v Vector
	switch s {
	case SpaceRGB:
		v = Vector{r, g, b}
	case SpaceHSV:
		h, sat, val := colorful.Color{R: r, G: g, B: b}.Hsv()
		v = Vector{h / 360, sat, val}
	case SpaceH1H2H3:
		v = Vector{(r + g) / 2, (r - g + 1) / 2, (2*b - r - g + 2) / 4}
	default:
		return Vector{}
	}

	if scale == Scale255 {
		for i := range v {
			v[i] *= 255
		}
	}
	return v
}
