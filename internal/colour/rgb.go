// Package colour provides colour samples, colour-space transforms and distance metrics
// used to classify pixels against user-picked colours.
package colour

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// MaxReferenceColours is the number of colours a picker can hold per reference set.
// The classifiers themselves accept any non-empty set.
const MaxReferenceColours = 24

// ErrInvalidHex is returned when a colour string cannot be parsed.
var ErrInvalidHex = errors.New("invalid hex colour")

// RGB represents a colour sample with 8 bits per channel.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// Invert returns the channel-wise complement (255 - c) of the colour.
func (rgb RGB) Invert() RGB {
	return RGB{R: 255 - rgb.R, G: 255 - rgb.G, B: 255 - rgb.B}
}

// RGBA converts the sample to an opaque color.RGBA.
func (rgb RGB) RGBA() color.RGBA {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// ToRGB converts a color.Color to straight (non-premultiplied) RGB.
// Fully transparent colours carry no channel information and convert to black.
func ToRGB(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0 {
		return RGB{}
	}
	return RGB{R: n.R, G: n.G, B: n.B}
}

// ParseHex parses "#rrggbb", "rrggbb", "#rgb" or "rgb".
func ParseHex(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Average returns the channel-wise integer mean of the colours.
// Division truncates. An empty slice averages to black.
func Average(colours []RGB) RGB {
	if len(colours) == 0 {
		return RGB{}
	}

	var r, g, b int
	for _, c := range colours {
		r += int(c.R)
		g += int(c.G)
		b += int(c.B)
	}
	n := len(colours)

	return RGB{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n)}
}
