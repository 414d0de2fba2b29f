package colour

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestTransform(t *testing.T) {
	approx := cmpopts.EquateApprox(0, 1e-9)

	tests := []struct {
		name  string
		c     RGB
		space ColorSpace
		scale Scale
		want  Vector
	}{
		{"rgb 255 keeps channels", RGB{10, 20, 30}, SpaceRGB, Scale255, Vector{10, 20, 30}},
		{"rgb unit", RGB{255, 0, 51}, SpaceRGB, ScaleUnit, Vector{1, 0, 0.2}},
		{"hsv red", RGB{255, 0, 0}, SpaceHSV, ScaleUnit, Vector{0, 1, 1}},
		{"hsv blue", RGB{0, 0, 255}, SpaceHSV, ScaleUnit, Vector{240.0 / 360.0, 1, 1}},
		{"hsv grey has zero hue", RGB{128, 128, 128}, SpaceHSV, ScaleUnit, Vector{0, 0, 128.0 / 255.0}},
		{"hsv scaled", RGB{0, 255, 0}, SpaceHSV, Scale255, Vector{255.0 / 3.0, 255, 255}},
		{"h1h2h3 black", RGB{0, 0, 0}, SpaceH1H2H3, ScaleUnit, Vector{0, 0.5, 0.5}},
		{"h1h2h3 white", RGB{255, 255, 255}, SpaceH1H2H3, ScaleUnit, Vector{1, 0.5, 0.5}},
		{"h1h2h3 red", RGB{255, 0, 0}, SpaceH1H2H3, ScaleUnit, Vector{0.5, 1, 0.25}},
		{"h1h2h3 blue scaled", RGB{0, 0, 255}, SpaceH1H2H3, Scale255, Vector{0, 127.5, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transform(tt.c, tt.space, tt.scale)
			if err != nil {
				t.Fatalf("Transform() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("Transform() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTransformStaysInRange(t *testing.T) {
	for _, space := range ValidColorSpaces() {
		for r := 0; r < 256; r += 15 {
			for g := 0; g < 256; g += 15 {
				for b := 0; b < 256; b += 15 {
					v := space.Apply(RGB{uint8(r), uint8(g), uint8(b)}, ScaleUnit)
					for i, ch := range v {
						if ch < 0 || ch > 1 || math.IsNaN(ch) {
							t.Fatalf("%s channel %d of (%d,%d,%d) = %v, want [0,1]", space, i, r, g, b, ch)
						}
					}
				}
			}
		}
	}
}

func TestTransformInvalidSpace(t *testing.T) {
	_, err := Transform(RGB{1, 2, 3}, ColorSpace("lab"), Scale255)
	if !errors.Is(err, ErrInvalidColorSpace) {
		t.Errorf("Transform() error = %v, want ErrInvalidColorSpace", err)
	}
}

func TestParseColorSpace(t *testing.T) {
	tests := []struct {
		input   string
		want    ColorSpace
		wantErr bool
	}{
		{"rgb", SpaceRGB, false},
		{"HSV", SpaceHSV, false},
		{" H1H2H3 ", SpaceH1H2H3, false},
		{"lab", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColorSpace(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColorSpace(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseColorSpace(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
