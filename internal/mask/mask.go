// Package mask turns a pixel source and a classification strategy into a
// binary foreground mask.
package mask

import (
	"image"
	"image/color"

	"github.com/jmylchreest/colourmask/internal/classify"
	"github.com/jmylchreest/colourmask/internal/colour"
)

// Mask is a row-major foreground grid with the colour a viewer should paint it in.
type Mask struct {
	Width         int
	Height        int
	Cells         []bool
	DisplayColour colour.RGB
	Opacity       float32
	Method        classify.Method
}

// At reports whether (x, y) is foreground.
func (m *Mask) At(x, y int) bool {
	return m.Cells[y*m.Width+x]
}

// Count returns the number of foreground cells.
func (m *Mask) Count() int {
	n := 0
	for _, c := range m.Cells {
		if c {
			n++
		}
	}
	return n
}

// Gray renders the mask with foreground 255 and background 0.
func (m *Mask) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+m.Width]
		for x := range row {
			if m.Cells[y*m.Width+x] {
				row[x] = 255
			}
		}
	}
	return img
}

// Overlay copies src and blends the display colour over foreground cells
// at the mask opacity.
func (m *Mask) Overlay(src PixelSource) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	a := float64(m.Opacity)
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	d := m.DisplayColour
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := src.RGB(x, y)
			if m.Cells[y*m.Width+x] {
				c = colour.RGB{
					R: blend(c.R, d.R, a),
					G: blend(c.G, d.G, a),
					B: blend(c.B, d.B, a),
				}
			}
			img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return img
}

func blend(under, over uint8, a float64) uint8 {
	return uint8(float64(under)*(1-a) + float64(over)*a + 0.5)
}

// ForegroundAverage returns the integer average of src under foreground
// cells, or black when the mask is empty.
func (m *Mask) ForegroundAverage(src PixelSource) colour.RGB {
	var r, g, b, n int
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.Cells[y*m.Width+x] {
				continue
			}
			c := src.RGB(x, y)
			r += int(c.R)
			g += int(c.G)
			b += int(c.B)
			n++
		}
	}
	if n == 0 {
		return colour.RGB{}
	}
	return colour.RGB{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n)}
}
