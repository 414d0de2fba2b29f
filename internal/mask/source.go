package mask

import (
	"fmt"
	"image"
	"image/color"

	"github.com/jmylchreest/colourmask/internal/colour"
)

// PixelSource is a read-only rectangular grid of colours addressed from (0,0).
type PixelSource interface {
	Width() int
	Height() int
	RGB(x, y int) colour.RGB
}

// FromImage adapts an image.Image. Coordinates are relative to the image bounds.
// Pixels are read as straight colour whatever the storage model, so a
// translucent pixel has the same RGB in every image type. Alpha is then
// dropped; fully transparent pixels read as black.
func FromImage(img image.Image) PixelSource {
	b := img.Bounds()
	switch m := img.(type) {
	case *image.RGBA:
		return rgbaSource{img: m, min: b.Min, w: b.Dx(), h: b.Dy()}
	case *image.NRGBA:
		return nrgbaSource{img: m, min: b.Min, w: b.Dx(), h: b.Dy()}
	default:
		return imageSource{img: img, min: b.Min, w: b.Dx(), h: b.Dy()}
	}
}

type imageSource struct {
	img  image.Image
	min  image.Point
	w, h int
}

func (s imageSource) Width() int  { return s.w }
func (s imageSource) Height() int { return s.h }
func (s imageSource) RGB(x, y int) colour.RGB {
	return colour.ToRGB(s.img.At(s.min.X+x, s.min.Y+y))
}

type rgbaSource struct {
	img  *image.RGBA
	min  image.Point
	w, h int
}

func (s rgbaSource) Width() int  { return s.w }
func (s rgbaSource) Height() int { return s.h }
func (s rgbaSource) RGB(x, y int) colour.RGB {
	i := s.img.PixOffset(s.min.X+x, s.min.Y+y)
	p := s.img.Pix[i : i+4 : i+4]
	if p[3] != 0xff {
		return colour.ToRGB(color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]})
	}
	return colour.RGB{R: p[0], G: p[1], B: p[2]}
}

type nrgbaSource struct {
	img  *image.NRGBA
	min  image.Point
	w, h int
}

func (s nrgbaSource) Width() int  { return s.w }
func (s nrgbaSource) Height() int { return s.h }
func (s nrgbaSource) RGB(x, y int) colour.RGB {
	i := s.img.PixOffset(s.min.X+x, s.min.Y+y)
	p := s.img.Pix[i : i+4 : i+4]
	if p[3] == 0 {
		return colour.RGB{}
	}
	return colour.RGB{R: p[0], G: p[1], B: p[2]}
}

// Pixels is an in-memory PixelSource stored row-major.
type Pixels struct {
	w, h int
	pix  []colour.RGB
}

// NewPixels wraps pix as a w×h grid. The slice is not copied.
func NewPixels(w, h int, pix []colour.RGB) (*Pixels, error) {
	if w < 0 || h < 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", w, h)
	}
	if len(pix) != w*h {
		return nil, fmt.Errorf("pixel count %d does not match %dx%d", len(pix), w, h)
	}
	return &Pixels{w: w, h: h, pix: pix}, nil
}

// Width implements PixelSource.
func (p *Pixels) Width() int { return p.w }

// Height implements PixelSource.
func (p *Pixels) Height() int { return p.h }

// RGB implements PixelSource.
func (p *Pixels) RGB(x, y int) colour.RGB { return p.pix[y*p.w+x] }
