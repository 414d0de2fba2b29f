package cli

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
	"golang.org/x/term"

	"github.com/jmylchreest/colourmask/internal/colour"
	imgpkg "github.com/jmylchreest/colourmask/internal/image"
	"github.com/jmylchreest/colourmask/internal/mask"
)

const swatchWidth = 2

// outputOptions are the flags shared by commands that produce a mask.
type outputOptions struct {
	output  string
	overlay string
	preview bool
}

func (o *outputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write the mask as a black and white PNG")
	cmd.Flags().StringVar(&o.overlay, "overlay", "", "write the source with the mask blended over it as PNG")
	cmd.Flags().BoolVar(&o.preview, "preview", false, "show the overlay in the terminal")
}

// loadSource decodes the image named on the command line.
func loadSource(path string) (mask.PixelSource, error) {
	img, err := imgpkg.NewFileLoader().Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return mask.FromImage(img), nil
}

// writeResults prints the summary line and writes whatever outputs were requested.
func (o *outputOptions) writeResults(cmd *cobra.Command, src mask.PixelSource, m *mask.Mask) error {
	out := cmd.OutOrStdout()
	cols, tty := terminalWidth(out)
	fmt.Fprintln(out, summary(m, tty))

	if o.output != "" {
		if err := imgpkg.WritePNG(o.output, m.Gray()); err != nil {
			return fmt.Errorf("failed to write mask: %w", err)
		}
	}

	var overlay *image.NRGBA
	if o.overlay != "" || o.preview {
		overlay = m.Overlay(src)
	}
	if o.overlay != "" {
		if err := imgpkg.WritePNG(o.overlay, overlay); err != nil {
			return fmt.Errorf("failed to write overlay: %w", err)
		}
	}

	if o.preview && tty {
		fmt.Fprint(out, renderPreview(overlay, cols))
	}

	return nil
}

// summary describes m on one line. With swatch set the display colour is
// preceded by an ANSI colour block.
func summary(m *mask.Mask, swatch bool) string {
	total := m.Width * m.Height
	count := m.Count()
	pct := 0.0
	if total > 0 {
		pct = float64(count) * 100 / float64(total)
	}
	display := m.DisplayColour.Hex()
	if swatch {
		display = colour.FormatColourWithPreview(m.DisplayColour, swatchWidth)
	}
	return fmt.Sprintf("%s mask %dx%d: %d foreground pixels (%.2f%%), display colour %s",
		m.Method, m.Width, m.Height, count, pct, display)
}

// terminalWidth reports the column count when w is a terminal.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 {
		return 0, false
	}
	return cols, true
}

// renderPreview scales img to at most cols columns and draws it with one
// half-block per two vertical pixels.
func renderPreview(img image.Image, cols int) string {
	b := img.Bounds()
	if b.Empty() || cols <= 0 {
		return ""
	}

	w := min(cols, b.Dx())
	// Terminal cells are about twice as tall as wide; half blocks restore square pixels.
	h := max(1, b.Dy()*w/b.Dx())
	if h%2 == 1 {
		h++
	}

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)

	top := make([]colour.RGB, w)
	bottom := make([]colour.RGB, w)
	var out []byte
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			top[x] = colour.ToRGB(scaled.RGBAAt(x, y))
			bottom[x] = colour.ToRGB(scaled.RGBAAt(x, y+1))
		}
		out = append(out, colour.HalfBlocks(top, bottom)...)
		out = append(out, '\n')
	}
	return string(out)
}
