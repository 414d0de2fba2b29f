package mask

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/colourmask/internal/classify"
	"github.com/jmylchreest/colourmask/internal/colour"
	"github.com/jmylchreest/colourmask/internal/svm"
)

var (
	red   = colour.RGB{R: 255}
	green = colour.RGB{G: 255}
	blue  = colour.RGB{B: 255}
	black = colour.RGB{}
)

func mustPixels(t *testing.T, w, h int, pix []colour.RGB) *Pixels {
	t.Helper()
	p, err := NewPixels(w, h, pix)
	if err != nil {
		t.Fatalf("NewPixels() error = %v", err)
	}
	return p
}

// gradient is a deterministic w×h source covering much of the RGB cube.
func gradient(t *testing.T, w, h int) *Pixels {
	t.Helper()
	pix := make([]colour.RGB, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix = append(pix, colour.RGB{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x + y) * 7),
			})
		}
	}
	return mustPixels(t, w, h, pix)
}

func TestBuildThresholdScenario(t *testing.T) {
	src := mustPixels(t, 2, 2, []colour.RGB{red, green, blue, black})

	m, err := BuildMask(src, classify.Threshold{
		ReferenceColours: []colour.RGB{red},
		Space:            colour.SpaceRGB,
		Metric:           colour.MetricL1,
		Threshold:        20,
	})
	if err != nil {
		t.Fatalf("BuildMask() error = %v", err)
	}

	want := &Mask{
		Width:         2,
		Height:        2,
		Cells:         []bool{true, false, false, false},
		DisplayColour: colour.RGB{G: 255, B: 255},
		Opacity:       1,
		Method:        classify.MethodThreshold,
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("BuildMask() mismatch (-want +got):\n%s", diff)
	}
	if !m.At(0, 0) || m.At(1, 1) {
		t.Errorf("At() disagrees with Cells: %v", m.Cells)
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
}

func TestBuildSVMScenario(t *testing.T) {
	src := mustPixels(t, 2, 1, []colour.RGB{{R: 250, B: 5}, {B: 250}})

	m, err := BuildMask(src, classify.SVM{
		Positive: []colour.RGB{red},
		Negative: []colour.RGB{blue},
		Space:    colour.SpaceRGB,
		Kernel:   svm.KernelLinear,
	})
	if err != nil {
		t.Fatalf("BuildMask() error = %v", err)
	}

	if diff := cmp.Diff([]bool{true, false}, m.Cells); diff != "" {
		t.Errorf("Cells mismatch (-want +got):\n%s", diff)
	}
	// Inverted average of the foreground pixels, not of the samples.
	if want := (colour.RGB{R: 5, G: 255, B: 250}); m.DisplayColour != want {
		t.Errorf("DisplayColour = %v, want %v", m.DisplayColour, want)
	}
	if m.Method != classify.MethodSVM || m.Opacity != 1 {
		t.Errorf("Method = %v, Opacity = %v", m.Method, m.Opacity)
	}
}

func TestBuildSVMEmptyForegroundIsWhite(t *testing.T) {
	src := mustPixels(t, 1, 1, []colour.RGB{blue})

	m, err := BuildMask(src, classify.SVM{
		Positive: []colour.RGB{red},
		Negative: []colour.RGB{blue},
		Space:    colour.SpaceRGB,
		Kernel:   svm.KernelLinear,
	})
	if err != nil {
		t.Fatalf("BuildMask() error = %v", err)
	}
	if m.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", m.Count())
	}
	if want := (colour.RGB{R: 255, G: 255, B: 255}); m.DisplayColour != want {
		t.Errorf("DisplayColour = %v, want %v", m.DisplayColour, want)
	}
}

func TestBuildErrors(t *testing.T) {
	src := mustPixels(t, 1, 1, []colour.RGB{red})

	tests := []struct {
		name     string
		strategy classify.Strategy
		wantErr  error
	}{
		{"nil strategy", nil, classify.ErrUnknownStrategy},
		{"no references", classify.Threshold{Space: colour.SpaceRGB, Metric: colour.MetricL1}, classify.ErrEmptyReferenceSet},
		{"no positives", classify.SVM{Negative: []colour.RGB{blue}, Space: colour.SpaceRGB, Kernel: svm.KernelLinear}, classify.ErrEmptyPositiveSet},
		{"no negatives", classify.SVM{Positive: []colour.RGB{red}, Space: colour.SpaceRGB, Kernel: svm.KernelLinear}, classify.ErrEmptyNegativeSet},
		{"bad space", classify.Threshold{ReferenceColours: []colour.RGB{red}, Space: "lab", Metric: colour.MetricL1}, classify.ErrInvalidColorSpace},
		{"bad metric", classify.Threshold{ReferenceColours: []colour.RGB{red}, Space: colour.SpaceRGB, Metric: "cosine"}, classify.ErrInvalidMetric},
		{"bad kernel", classify.SVM{Positive: []colour.RGB{red}, Negative: []colour.RGB{blue}, Space: colour.SpaceRGB, Kernel: "poly"}, classify.ErrInvalidKernelParameters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := BuildMask(src, tt.strategy)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("BuildMask() error = %v, want %v", err, tt.wantErr)
			}
			if m != nil {
				t.Error("BuildMask() returned a mask on error")
			}
		})
	}
}

func TestBuildDeterministicAcrossWorkers(t *testing.T) {
	src := gradient(t, 37, 29)
	strategies := []classify.Strategy{
		classify.Threshold{
			ReferenceColours: []colour.RGB{{R: 200, G: 60, B: 30}, {R: 20, G: 200, B: 90}},
			Space:            colour.SpaceHSV,
			Metric:           colour.MetricL2,
			Threshold:        60,
		},
		classify.SVM{
			Positive: []colour.RGB{red, {R: 230, G: 40, B: 10}},
			Negative: []colour.RGB{green, blue},
			Space:    colour.SpaceH1H2H3,
			Kernel:   svm.KernelTriangular,
		},
	}

	for _, strategy := range strategies {
		t.Run(string(strategy.Method()), func(t *testing.T) {
			ref, err := NewBuilder().WithWorkers(1).Build(context.Background(), src, strategy)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			for _, workers := range []int{1, 2, 3, 8, 64} {
				got, err := NewBuilder().WithWorkers(workers).Build(context.Background(), src, strategy)
				if err != nil {
					t.Fatalf("Build(workers=%d) error = %v", workers, err)
				}
				if diff := cmp.Diff(ref, got); diff != "" {
					t.Errorf("workers=%d mismatch (-want +got):\n%s", workers, diff)
				}
			}
		})
	}
}

func TestBuildDoesNotMutateInputs(t *testing.T) {
	pix := []colour.RGB{red, green, blue, black}
	refs := []colour.RGB{red, blue}
	src := mustPixels(t, 2, 2, pix)

	if _, err := BuildMask(src, classify.Threshold{ReferenceColours: refs, Space: colour.SpaceHSV, Metric: colour.MetricL1, Threshold: 100}); err != nil {
		t.Fatalf("BuildMask() error = %v", err)
	}
	if diff := cmp.Diff([]colour.RGB{red, green, blue, black}, pix); diff != "" {
		t.Errorf("pixels mutated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]colour.RGB{red, blue}, refs); diff != "" {
		t.Errorf("references mutated (-want +got):\n%s", diff)
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	strategies := []classify.Strategy{
		classify.Threshold{ReferenceColours: []colour.RGB{red}, Space: colour.SpaceRGB, Metric: colour.MetricL1, Threshold: 10},
		classify.SVM{Positive: []colour.RGB{red}, Negative: []colour.RGB{blue}, Space: colour.SpaceRGB, Kernel: svm.KernelRBF},
	}
	for _, strategy := range strategies {
		m, err := NewBuilder().Build(ctx, gradient(t, 8, 8), strategy)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("%s: Build() error = %v, want context.Canceled", strategy.Method(), err)
		}
		if m != nil {
			t.Errorf("%s: Build() returned a mask after cancellation", strategy.Method())
		}
	}
}

type recordingTrainer struct {
	calls int
}

func (r *recordingTrainer) Train(ctx context.Context, p svm.Problem, params svm.Params) (*svm.Model, error) {
	r.calls++
	return svm.NewSMO().Train(ctx, p, params)
}

func TestBuilderUsesTrainerAndLogger(t *testing.T) {
	trainer := &recordingTrainer{}
	b := NewBuilder().
		WithTrainer(trainer).
		WithLogger(hclog.New(&hclog.LoggerOptions{Name: "test", Level: hclog.Off})).
		WithWorkers(0)

	_, err := b.Build(context.Background(), gradient(t, 4, 4), classify.SVM{
		Positive: []colour.RGB{red},
		Negative: []colour.RGB{blue},
		Space:    colour.SpaceRGB,
		Kernel:   svm.KernelRBF,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if trainer.calls != 1 {
		t.Errorf("trainer called %d times, want 1", trainer.calls)
	}
}

func TestEmptySource(t *testing.T) {
	m, err := BuildMask(mustPixels(t, 0, 0, nil), classify.Threshold{
		ReferenceColours: []colour.RGB{red}, Space: colour.SpaceRGB, Metric: colour.MetricL1, Threshold: 1,
	})
	if err != nil {
		t.Fatalf("BuildMask() error = %v", err)
	}
	if m.Width != 0 || m.Height != 0 || len(m.Cells) != 0 {
		t.Errorf("got %dx%d with %d cells", m.Width, m.Height, len(m.Cells))
	}
}

func TestNewPixelsInvalid(t *testing.T) {
	if _, err := NewPixels(2, 2, make([]colour.RGB, 3)); err == nil {
		t.Error("NewPixels() accepted a short slice")
	}
	if _, err := NewPixels(-1, 0, nil); err == nil {
		t.Error("NewPixels() accepted negative dimensions")
	}
}

func TestFromImage(t *testing.T) {
	rect := image.Rect(10, 20, 13, 22)
	rgba := image.NewRGBA(rect)
	nrgba := image.NewNRGBA(rect)
	gray := image.NewGray(rect)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			v := uint8((x-rect.Min.X)*40 + (y-rect.Min.Y)*100)
			rgba.Set(x, y, color.RGBA{R: v, G: 255 - v, B: 7, A: 255})
			nrgba.Set(x, y, color.NRGBA{R: v, G: 255 - v, B: 7, A: 255})
			gray.Set(x, y, color.Gray{Y: v})
		}
	}

	for name, tc := range map[string]struct {
		img  image.Image
		want func(v uint8) colour.RGB
	}{
		"rgba":  {rgba, func(v uint8) colour.RGB { return colour.RGB{R: v, G: 255 - v, B: 7} }},
		"nrgba": {nrgba, func(v uint8) colour.RGB { return colour.RGB{R: v, G: 255 - v, B: 7} }},
		"gray":  {gray, func(v uint8) colour.RGB { return colour.RGB{R: v, G: v, B: v} }},
	} {
		t.Run(name, func(t *testing.T) {
			src := FromImage(tc.img)
			if src.Width() != 3 || src.Height() != 2 {
				t.Fatalf("size = %dx%d, want 3x2", src.Width(), src.Height())
			}
			for y := 0; y < 2; y++ {
				for x := 0; x < 3; x++ {
					if got, want := src.RGB(x, y), tc.want(uint8(x*40+y*100)); got != want {
						t.Errorf("RGB(%d,%d) = %v, want %v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestFromImageTranslucent(t *testing.T) {
	rect := image.Rect(0, 0, 2, 1)
	straight := color.NRGBA{R: 250, G: 100, B: 50, A: 51}

	nrgba := image.NewNRGBA(rect)
	nrgba64 := image.NewNRGBA64(rect)
	rgba := image.NewRGBA(rect)
	paletted := image.NewPaletted(rect, color.Palette{straight, color.NRGBA{A: 0}})
	for x := 0; x < 2; x++ {
		nrgba.SetNRGBA(x, 0, straight)
		nrgba64.SetNRGBA64(x, 0, color.NRGBA64{R: 250 * 257, G: 100 * 257, B: 50 * 257, A: 51 * 257})
		rgba.SetRGBA(x, 0, color.RGBA{R: 50, G: 20, B: 10, A: 51})
	}
	paletted.SetColorIndex(1, 0, 1)
	nrgba.SetNRGBA(1, 0, color.NRGBA{R: 250, G: 100, B: 50, A: 0})
	nrgba64.SetNRGBA64(1, 0, color.NRGBA64{})
	rgba.SetRGBA(1, 0, color.RGBA{})

	strategy := classify.Threshold{
		ReferenceColours: []colour.RGB{{R: 250, G: 100, B: 50}},
		Space:            colour.SpaceRGB,
		Metric:           colour.MetricL1,
		Threshold:        20,
	}

	for name, img := range map[string]image.Image{
		"nrgba":    nrgba,
		"nrgba64":  nrgba64,
		"rgba":     rgba,
		"paletted": paletted,
	} {
		t.Run(name, func(t *testing.T) {
			src := FromImage(img)
			if got, want := src.RGB(0, 0), (colour.RGB{R: 250, G: 100, B: 50}); got != want {
				t.Errorf("RGB(0,0) = %v, want %v", got, want)
			}
			if got := src.RGB(1, 0); got != (colour.RGB{}) {
				t.Errorf("transparent RGB(1,0) = %v, want black", got)
			}

			m, err := BuildMask(src, strategy)
			if err != nil {
				t.Fatalf("BuildMask() error = %v", err)
			}
			if diff := cmp.Diff([]bool{true, false}, m.Cells); diff != "" {
				t.Errorf("Cells mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMaskImages(t *testing.T) {
	src := mustPixels(t, 2, 1, []colour.RGB{{R: 100, G: 100, B: 100}, {R: 10, G: 20, B: 30}})
	m := &Mask{Width: 2, Height: 1, Cells: []bool{true, false}, DisplayColour: colour.RGB{R: 255}, Opacity: 1}

	gray := m.Gray()
	if diff := cmp.Diff([]uint8{255, 0}, gray.Pix); diff != "" {
		t.Errorf("Gray() mismatch (-want +got):\n%s", diff)
	}

	over := m.Overlay(src)
	if got := over.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("Overlay foreground = %v", got)
	}
	if got := over.NRGBAAt(1, 0); got != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("Overlay background = %v", got)
	}

	m.Opacity = 0.5
	if got := m.Overlay(src).NRGBAAt(0, 0); got != (color.NRGBA{R: 178, G: 50, B: 50, A: 255}) {
		t.Errorf("half-opacity Overlay = %v", got)
	}

	if got := m.ForegroundAverage(src); got != (colour.RGB{R: 100, G: 100, B: 100}) {
		t.Errorf("ForegroundAverage() = %v", got)
	}
}
