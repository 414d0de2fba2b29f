package mask

import (
	"context"
	"fmt"
	"runtime"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/colourmask/internal/classify"
	"github.com/jmylchreest/colourmask/internal/colour"
	"github.com/jmylchreest/colourmask/internal/svm"
)

// Builder prepares classifiers and scans pixel sources into masks.
// A Builder holds no per-build state and may be reused concurrently.
type Builder struct {
	logger  hclog.Logger
	trainer svm.Trainer
	workers int
}

// NewBuilder creates a builder with the built-in SMO trainer, one worker per
// CPU and a null logger.
func NewBuilder() *Builder {
	return &Builder{
		logger:  hclog.NewNullLogger(),
		trainer: svm.NewSMO(),
		workers: runtime.NumCPU(),
	}
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(logger hclog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithTrainer sets the SVM trainer.
func (b *Builder) WithTrainer(trainer svm.Trainer) *Builder {
	if trainer != nil {
		b.trainer = trainer
	}
	return b
}

// WithWorkers sets the number of scan workers. Values below 1 mean one worker.
func (b *Builder) WithWorkers(n int) *Builder {
	if n < 1 {
		n = 1
	}
	b.workers = n
	return b
}

// BuildMask builds a mask with a default builder and a background context.
func BuildMask(src PixelSource, strategy classify.Strategy) (*Mask, error) {
	return NewBuilder().Build(context.Background(), src, strategy)
}

// Build validates strategy, prepares its classifier and classifies every pixel
// of src. No mask is returned on error.
func (b *Builder) Build(ctx context.Context, src PixelSource, strategy classify.Strategy) (*Mask, error) {
	if strategy == nil {
		return nil, classify.ErrUnknownStrategy
	}
	if err := strategy.Validate(); err != nil {
		return nil, err
	}

	var (
		classifier classify.Classifier
		display    func(*Mask) colour.RGB
	)

	switch s := strategy.(type) {
	case classify.Threshold:
		c, err := s.Compile()
		if err != nil {
			return nil, err
		}
		b.logger.Debug("compiled threshold classifier",
			"space", s.Space, "metric", s.Metric, "threshold", s.Threshold, "references", len(s.ReferenceColours))
		classifier = c
		display = func(*Mask) colour.RGB { return s.DisplayColour() }

	case classify.SVM:
		b.logger.Debug("training svm",
			"space", s.Space, "kernel", s.Kernel, "c_exp", s.CExponent, "gamma_exp", s.GammaExponent,
			"positive", len(s.Positive), "negative", len(s.Negative))
		c, err := s.Train(ctx, b.trainer)
		if err != nil {
			return nil, err
		}
		b.logger.Debug("trained svm",
			"support_vectors", c.Model().NumSupportVectors(), "iterations", c.Model().Iterations, "rho", c.Model().Rho)
		classifier = c
		display = func(m *Mask) colour.RGB { return m.ForegroundAverage(src).Invert() }

	default:
		return nil, fmt.Errorf("%w: %T", classify.ErrUnknownStrategy, strategy)
	}

	m := &Mask{
		Width:   src.Width(),
		Height:  src.Height(),
		Opacity: 1,
		Method:  strategy.Method(),
	}
	m.Cells = make([]bool, m.Width*m.Height)

	if err := b.scan(ctx, src, classifier, m); err != nil {
		return nil, err
	}
	m.DisplayColour = display(m)

	b.logger.Debug("built mask",
		"method", m.Method, "width", m.Width, "height", m.Height, "foreground", m.Count(), "display", m.DisplayColour.Hex())

	return m, nil
}

// scan splits the rows into contiguous bands, one per worker.
func (b *Builder) scan(ctx context.Context, src PixelSource, c classify.Classifier, m *Mask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.Height == 0 || m.Width == 0 {
		return nil
	}

	workers := min(b.workers, m.Height)
	band := (m.Height + workers - 1) / workers

	b.logger.Debug("scanning", "width", m.Width, "height", m.Height, "workers", workers)

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < m.Height; start += band {
		end := min(start+band, m.Height)
		g.Go(func() error {
			for y := start; y < end; y++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				row := m.Cells[y*m.Width : (y+1)*m.Width]
				for x := range row {
					row[x] = c.Classify(src.RGB(x, y))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// A cancellation that lands after the last row still aborts the build.
	return ctx.Err()
}
