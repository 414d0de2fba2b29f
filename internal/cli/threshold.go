package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/colourmask/internal/classify"
	"github.com/jmylchreest/colourmask/internal/colour"
	"github.com/jmylchreest/colourmask/internal/mask"
)

type thresholdOptions struct {
	colours   *colourList
	space     string
	metric    string
	threshold int
	// thresholdMetric names the metric whose range --threshold is read on.
	thresholdMetric string
	out             outputOptions
}

func newThresholdCmd(global *globalOptions) *cobra.Command {
	opts := &thresholdOptions{colours: newColourList(colour.MaxReferenceColours)}

	cmd := &cobra.Command{
		Use:   "threshold <image>",
		Short: "Mask pixels close to reference colours",
		Long: `Mark every pixel whose distance to at least one reference colour is below
the threshold. Distances are measured in the chosen colour space with every
channel scaled to 0-255.

Without --threshold the calibrated default for the metric is used
(see "colourmask range"). --threshold-metric reads --threshold on another
metric's range and rescales it onto --metric, keeping the same fraction.

Supported image formats: JPEG, PNG, GIF, WebP, optionally xz-compressed.

Examples:
  # Everything near pure red
  colourmask threshold --colour ff0000 photo.jpg

  # Two references, Euclidean distance in HSV, with a mask file
  colourmask threshold -c '#3a7d2c,#6b8e23' --space hsv --metric l2 -o mask.png photo.jpg

  # Reuse an L1 threshold of 160 with the L2 metric (rescaled to 100)
  colourmask threshold -c ff0000 --metric l2 -t 160 --threshold-metric l1 photo.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runThreshold(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().VarP(opts.colours, "colour", "c", fmt.Sprintf("reference colours as hex, repeatable (max %d)", colour.MaxReferenceColours))
	cmd.Flags().StringVar(&opts.space, "space", string(colour.SpaceRGB), "colour space (rgb, hsv, h1h2h3)")
	cmd.Flags().StringVar(&opts.metric, "metric", string(colour.MetricL1), "distance metric (l1, l2)")
	cmd.Flags().IntVarP(&opts.threshold, "threshold", "t", 0, "distance threshold (default: calibrated per metric)")
	cmd.Flags().StringVar(&opts.thresholdMetric, "threshold-metric", "", "metric whose range --threshold is given on (default: --metric)")
	opts.out.register(cmd)
	_ = cmd.MarkFlagRequired("colour")

	return cmd
}

// strategy resolves flags into a validated threshold strategy.
func (o *thresholdOptions) strategy(thresholdSet bool) (classify.Threshold, error) {
	space, err := colour.ParseColorSpace(o.space)
	if err != nil {
		return classify.Threshold{}, err
	}
	kind, err := colour.ParseMetric(o.metric)
	if err != nil {
		return classify.Threshold{}, err
	}
	r, err := thresholdRange(kind)
	if err != nil {
		return classify.Threshold{}, err
	}

	threshold := r.Default
	if thresholdSet {
		fromKind, from := kind, r
		if o.thresholdMetric != "" {
			if fromKind, err = colour.ParseMetric(o.thresholdMetric); err != nil {
				return classify.Threshold{}, err
			}
			if from, err = thresholdRange(fromKind); err != nil {
				return classify.Threshold{}, err
			}
		}
		if o.threshold < 0 || o.threshold > from.Max {
			return classify.Threshold{}, fmt.Errorf("threshold %d outside 0-%d for %s", o.threshold, from.Max, fromKind)
		}
		threshold = from.Rescale(o.threshold, r)
	} else if o.thresholdMetric != "" {
		return classify.Threshold{}, fmt.Errorf("--threshold-metric requires --threshold")
	}

	s := classify.Threshold{
		ReferenceColours: o.colours.Colours(),
		Space:            space,
		Metric:           kind,
		Threshold:        threshold,
	}
	return s, s.Validate()
}

func runThreshold(cmd *cobra.Command, global *globalOptions, opts *thresholdOptions, path string) error {
	strategy, err := opts.strategy(cmd.Flags().Changed("threshold"))
	if err != nil {
		return err
	}

	src, err := loadSource(path)
	if err != nil {
		return err
	}
	global.logger.Debug("image loaded", "path", path, "width", src.Width(), "height", src.Height())

	m, err := mask.NewBuilder().
		WithLogger(global.logger).
		WithWorkers(global.cfg.Workers).
		Build(cmd.Context(), src, strategy)
	if err != nil {
		return fmt.Errorf("failed to build mask: %w", err)
	}

	return opts.out.writeResults(cmd, src, m)
}
