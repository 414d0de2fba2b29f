package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/colourmask/internal/colour"
)

func newRangeCmd() *cobra.Command {
	var metricFlag string

	cmd := &cobra.Command{
		Use:   "range",
		Short: "Show threshold calibration per metric",
		Long: `Print the threshold range used by the threshold command: the maximum
distance rounded up to whole major ticks, the default threshold, and the tick
spacing.

Every colour space is compared with its channels scaled to 0-255, so one
range per metric applies to all of them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			metrics := colour.ValidMetrics()
			if metricFlag != "" {
				m, err := colour.ParseMetric(metricFlag)
				if err != nil {
					return err
				}
				metrics = []colour.MetricKind{m}
			}

			table := NewTable([]string{"Metric", "Max", "Default", "Major", "Minor"})
			for _, kind := range metrics {
				r, err := thresholdRange(kind)
				if err != nil {
					return err
				}
				table.AddRow([]string{
					string(kind),
					strconv.Itoa(r.Max),
					strconv.Itoa(r.Default),
					strconv.Itoa(r.MajorTick),
					strconv.Itoa(r.MinorTick),
				})
			}

			fmt.Fprint(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}

	cmd.Flags().StringVar(&metricFlag, "metric", "", "only this metric (l1, l2)")

	return cmd
}

// thresholdRange is the calibrated picker range of a metric over 0-255 channels.
func thresholdRange(kind colour.MetricKind) (colour.ThresholdRange, error) {
	m, err := colour.NewMetric(kind)
	if err != nil {
		return colour.ThresholdRange{}, err
	}
	return colour.NewThresholdRange(m, colour.Channels, colour.Scale255.Range()), nil
}
