package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/colourmask/internal/classify"
	"github.com/jmylchreest/colourmask/internal/colour"
	"github.com/jmylchreest/colourmask/internal/mask"
	"github.com/jmylchreest/colourmask/internal/plugin/executor"
	"github.com/jmylchreest/colourmask/internal/svm"
	"github.com/jmylchreest/colourmask/pkg/plugin"
)

// Exponent bounds for --c and --gamma.
const (
	minExponent = -10
	maxExponent = 10
)

type svmOptions struct {
	positive     *colourList
	negative     *colourList
	space        string
	kernel       string
	cExp         int
	gammaExp     int
	solverPlugin string
	out          outputOptions
}

func newSVMCmd(global *globalOptions) *cobra.Command {
	opts := &svmOptions{
		positive: newColourList(colour.MaxReferenceColours),
		negative: newColourList(colour.MaxReferenceColours),
	}

	cmd := &cobra.Command{
		Use:   "svm <image>",
		Short: "Mask pixels with a kernel SVM trained on picked colours",
		Long: `Train a support vector machine on positive (foreground) and negative
(background) colour samples, then classify every pixel with it.

C and gamma are given as base-2 exponents in the range -10 to 10, so the
default of 0 means C = 1 and gamma = 1.

Training normally runs in-process. --solver-plugin (or
$COLOURMASK_SOLVER_PLUGIN) runs it in an external solver plugin instead.

Examples:
  # Sky against everything else
  colourmask svm --positive 87ceeb,4682b4 --negative 228b22,8b4513 photo.jpg

  # RBF kernel with a tighter fit
  colourmask svm -p ff0000 -n 0000ff --kernel rbf --c 4 --gamma 2 --overlay out.png photo.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSVM(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().VarP(opts.positive, "positive", "p", "foreground sample colours as hex, repeatable")
	cmd.Flags().VarP(opts.negative, "negative", "n", "background sample colours as hex, repeatable")
	cmd.Flags().StringVar(&opts.space, "space", string(colour.SpaceRGB), "colour space (rgb, hsv, h1h2h3)")
	cmd.Flags().StringVar(&opts.kernel, "kernel", string(svm.KernelTriangular), "kernel (linear, triangular, rbf)")
	cmd.Flags().IntVar(&opts.cExp, "c", 0, "base-2 exponent of the C penalty (-10 to 10)")
	cmd.Flags().IntVar(&opts.gammaExp, "gamma", 0, "base-2 exponent of the kernel gamma (-10 to 10)")
	cmd.Flags().StringVar(&opts.solverPlugin, "solver-plugin", "", "path to an SVM solver plugin binary")
	opts.out.register(cmd)
	_ = cmd.MarkFlagRequired("positive")
	_ = cmd.MarkFlagRequired("negative")

	return cmd
}

// strategy resolves flags into a validated SVM strategy.
func (o *svmOptions) strategy() (classify.SVM, error) {
	space, err := colour.ParseColorSpace(o.space)
	if err != nil {
		return classify.SVM{}, err
	}
	kernel, err := svm.ParseKernel(o.kernel)
	if err != nil {
		return classify.SVM{}, err
	}
	for name, v := range map[string]int{"--c": o.cExp, "--gamma": o.gammaExp} {
		if v < minExponent || v > maxExponent {
			return classify.SVM{}, fmt.Errorf("%s exponent %d outside %d to %d", name, v, minExponent, maxExponent)
		}
	}

	s := classify.SVM{
		Positive:      o.positive.Colours(),
		Negative:      o.negative.Colours(),
		Space:         space,
		Kernel:        kernel,
		CExponent:     o.cExp,
		GammaExponent: o.gammaExp,
	}
	return s, s.Validate()
}

func runSVM(cmd *cobra.Command, global *globalOptions, opts *svmOptions, path string) error {
	strategy, err := opts.strategy()
	if err != nil {
		return err
	}

	src, err := loadSource(path)
	if err != nil {
		return err
	}
	global.logger.Debug("image loaded", "path", path, "width", src.Width(), "height", src.Height())

	builder := mask.NewBuilder().
		WithLogger(global.logger).
		WithWorkers(global.cfg.Workers)

	pluginPath := global.cfg.SolverPlugin
	if cmd.Flags().Changed("solver-plugin") {
		pluginPath = opts.solverPlugin
	}
	if pluginPath != "" {
		solver, err := executor.New(pluginPath, global.logger)
		if err != nil {
			return err
		}
		defer solver.Close()

		info, err := solver.Metadata()
		if err != nil {
			return err
		}
		global.logger.Debug("using solver plugin", "path", pluginPath,
			"name", info.Name, "version", info.Version, "protocol", info.ProtocolVersion)
		if err := checkSolverPlugin(info, strategy.Kernel); err != nil {
			return fmt.Errorf("solver plugin %s: %w", pluginPath, err)
		}
		builder = builder.WithTrainer(solver)
	}

	m, err := builder.Build(cmd.Context(), src, strategy)
	if err != nil {
		return fmt.Errorf("failed to build mask: %w", err)
	}

	return opts.out.writeResults(cmd, src, m)
}

// checkSolverPlugin rejects plugins speaking another protocol version or
// lacking the requested kernel. An empty kernel list accepts every kernel.
func checkSolverPlugin(info plugin.PluginInfo, kernel svm.Kernel) error {
	if info.ProtocolVersion != plugin.ProtocolVersion {
		return fmt.Errorf("protocol version %q, want %q", info.ProtocolVersion, plugin.ProtocolVersion)
	}
	if len(info.Kernels) == 0 || slices.Contains(info.Kernels, string(kernel)) {
		return nil
	}
	return fmt.Errorf("kernel %q not supported (supported: %s)", kernel, strings.Join(info.Kernels, ", "))
}
