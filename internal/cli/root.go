// Package cli provides the command-line interface for colourmask.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/colourmask/internal/config"
	"github.com/jmylchreest/colourmask/internal/version"
)

// globalOptions are the persistent flags plus the environment they override.
type globalOptions struct {
	verbose bool
	quiet   bool
	workers int

	cfg    config.Config
	logger hclog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "colourmask",
		Short: "Build binary masks from images by picking colours",
		Long: `colourmask marks the pixels of an image that look like a set of picked colours.

Two methods are available:
  threshold  foreground is anything closer than a distance to a reference colour
  svm        a kernel SVM learns foreground from positive and negative samples

The resulting mask can be written as a PNG, blended over the source image, or
previewed in the terminal.`,
		Version:      version.Short(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().IntVarP(&opts.workers, "workers", "w", 0, "scan workers (default: $"+config.EnvWorkers+" or one per CPU)")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newThresholdCmd(opts))
	rootCmd.AddCommand(newSVMCmd(opts))
	rootCmd.AddCommand(newRangeCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the command tree and exits non-zero on error. An interrupt
// cancels a build in progress.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// load reads the environment and applies flag overrides.
func (o *globalOptions) load(cmd *cobra.Command) error {
	if o.verbose && o.quiet {
		return fmt.Errorf("--verbose and --quiet cannot be used together")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cmd.Flags().Changed("workers") {
		if o.workers < 1 {
			return fmt.Errorf("--workers must be at least 1, got %d", o.workers)
		}
		cfg.Workers = o.workers
	}

	level := cfg.LogLevel
	switch {
	case o.verbose:
		level = hclog.Debug
	case o.quiet:
		level = hclog.Error
	}

	o.cfg = cfg
	o.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "colourmask",
		Output: cmd.ErrOrStderr(),
		Level:  level,
	})

	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
