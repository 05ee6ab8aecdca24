package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/shamspias/shrink"
	"github.com/shamspias/shrink/internal/config"
)

// app is what every command needs once flags and config are resolved.
type app struct {
	cfg       *config.Config
	opts      shrink.Options
	fs        afero.Fs
	logger    *slog.Logger
	optimizer *shrink.Optimizer
}

func newApp(cmd *cobra.Command) (*app, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	opts, err := cfg.OptimizeOptions()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())
	fs := afero.NewOsFs()
	return &app{
		cfg:       cfg,
		opts:      opts,
		fs:        fs,
		logger:    logger,
		optimizer: shrink.NewOptimizer(fs, logger),
	}, nil
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shrink [file|folder]",
		Short: "Make images smaller, optionally to a byte budget",
		Long: strings.TrimSpace(`
Reduce image file size while respecting size, dimension and aspect-ratio limits.

With --target-size, quality is lowered step by step (95 down to 10) until the
output fits; if it still does not fit, the image is downscaled (90% down to 30%).
The closest result is kept even when the target cannot be reached.
`),
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		Version:      version,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			input := args[0]
			output, _ := cmd.Flags().GetString("output")
			batch, _ := cmd.Flags().GetBool("batch")
			if stat, err := a.fs.Stat(input); err == nil && stat.IsDir() {
				batch = true
			}

			if batch {
				return runBatch(cmd, a, input, output)
			}
			return runSingle(cmd, a, input, output)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("target-size", "t", "", "Target size in KB (suffixes B, KB, MB accepted)")
	flags.IntP("quality", "q", shrink.DefaultQuality, "Quality 1-100, used when no target size is given")
	flags.IntP("max-width", "w", 0, "Maximum width in pixels (0 = no limit)")
	flags.IntP("max-height", "H", 0, "Maximum height in pixels (0 = no limit)")
	flags.StringP("format", "f", "JPEG", "Output format: JPEG|PNG|WEBP|AVIF")
	flags.StringP("aspect-ratio", "a", "", "Crop to aspect ratio width:height (e.g. 16:9)")
	flags.String("filter", "lanczos", "Resampling filter: lanczos|catmullrom|mitchell|box")
	flags.StringP("config", "c", "", "Config file (default: ./shrink.yaml, ~/.config/shrink/shrink.yaml)")
	flags.String("log-level", "info", "Log level: debug|info|warn|error")
	flags.Bool("log-json", false, "Log as JSON")

	rootCmd.Flags().StringP("output", "o", "", "Output file (single) or folder (batch)")
	rootCmd.Flags().BoolP("batch", "b", false, "Batch process a folder")
	rootCmd.Flags().IntP("workers", "j", 0, "Concurrent workers in batch mode (0 = number of CPUs)")
	rootCmd.Flags().String("report", "", "Write a YAML batch report to this path")

	rootCmd.AddCommand(newInteractiveCmd(), newInspectCmd(), newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shrink %s\n", version)
		},
	}
}

func runSingle(cmd *cobra.Command, a *app, input, output string) error {
	result, err := a.optimizer.OptimizeFile(cmd.Context(), input, output, a.opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result)
	fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", result.Output)
	return nil
}
