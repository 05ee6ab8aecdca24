package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/shamspias/shrink"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show image properties and a recommended output format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			img, size, err := a.optimizer.Open(args[0])
			if err != nil {
				return err
			}
			stats := shrink.Inspect(img)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:        %s\n", args[0])
			fmt.Fprintf(out, "Size:        %s\n", humanize.IBytes(uint64(size)))
			fmt.Fprintf(out, "Dimensions:  %dx%d\n", stats.Width, stats.Height)
			fmt.Fprintf(out, "Mode:        %s\n", stats.Mode)
			fmt.Fprintf(out, "Alpha:       %t\n", stats.HasAlpha)
			fmt.Fprintf(out, "Grayscale:   %t\n", stats.IsGrayscale)
			fmt.Fprintf(out, "Colors:      %d\n", stats.UniqueColors)
			fmt.Fprintf(out, "Entropy:     %.2f bits\n", stats.Entropy)
			fmt.Fprintf(out, "Recommended: %s\n", stats.RecommendedFormat)
			return nil
		},
	}
}
