package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/shamspias/shrink"
)

func newInteractiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Prompt for files one at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return runInteractive(cmd, a)
		},
	}
}

// runInteractive loops until "quit" or end of input. Errors for one file are
// printed and the loop continues.
func runInteractive(cmd *cobra.Command, a *app) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "shrink interactive mode. Type 'quit' to exit.")
	for {
		path, err := prompt(in, out, "\nImage path: ")
		if err != nil {
			return nil
		}
		if path == "" {
			continue
		}
		if strings.EqualFold(path, "quit") || strings.EqualFold(path, "exit") {
			return nil
		}
		stat, err := a.fs.Stat(path)
		if err != nil || stat.IsDir() {
			fmt.Fprintf(out, "✗ File not found: %s\n", path)
			continue
		}
		fmt.Fprintf(out, "Original size: %s\n", humanize.IBytes(uint64(stat.Size())))

		opts := a.opts
		answer, err := prompt(in, out, "Target size in KB (empty for none): ")
		if err != nil {
			return nil
		}
		if answer != "" {
			kb, perr := shrink.ParseTargetSize(answer)
			if perr != nil {
				fmt.Fprintf(out, "✗ %v\n", perr)
				continue
			}
			opts.TargetSizeKB = kb
		}

		answer, err = prompt(in, out, fmt.Sprintf("Format [%s]: ", opts.Format))
		if err != nil {
			return nil
		}
		if answer != "" {
			f, perr := shrink.ParseFormat(answer)
			if perr != nil {
				fmt.Fprintf(out, "✗ %v\n", perr)
				continue
			}
			opts.Format = f
		}

		result, err := a.optimizer.OptimizeFile(cmd.Context(), path, "", opts)
		if err != nil {
			fmt.Fprintf(out, "✗ %v\n", err)
			continue
		}
		fmt.Fprintf(out, "✓ %s\n  → %s\n", result, result.Output)
	}
}

// prompt writes label and reads one trimmed line. A final line without a
// newline is still returned; io.EOF is reported only when nothing was read.
func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
