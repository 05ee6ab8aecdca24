package main

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shamspias/shrink"
	"github.com/shamspias/shrink/internal/report"
)

func runBatch(cmd *cobra.Command, a *app, inputDir, outputDir string) error {
	if outputDir == "" {
		outputDir = a.cfg.Batch.OutputDir
	}
	if outputDir == "" {
		outputDir = filepath.Join(inputDir, "optimized")
	}

	items, err := shrink.PlanBatch(a.fs, inputDir, outputDir, a.opts.Format)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "No image files found in the specified folder.")
		return nil
	}

	runID := uuid.New().String()
	logger := a.logger.With("run_id", runID)
	logger.Info("batch started", "input_dir", inputDir, "output_dir", outputDir, "files", len(items))
	started := time.Now()

	var mu sync.Mutex
	optimizer := shrink.NewOptimizer(a.fs, logger)
	results, summary := optimizer.OptimizeBatch(cmd.Context(), items, shrink.BatchOptions{
		Workers: a.cfg.Batch.Workers,
		Options: a.opts,
		OnItem: func(completed, total int, r shrink.BatchResult) {
			mu.Lock()
			defer mu.Unlock()
			name := filepath.Base(r.Item.Src)
			if r.Err != nil {
				fmt.Fprintf(out, "[%d/%d] ✗ %s: %v\n", completed, total, name, r.Err)
				return
			}
			fmt.Fprintf(out, "[%d/%d] ✓ %s: %s\n", completed, total, name, r.Result)
		},
	})

	fmt.Fprintln(out, summary)
	fmt.Fprintf(out, "Output folder: %s\n", outputDir)

	if path := a.cfg.Batch.Report; path != "" {
		rep := &report.Report{
			RunID:      runID,
			StartedAt:  started,
			FinishedAt: time.Now(),
			InputDir:   inputDir,
			OutputDir:  outputDir,
			Format:     a.opts.Format,
			TargetKB:   a.opts.TargetSizeKB,
			Summary:    summary,
			Files:      report.Files(results),
		}
		if err := report.Write(a.fs, path, rep); err != nil {
			return err
		}
		logger.Info("report written", "path", path)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Total)
	}
	return nil
}
