package shrink

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

// BatchItem represents one file to optimize in a batch operation.
type BatchItem struct {
	// Src is the input file path.
	Src string
	// Dst is the output file path. Empty follows OutputPath next to Src.
	Dst string
}

// BatchResult holds the result for a single item in a batch.
type BatchResult struct {
	// Item is the original batch item.
	Item BatchItem
	// Result is the optimization result (nil if Err is non-nil).
	Result *Result
	// Err is any error that occurred.
	Err error
	// Index is the position in the original input slice.
	Index int
}

// BatchOptions configures batch optimization behavior.
type BatchOptions struct {
	// Workers is the number of concurrent workers. 0 = runtime.NumCPU().
	Workers int
	// Options apply to every item.
	Options Options
	// OnItem is called after each item completes, from the worker goroutine.
	OnItem func(completed, total int, r BatchResult)
}

// PlanBatch enumerates the images in inputDir and pairs each with an output
// path in outputDir, which is created if absent. An empty outputDir means
// <inputDir>/optimized. Inputs sharing a stem (a.jpg, a.png) would collide on
// output; later ones get the source extension in their name (a_png_optimized.jpg),
// plus a counter if that is taken too (a_png_2_optimized.jpg).
func PlanBatch(fs afero.Fs, inputDir, outputDir string, format Format) ([]BatchItem, error) {
	if outputDir == "" {
		outputDir = filepath.Join(inputDir, "optimized")
	}
	paths, err := FindImages(fs, inputDir)
	if err != nil {
		return nil, err
	}
	if err := ensureDir(fs, outputDir); err != nil {
		return nil, err
	}

	items := make([]BatchItem, 0, len(paths))
	taken := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		dst := OutputPath(p, format, outputDir)
		if _, dup := taken[dst]; dup {
			base := filepath.Base(p)
			ext := filepath.Ext(base)
			stem := strings.TrimSuffix(base, ext) + "_" + strings.ToLower(strings.TrimPrefix(ext, "."))
			dst = filepath.Join(outputDir, stem+optimizedSuffix+format.Extension())
			// b.PNG and b.png both map to b_png; number until free.
			for n := 2; ; n++ {
				if _, dup := taken[dst]; !dup {
					break
				}
				dst = filepath.Join(outputDir, fmt.Sprintf("%s_%d%s%s", stem, n, optimizedSuffix, format.Extension()))
			}
		}
		taken[dst] = struct{}{}
		items = append(items, BatchItem{Src: p, Dst: dst})
	}
	return items, nil
}

// OptimizeBatch optimizes multiple files concurrently using a worker pool.
// Results are returned in the same order as the input items. A failing item
// never stops the others.
// Cancelling ctx stops new items from starting; in-flight items finish and
// unstarted items report ctx.Err().
func (o *Optimizer) OptimizeBatch(ctx context.Context, items []BatchItem, batchOpts BatchOptions) ([]BatchResult, BatchSummary) {
	if len(items) == 0 {
		return nil, BatchSummary{}
	}

	workers := batchOpts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(items) {
		workers = len(items)
	}

	results := make([]BatchResult, len(items))
	workCh := make(chan int, len(items))
	var wg sync.WaitGroup
	var stats Stats
	var completed atomic.Int64

	// Feed work.
	for i := range items {
		workCh <- i
	}
	close(workCh)

	// Start workers.
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				item := items[idx]
				var br BatchResult

				// Check cancellation before starting new work.
				select {
				case <-ctx.Done():
					br = BatchResult{Item: item, Err: ctx.Err(), Index: idx}
				default:
					result, err := o.OptimizeFile(ctx, item.Src, item.Dst, batchOpts.Options)
					br = BatchResult{Item: item, Result: result, Err: err, Index: idx}
					if err != nil {
						o.logger.Error("optimize failed", "input", item.Src, "error", err)
					}
				}

				results[idx] = br
				stats.Record(br.Result, br.Err)

				if batchOpts.OnItem != nil {
					batchOpts.OnItem(int(completed.Add(1)), len(items), br)
				}
			}
		}()
	}

	wg.Wait()
	return results, stats.Summary()
}

// Stats is a concurrency-safe accumulator of batch totals.
// The zero value is ready to use.
type Stats struct {
	succeeded     atomic.Int64
	failed        atomic.Int64
	originalBytes atomic.Int64
	finalBytes    atomic.Int64
}

// Record adds one file's outcome.
func (s *Stats) Record(r *Result, err error) {
	if err != nil || r == nil {
		s.failed.Add(1)
		return
	}
	s.succeeded.Add(1)
	s.originalBytes.Add(r.OriginalSize)
	s.finalBytes.Add(r.FinalSize)
}

// Summary snapshots the totals.
func (s *Stats) Summary() BatchSummary {
	sum := BatchSummary{
		Succeeded:     int(s.succeeded.Load()),
		Failed:        int(s.failed.Load()),
		OriginalBytes: s.originalBytes.Load(),
		FinalBytes:    s.finalBytes.Load(),
	}
	sum.Total = sum.Succeeded + sum.Failed
	if sum.OriginalBytes > 0 {
		sum.Reduction = 1 - float64(sum.FinalBytes)/float64(sum.OriginalBytes)
	}
	return sum
}

// BatchSummary provides aggregate statistics for a batch operation.
// Byte totals cover successful files only.
type BatchSummary struct {
	Total         int     `yaml:"total"`
	Succeeded     int     `yaml:"succeeded"`
	Failed        int     `yaml:"failed"`
	OriginalBytes int64   `yaml:"original_bytes"`
	FinalBytes    int64   `yaml:"final_bytes"`
	Reduction     float64 `yaml:"reduction"`
}

// String returns a human-readable batch summary.
func (s BatchSummary) String() string {
	return fmt.Sprintf(
		"Batch: %d/%d succeeded | %s → %s | %.1f%% reduction",
		s.Succeeded, s.Total,
		humanize.IBytes(uint64(s.OriginalBytes)), humanize.IBytes(uint64(s.FinalBytes)),
		s.Reduction*100,
	)
}
