package shrink_test

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/shamspias/shrink"
)

func ExampleOptimizeFile() {
	ctx := context.Background()
	opts := shrink.DefaultOptions() // JPEG, quality 85
	opts.TargetSizeKB = 200
	opts.MaxWidth = 1920

	result, err := shrink.OptimizeFile(ctx, "photo.jpg", "", opts)
	if err != nil {
		panic(err)
	}
	fmt.Println(result)
}

func ExampleOptimizer_OptimizeBytes() {
	ctx := context.Background()

	// Common server-side pattern: receive bytes, optimize, return bytes.
	inputData := []byte{} // ... from HTTP request, S3, etc.

	opts := shrink.DefaultOptions()
	opts.Format = shrink.WEBP
	opts.AspectRatio = &shrink.AspectRatio{W: 16, H: 9}

	o := shrink.NewOptimizer(nil, slog.Default())
	result, err := o.OptimizeBytes(ctx, inputData, opts)
	if err != nil {
		panic(err)
	}
	_ = result.Bytes() // Ready to write to response or storage.
}

func ExampleOptimizer_OptimizeBatch() {
	fs := afero.NewOsFs()
	o := shrink.NewOptimizer(fs, slog.Default())

	items, err := shrink.PlanBatch(fs, "photos", "", shrink.JPEG)
	if err != nil {
		panic(err)
	}

	opts := shrink.DefaultOptions()
	opts.TargetSizeKB = 300
	_, summary := o.OptimizeBatch(context.Background(), items, shrink.BatchOptions{
		Workers: 4,
		Options: opts,
		OnItem: func(done, total int, r shrink.BatchResult) {
			fmt.Printf("[%d/%d] %s\n", done, total, r.Item.Src)
		},
	})
	fmt.Println(summary)
}

func ExampleCompressToTarget() {
	img, err := shrink.Decode([]byte{ /* encoded image */ })
	if err != nil {
		panic(err)
	}

	outcome, err := shrink.CompressToTarget(img, 100*1024, shrink.JPEG)
	if err != nil {
		panic(err)
	}
	fmt.Printf("quality=%d scale=%.1f size=%d met=%t\n",
		outcome.Quality, outcome.Scale, outcome.Size, outcome.MetTarget)
}

func ExampleInspect() {
	fs := afero.NewOsFs()
	img, _, err := shrink.NewOptimizer(fs, nil).Open("photo.jpg")
	if err != nil {
		panic(err)
	}

	stats := shrink.Inspect(img)
	fmt.Printf("%dx%d, %d colors, recommended %s\n",
		stats.Width, stats.Height, stats.UniqueColors, stats.RecommendedFormat)
}
