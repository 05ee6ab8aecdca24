// Package shrink reduces the storage footprint of raster images while
// respecting size, dimension and aspect-ratio constraints.
//
// The core is a size-targeting search: encoders expose a quality dial but no
// "target bytes" parameter, so shrink walks a descending quality ladder and,
// when quality alone cannot reach the budget, a descending downscale ladder
// over the original pixels.
//
//   - Codec adapter: JPEG, PNG, WebP and AVIF output; alpha flattened for JPEG
//   - Geometry: centered aspect-ratio crop and bounded resize
//   - Size targeting: quality ladder 95..10, then scale ladder 0.9..0.3
//   - Batch processing: concurrent optimization with a worker pool
package shrink

import (
	"context"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Optimizer runs the decode → crop → resize → compress → write pipeline.
// It is safe for concurrent use; every call works on its own Image.
type Optimizer struct {
	fs     afero.Fs
	codec  Codec
	logger *slog.Logger
}

// OptimizerOption customizes an Optimizer.
type OptimizerOption func(*Optimizer)

// WithCodec replaces DefaultCodec.
func WithCodec(c Codec) OptimizerOption {
	return func(o *Optimizer) { o.codec = c }
}

// NewOptimizer returns an Optimizer reading and writing through fs.
// A nil fs means the OS filesystem; a nil logger means slog.Default().
func NewOptimizer(fs afero.Fs, logger *slog.Logger, opts ...OptimizerOption) *Optimizer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := &Optimizer{fs: fs, codec: DefaultCodec, logger: logger}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// OptimizeFile optimizes src into dst on the OS filesystem.
func OptimizeFile(ctx context.Context, src, dst string, opts Options) (*Result, error) {
	return NewOptimizer(nil, nil).OptimizeFile(ctx, src, dst, opts)
}

// OptimizeFile reads src, optimizes it and writes the result to dst. An empty
// dst follows the output path policy: <stem>_optimized<ext> next to src.
//
// The context is consulted only before work starts; once a file is in flight
// it runs to completion.
func (o *Optimizer) OptimizeFile(ctx context.Context, src, dst string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dst == "" {
		dst = OutputPath(src, opts.Format, "")
	}

	data, err := afero.ReadFile(o.fs, src)
	if err != nil {
		return nil, &DecodeError{Path: src, Err: errors.Wrap(err, "read")}
	}

	result, err := o.optimize(data, opts)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) && de.Path == "" {
			de.Path = src
		}
		return nil, err
	}
	result.Input = src
	result.Output = dst

	if err := writeFileAtomic(o.fs, dst, result.Outcome.Data); err != nil {
		return nil, &EncodeError{Format: opts.Format, Err: err}
	}

	o.logger.Info("optimized image",
		"input", src,
		"output", dst,
		"format", result.Format.String(),
		"original", humanize.IBytes(uint64(result.OriginalSize)),
		"final", humanize.IBytes(uint64(result.FinalSize)),
		"quality", result.Outcome.Quality,
		"scale", result.Outcome.Scale,
		"met_target", result.Outcome.MetTarget,
		"reduction_pct", result.Reduction*100,
	)
	return result, nil
}

// OptimizeBytes optimizes encoded image data in memory.
func (o *Optimizer) OptimizeBytes(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return o.optimize(data, opts)
}

// optimize is the shared pipeline.
func (o *Optimizer) optimize(data []byte, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	img, err := o.codec.Decode(data)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Format:             opts.Format,
		OriginalSize:       int64(len(data)),
		OriginalDimensions: img.Dimensions(),
	}

	// Step 1: Normalize once so every later encode starts from the right mode.
	img = Normalize(img, opts.Format)

	// Step 2: Aspect-ratio crop.
	if opts.AspectRatio != nil {
		img, err = CropToAspectRatio(img, opts.AspectRatio.W, opts.AspectRatio.H)
		if err != nil {
			return nil, err
		}
		o.logger.Debug("cropped to aspect ratio", "ratio", opts.AspectRatio.String(), "size", img.Dimensions().String())
	}

	// Step 3: Bounded resize.
	if opts.MaxWidth > 0 || opts.MaxHeight > 0 {
		img = ResizeWithinBounds(img, opts.MaxWidth, opts.MaxHeight, opts.Filter)
		o.logger.Debug("resized within bounds", "size", img.Dimensions().String())
	}

	onAttempt := func(a Attempt) {
		o.logger.Debug("encode attempt",
			"phase", a.Phase, "quality", a.Quality, "scale", a.Scale,
			"size", a.Size, "fits", a.Fits)
		if opts.OnAttempt != nil {
			opts.OnAttempt(a)
		}
	}
	compressor := NewCompressor(o.codec, opts.Filter, onAttempt)

	// Step 4: Encode, to a byte budget when one is given.
	var outcome *Outcome
	if opts.TargetSizeKB > 0 {
		outcome, err = compressor.CompressToTarget(img, opts.targetBytes(), opts.Format)
		if err == nil && !outcome.MetTarget {
			o.logger.Warn("could not reach target size",
				"target", humanize.IBytes(uint64(opts.targetBytes())),
				"final", humanize.IBytes(uint64(outcome.Size)))
		}
	} else {
		outcome, err = compressor.encodeOnce(img, opts.Format, opts.quality())
	}
	if err != nil {
		return nil, err
	}

	result.Outcome = outcome
	result.FinalSize = outcome.Size
	result.FinalDimensions = outcome.Dimensions
	result.computeStats()
	return result, nil
}
