package shrink

import (
	"math"
	"strconv"
	"strings"
)

// DefaultQuality is used when no target size is given.
const DefaultQuality = 85

// Options configures one optimization.
type Options struct {
	// TargetSizeKB is the byte budget in KiB. 0 means no budget; the image is
	// encoded once at Quality.
	TargetSizeKB float64

	// Quality (1-100) for the single encode used when TargetSizeKB is 0.
	// 0 means DefaultQuality.
	Quality int

	// MaxWidth constrains the output width. 0 means no constraint.
	MaxWidth int

	// MaxHeight constrains the output height. 0 means no constraint.
	// It is applied after MaxWidth, against the already-bounded dimensions.
	MaxHeight int

	// Format is the output format (default JPEG, the zero value).
	Format Format

	// AspectRatio, when set, center-crops the image to this ratio before any resize.
	AspectRatio *AspectRatio

	// Filter is the resampling kernel for every resize (default Lanczos).
	Filter Filter

	// OnAttempt is called after every encode of a size-targeting search.
	// Optional.
	OnAttempt func(Attempt)
}

// DefaultOptions returns the defaults: JPEG at quality 85, no constraints.
func DefaultOptions() Options {
	return Options{
		Quality: DefaultQuality,
		Format:  JPEG,
		Filter:  Lanczos,
	}
}

// Validate checks every option and returns an *InvalidParameterError for the
// first one out of range.
func (o Options) Validate() error {
	if math.IsNaN(o.TargetSizeKB) || math.IsInf(o.TargetSizeKB, 0) {
		return invalidParam("target size", o.TargetSizeKB, "must be a finite number")
	}
	if o.TargetSizeKB < 0 {
		return invalidParam("target size", o.TargetSizeKB, "must not be negative")
	}
	if o.Quality < 0 || o.Quality > 100 {
		return invalidParam("quality", o.Quality, "must be between 0 and 100")
	}
	if o.MaxWidth < 0 {
		return invalidParam("max width", o.MaxWidth, "must not be negative")
	}
	if o.MaxHeight < 0 {
		return invalidParam("max height", o.MaxHeight, "must not be negative")
	}
	if !o.Format.valid() {
		return invalidParam("format", int(o.Format), "unknown format")
	}
	if o.AspectRatio != nil && (o.AspectRatio.W <= 0 || o.AspectRatio.H <= 0) {
		return invalidParam("aspect ratio", o.AspectRatio, "both terms must be positive")
	}
	if o.Filter < Lanczos || o.Filter > Box {
		return invalidParam("filter", int(o.Filter), "unknown filter")
	}
	return nil
}

// quality resolves the zero value to DefaultQuality.
func (o Options) quality() int {
	if o.Quality == 0 {
		return DefaultQuality
	}
	return o.Quality
}

// targetBytes converts TargetSizeKB to whole bytes, saturating at
// math.MaxInt64. A size in bytes fits the budget exactly when it is
// <= floor(KB*1024).
func (o Options) targetBytes() int64 {
	b := math.Floor(o.TargetSizeKB * 1024)
	if b >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(b)
}

// ParseFormat parses a format name: jpeg, jpg, png, webp or avif, in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "webp":
		return WEBP, nil
	case "avif":
		return AVIF, nil
	}
	return JPEG, invalidParam("format", s, "use JPEG, PNG, WEBP or AVIF")
}

// ParseFilter parses a resampling filter name. Nearest-neighbor is rejected.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lanczos":
		return Lanczos, nil
	case "catmullrom", "catmull-rom":
		return CatmullRom, nil
	case "mitchell":
		return Mitchell, nil
	case "box", "area":
		return Box, nil
	case "nearest", "nearestneighbor":
		return Lanczos, invalidParam("filter", s, "nearest-neighbor resampling is not supported")
	}
	return Lanczos, invalidParam("filter", s, "use lanczos, catmullrom, mitchell or box")
}

// ParseAspectRatio parses "W:H" into a ratio reduced to lowest terms.
func ParseAspectRatio(s string) (AspectRatio, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return AspectRatio{}, invalidParam("aspect ratio", s, "use width:height, e.g. 16:9")
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil {
		return AspectRatio{}, invalidParam("aspect ratio", s, "terms must be integers")
	}
	if w <= 0 || h <= 0 {
		return AspectRatio{}, invalidParam("aspect ratio", s, "both terms must be positive")
	}
	g := gcd(w, h)
	return AspectRatio{W: w / g, H: h / g}, nil
}

// ParseTargetSize parses a byte budget into KiB. A bare number is KiB; the
// suffixes B, KB and MB are accepted in any case.
func ParseTargetSize(s string) (float64, error) {
	v := strings.TrimSpace(strings.ToUpper(s))
	multiplier := 1.0
	switch {
	case strings.HasSuffix(v, "MB"):
		multiplier = 1024
		v = strings.TrimSuffix(v, "MB")
	case strings.HasSuffix(v, "KB"):
		v = strings.TrimSuffix(v, "KB")
	case strings.HasSuffix(v, "B"):
		multiplier = 1.0 / 1024
		v = strings.TrimSuffix(v, "B")
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, invalidParam("target size", s, "not a number")
	}
	if n < 0 {
		return 0, invalidParam("target size", s, "must not be negative")
	}
	return n * multiplier, nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
