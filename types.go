package shrink

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
)

// Format represents an output image format.
type Format int

const (
	// JPEG is baseline lossy JPEG. No alpha; transparency is flattened onto white.
	// It is the zero value and the default output format.
	JPEG Format = iota
	// PNG is lossless. Quality settings are ignored.
	PNG
	// WEBP is lossy WebP with alpha support.
	WEBP
	// AVIF is lossy AVIF with alpha support.
	AVIF
)

type formatInfo struct {
	name     string
	ext      string
	alpha    bool
	lossless bool
}

// formats is the fixed per-format metadata table.
var formats = map[Format]formatInfo{
	JPEG: {name: "JPEG", ext: ".jpg"},
	PNG:  {name: "PNG", ext: ".png", alpha: true, lossless: true},
	WEBP: {name: "WEBP", ext: ".webp", alpha: true},
	AVIF: {name: "AVIF", ext: ".avif", alpha: true},
}

func (f Format) String() string {
	if info, ok := formats[f]; ok {
		return info.name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Extension returns the file extension for f, including the leading dot.
func (f Format) Extension() string {
	if info, ok := formats[f]; ok {
		return info.ext
	}
	return ".jpg"
}

// SupportsAlpha reports whether f can store an alpha channel.
func (f Format) SupportsAlpha() bool { return formats[f].alpha }

// Lossless reports whether f ignores the quality setting.
func (f Format) Lossless() bool { return formats[f].lossless }

func (f Format) valid() bool {
	_, ok := formats[f]
	return ok
}

// MarshalText implements encoding.TextMarshaler so formats read well in reports.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseFormat.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ColorMode tags how an Image stores color.
type ColorMode int

const (
	// ModeRGB is opaque color.
	ModeRGB ColorMode = iota
	// ModeRGBA carries an alpha channel.
	ModeRGBA
	// ModePalette is indexed color, possibly with transparent entries.
	ModePalette
)

func (m ColorMode) String() string {
	switch m {
	case ModeRGBA:
		return "RGBA"
	case ModePalette:
		return "P"
	default:
		return "RGB"
	}
}

// HasAlpha reports whether the mode can carry transparency.
func (m ColorMode) HasAlpha() bool { return m != ModeRGB }

// Filter selects the resampling kernel used for every resize.
// The zero value is Lanczos.
type Filter int

const (
	Lanczos Filter = iota
	CatmullRom
	Mitchell
	// Box averages source pixels by area.
	Box
)

func (f Filter) String() string {
	switch f {
	case CatmullRom:
		return "catmullrom"
	case Mitchell:
		return "mitchell"
	case Box:
		return "box"
	default:
		return "lanczos"
	}
}

func (f Filter) resample() imaging.ResampleFilter {
	switch f {
	case CatmullRom:
		return imaging.CatmullRom
	case Mitchell:
		return imaging.MitchellNetravali
	case Box:
		return imaging.Box
	default:
		return imaging.Lanczos
	}
}

// Dimensions is a width x height pair in pixels.
type Dimensions struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

func dimensionsOf(b image.Rectangle) Dimensions {
	return Dimensions{Width: b.Dx(), Height: b.Dy()}
}

// AspectRatio is a reduced integer ratio such as 16:9.
type AspectRatio struct {
	W, H int
}

func (a AspectRatio) String() string {
	return fmt.Sprintf("%d:%d", a.W, a.H)
}

// EncodeRequest asks an Encoder for one encode. Quality is 1-100 and is
// ignored by lossless formats.
type EncodeRequest struct {
	Format  Format
	Quality int
}

// EncodeResult holds the bytes produced by one encode.
type EncodeResult struct {
	Data []byte
	Size int64
}

// Attempt describes one encode performed during a size-targeting search.
type Attempt struct {
	// Phase is 1 for the quality ladder and 2 for the downscale ladder.
	Phase   int
	Quality int
	Scale   float64
	Size    int64
	Fits    bool
}

// Outcome is the immutable result of a size-targeting search, or of a single
// fixed-quality encode.
type Outcome struct {
	// Data holds the final encoded bytes.
	Data []byte

	// Quality is the quality the final bytes were encoded at.
	Quality int

	// Scale is the uniform scale applied to the source, 1 when unscaled.
	Scale float64

	// Size is len(Data).
	Size int64

	// Dimensions of the encoded image.
	Dimensions Dimensions

	// MetTarget is false only when the byte budget was unreachable and Data is
	// the closest result the search produced.
	MetTarget bool

	// Attempts counts the encodes performed.
	Attempts int
}

// Result contains per-file optimization results and statistics.
type Result struct {
	Input  string
	Output string
	Format Format

	// OriginalSize is the input size in bytes.
	OriginalSize int64

	// FinalSize is the encoded output size in bytes.
	FinalSize int64

	OriginalDimensions Dimensions
	FinalDimensions    Dimensions

	Outcome *Outcome

	// Reduction is 1 - FinalSize/OriginalSize. Negative when the output grew.
	Reduction float64
}

// WriteTo writes the encoded output to w.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	if r.Outcome == nil || len(r.Outcome.Data) == 0 {
		return 0, fmt.Errorf("shrink: no encoded data available")
	}
	n, err := w.Write(r.Outcome.Data)
	return int64(n), err
}

// Bytes returns the encoded output.
func (r *Result) Bytes() []byte {
	if r.Outcome == nil {
		return nil
	}
	return r.Outcome.Data
}

// String returns a human-readable summary of the result.
func (r *Result) String() string {
	target := ""
	if r.Outcome != nil {
		target = fmt.Sprintf(" Q=%d", r.Outcome.Quality)
		if r.Outcome.Scale != 1 {
			target += fmt.Sprintf(" scale=%.0f%%", r.Outcome.Scale*100)
		}
		if !r.Outcome.MetTarget {
			target += " (target not reached)"
		}
	}
	return fmt.Sprintf(
		"%s |%s | %s → %s | %s → %s | %.1f%% reduction",
		r.Format, target,
		r.OriginalDimensions, r.FinalDimensions,
		humanize.IBytes(uint64(r.OriginalSize)), humanize.IBytes(uint64(r.FinalSize)),
		r.Reduction*100,
	)
}

// computeStats fills in Reduction from the sizes.
func (r *Result) computeStats() {
	if r.OriginalSize > 0 {
		r.Reduction = 1 - float64(r.FinalSize)/float64(r.OriginalSize)
	}
}
