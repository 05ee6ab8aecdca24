package shrink

import (
	"math"
)

// ImageStats contains inspection results for an image.
type ImageStats struct {
	// Width and Height in pixels.
	Width, Height int

	// Mode is the decoded color mode.
	Mode ColorMode

	// HasAlpha indicates at least one pixel is not fully opaque.
	HasAlpha bool

	// IsGrayscale indicates all pixels have R == G == B.
	IsGrayscale bool

	// UniqueColors is the number of distinct colors (sampled for large images,
	// capped at 1024).
	UniqueColors int

	// Entropy of the luminance histogram in bits (0-8).
	// Low entropy = highly compressible, high entropy = complex/noisy.
	Entropy float64

	// RecommendedFormat based on the inspection.
	RecommendedFormat Format
}

// Inspect summarizes img to help pick an output format.
func Inspect(img Image) ImageStats {
	stats := ImageStats{
		Width:  img.Width(),
		Height: img.Height(),
		Mode:   img.Mode(),
	}
	if img.img == nil {
		return stats
	}

	src := toNRGBA(img.img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	// Single pass: histogram and sampled color set.
	histogram := [256]float64{}
	colorSet := make(map[uint32]struct{})
	maxSample := 50000
	step := 1
	if w*h > maxSample {
		step = w * h / maxSample
	}

	idx := 0
	for y := 0; y < h; y++ {
		off := y * src.Stride
		for x := 0; x < w; x++ {
			i := off + x*4
			r, g, b, a := src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3]

			lum := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
			histogram[int(lum+0.5)]++

			if idx%step == 0 && len(colorSet) < 1024 {
				key := uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a)
				colorSet[key] = struct{}{}
			}
			idx++
		}
	}

	stats.HasAlpha = usesAlpha(src)
	stats.IsGrayscale = isGrayscale(src)
	stats.UniqueColors = len(colorSet)
	stats.Entropy = computeEntropy(histogram[:], float64(w*h))
	stats.RecommendedFormat = recommendFormat(stats)
	return stats
}

// computeEntropy calculates Shannon entropy from a histogram.
func computeEntropy(histogram []float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	var entropy float64
	for _, count := range histogram {
		if count > 0 {
			p := count / total
			entropy -= p * math.Log2(p)
		}
	}
	return entropy
}

// recommendFormat: transparency needs an alpha format, flat artwork
// compresses best losslessly, everything else is photographic.
func recommendFormat(stats ImageStats) Format {
	switch {
	case stats.HasAlpha:
		return WEBP
	case stats.UniqueColors < 256:
		return PNG
	default:
		return JPEG
	}
}
