package shrink

// Quality ladder: 95, 90, ..., 15, 10.
const (
	qualityStart = 95
	qualityStep  = 5
	qualityFloor = 10
)

// minScaledQuality floors the quality pinned for the downscale ladder. The
// ladder is only entered after the quality ladder bottoms out at qualityFloor,
// so the pinned quality is always max(qualityFloor, minScaledQuality) = 20.
const minScaledQuality = 20

// scaleLadder holds the downscale factors in tenths: 0.9 down to 0.3.
var scaleLadder = [...]int{9, 8, 7, 6, 5, 4, 3}

// Compressor drives an Encoder toward a byte budget. It holds no state
// between calls and is safe for concurrent use if its Encoder is.
type Compressor struct {
	encoder   Encoder
	filter    Filter
	onAttempt func(Attempt)
}

// NewCompressor returns a Compressor that encodes with enc and downscales with
// filter. onAttempt, if non-nil, observes every encode.
func NewCompressor(enc Encoder, filter Filter, onAttempt func(Attempt)) *Compressor {
	return &Compressor{encoder: enc, filter: filter, onAttempt: onAttempt}
}

// CompressToTarget compresses img toward targetBytes using DefaultCodec and
// Lanczos resampling.
func CompressToTarget(img Image, targetBytes int64, format Format) (*Outcome, error) {
	return NewCompressor(DefaultCodec, Lanczos, nil).CompressToTarget(img, targetBytes, format)
}

// CompressToTarget searches for the highest-fidelity encoding of img whose
// size is at most targetBytes.
//
// The quality ladder is tried first, on the unscaled image, and the first
// quality that fits wins. If none fits, the downscale ladder scales the
// original image by 0.9 ... 0.3 and encodes each at a pinned quality; the first
// scale that fits wins. When nothing fits, the 0.3 result is returned with
// MetTarget false. An unreachable target is never an error; only encoder
// failures are. Every rung is a real encode, lossless formats included.
func (c *Compressor) CompressToTarget(img Image, targetBytes int64, format Format) (*Outcome, error) {
	if img.img == nil {
		return nil, invalidParam("image", nil, "empty image")
	}
	if targetBytes < 0 {
		return nil, invalidParam("target size", targetBytes, "must not be negative")
	}

	attempts := 0

	// ── Phase 1: quality ladder ─────────────────────────────────────────
	lastQuality := qualityStart
	for q := qualityStart; q >= qualityFloor; q -= qualityStep {
		lastQuality = q
		res, err := c.encoder.Encode(img, EncodeRequest{Format: format, Quality: q})
		if err != nil {
			return nil, err
		}
		attempts++
		fits := res.Size <= targetBytes
		c.report(Attempt{Phase: 1, Quality: q, Scale: 1, Size: res.Size, Fits: fits})
		if fits {
			return newOutcome(res, q, 1, img, true, attempts), nil
		}
	}

	// ── Phase 2: downscale ladder ───────────────────────────────────────
	pinned := max(lastQuality, minScaledQuality)
	var last *Outcome
	for _, tenths := range scaleLadder {
		factor := float64(tenths) / 10
		scaled := Scale(img, factor, c.filter)
		res, err := c.encoder.Encode(scaled, EncodeRequest{Format: format, Quality: pinned})
		if err != nil {
			return nil, err
		}
		attempts++
		fits := res.Size <= targetBytes
		c.report(Attempt{Phase: 2, Quality: pinned, Scale: factor, Size: res.Size, Fits: fits})
		last = newOutcome(res, pinned, factor, scaled, fits, attempts)
		if fits {
			return last, nil
		}
	}

	return last, nil
}

// encodeOnce encodes img at a fixed quality with no size target.
func (c *Compressor) encodeOnce(img Image, format Format, quality int) (*Outcome, error) {
	res, err := c.encoder.Encode(img, EncodeRequest{Format: format, Quality: quality})
	if err != nil {
		return nil, err
	}
	return newOutcome(res, quality, 1, img, true, 1), nil
}

func (c *Compressor) report(a Attempt) {
	if c.onAttempt != nil {
		c.onAttempt(a)
	}
}

func newOutcome(res *EncodeResult, quality int, scale float64, img Image, met bool, attempts int) *Outcome {
	return &Outcome{
		Data:       res.Data,
		Quality:    quality,
		Scale:      scale,
		Size:       res.Size,
		Dimensions: img.Dimensions(),
		MetTarget:  met,
		Attempts:   attempts,
	}
}
