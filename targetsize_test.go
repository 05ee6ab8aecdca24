package shrink

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEncoder produces sizes proportional to quality and pixel count:
// a 100x100 image at quality q is q*100 bytes. Lossless formats ignore
// quality and cost a tenth of a byte per pixel.
type fakeEncoder struct {
	requests []EncodeRequest
	widths   []int
	failAt   int
}

func (f *fakeEncoder) Encode(img Image, req EncodeRequest) (*EncodeResult, error) {
	f.requests = append(f.requests, req)
	f.widths = append(f.widths, img.Width())
	if f.failAt > 0 && len(f.requests) == f.failAt {
		return nil, &EncodeError{Format: req.Format, Err: errors.New("encoder exploded")}
	}
	area := int64(img.Width() * img.Height())
	size := area * int64(req.Quality) / 100
	if req.Format.Lossless() {
		size = area / 10
	}
	return &EncodeResult{Data: make([]byte, size), Size: size}, nil
}

func qualities(reqs []EncodeRequest) []int {
	out := make([]int, len(reqs))
	for i, r := range reqs {
		out[i] = r.Quality
	}
	return out
}

func TestCompressQualityLadderFirstFit(t *testing.T) {
	enc := &fakeEncoder{}
	img := mustImage(t, makeTestImage(100, 100))

	out, err := NewCompressor(enc, Lanczos, nil).CompressToTarget(img, 5000, JPEG)
	require.NoError(t, err)

	assert.True(t, out.MetTarget)
	assert.Equal(t, 50, out.Quality)
	assert.Equal(t, 1.0, out.Scale)
	assert.Equal(t, int64(5000), out.Size)
	assert.Equal(t, Dimensions{Width: 100, Height: 100}, out.Dimensions)
	assert.Equal(t, 10, out.Attempts)
	assert.Equal(t, []int{95, 90, 85, 80, 75, 70, 65, 60, 55, 50}, qualities(enc.requests))
}

func TestCompressFirstRungFits(t *testing.T) {
	enc := &fakeEncoder{}
	img := mustImage(t, makeTestImage(100, 100))

	out, err := NewCompressor(enc, Lanczos, nil).CompressToTarget(img, 1<<20, JPEG)
	require.NoError(t, err)
	assert.True(t, out.MetTarget)
	assert.Equal(t, 95, out.Quality)
	assert.Equal(t, 1, out.Attempts)
}

func TestCompressFallsBackToDownscale(t *testing.T) {
	enc := &fakeEncoder{}
	img := mustImage(t, makeTestImage(100, 100))

	out, err := NewCompressor(enc, Lanczos, nil).CompressToTarget(img, 700, JPEG)
	require.NoError(t, err)

	// Quality 10 gives 1000 bytes; 0.5 scale at pinned quality 20 gives 500.
	assert.True(t, out.MetTarget)
	assert.Equal(t, 20, out.Quality)
	assert.InDelta(t, 0.5, out.Scale, 1e-9)
	assert.Equal(t, Dimensions{Width: 50, Height: 50}, out.Dimensions)
	assert.Equal(t, 18+5, out.Attempts)

	// Every downscale rung scales the original, never the previous rung.
	assert.Equal(t, []int{90, 80, 70, 60, 50}, enc.widths[18:])
	for _, q := range qualities(enc.requests[18:]) {
		assert.Equal(t, 20, q)
	}
}

func TestCompressUnreachableTarget(t *testing.T) {
	enc := &fakeEncoder{}
	img := mustImage(t, makeTestImage(100, 100))

	out, err := NewCompressor(enc, Lanczos, nil).CompressToTarget(img, 10, JPEG)
	require.NoError(t, err, "an unreachable target is not an error")

	assert.False(t, out.MetTarget)
	assert.InDelta(t, 0.3, out.Scale, 1e-9)
	assert.Equal(t, 20, out.Quality)
	assert.Equal(t, Dimensions{Width: 30, Height: 30}, out.Dimensions)
	assert.Equal(t, int64(180), out.Size)
	assert.Equal(t, 25, out.Attempts)
	assert.Equal(t, []int{90, 80, 70, 60, 50, 40, 30}, enc.widths[18:])
}

func TestCompressZeroTargetNeverFits(t *testing.T) {
	out, err := NewCompressor(&fakeEncoder{}, Lanczos, nil).
		CompressToTarget(mustImage(t, makeTestImage(20, 20)), 0, JPEG)
	require.NoError(t, err)
	assert.False(t, out.MetTarget)
	assert.Equal(t, 25, out.Attempts)
}

func TestCompressLosslessWalksWholeQualityLadder(t *testing.T) {
	enc := &fakeEncoder{}
	img := mustImage(t, makeTestImage(100, 100))

	out, err := NewCompressor(enc, Lanczos, nil).CompressToTarget(img, 500, PNG)
	require.NoError(t, err)

	// 1000 bytes at every quality; 0.9 → 810, 0.8 → 640, 0.7 → 490.
	assert.True(t, out.MetTarget)
	assert.InDelta(t, 0.7, out.Scale, 1e-9)
	assert.Equal(t, 20, out.Quality)
	assert.Equal(t, 18+3, out.Attempts)

	want := []int{95, 90, 85, 80, 75, 70, 65, 60, 55, 50, 45, 40, 35, 30, 25, 20, 15, 10, 20, 20, 20}
	assert.Equal(t, want, qualities(enc.requests))
}

func TestCompressLosslessFitsUnscaled(t *testing.T) {
	enc := &fakeEncoder{}
	out, err := NewCompressor(enc, Lanczos, nil).
		CompressToTarget(mustImage(t, makeTestImage(100, 100)), 1000, PNG)
	require.NoError(t, err)
	assert.True(t, out.MetTarget)
	assert.Equal(t, 95, out.Quality)
	assert.Equal(t, 1, out.Attempts)
}

func TestCompressEncoderErrorAborts(t *testing.T) {
	for _, failAt := range []int{3, 20} {
		enc := &fakeEncoder{failAt: failAt}
		out, err := NewCompressor(enc, Lanczos, nil).
			CompressToTarget(mustImage(t, makeTestImage(100, 100)), 10, JPEG)
		assert.Nil(t, out)
		assert.True(t, IsEncodeError(err), "fail at attempt %d", failAt)
		assert.Len(t, enc.requests, failAt)
	}
}

func TestCompressReportsAttempts(t *testing.T) {
	var attempts []Attempt
	c := NewCompressor(&fakeEncoder{}, Lanczos, func(a Attempt) { attempts = append(attempts, a) })

	out, err := c.CompressToTarget(mustImage(t, makeTestImage(100, 100)), 700, JPEG)
	require.NoError(t, err)
	require.Len(t, attempts, out.Attempts)

	first, last := attempts[0], attempts[len(attempts)-1]
	assert.Equal(t, Attempt{Phase: 1, Quality: 95, Scale: 1, Size: 9500, Fits: false}, first)
	assert.Equal(t, 2, last.Phase)
	assert.True(t, last.Fits)
	for _, a := range attempts[:len(attempts)-1] {
		assert.False(t, a.Fits)
	}
}

func TestCompressRejectsBadInput(t *testing.T) {
	c := NewCompressor(&fakeEncoder{}, Lanczos, nil)

	_, err := c.CompressToTarget(Image{}, 100, JPEG)
	assert.True(t, IsInvalidParameter(err))

	_, err = c.CompressToTarget(mustImage(t, makeTestImage(4, 4)), -1, JPEG)
	assert.True(t, IsInvalidParameter(err))
}

func TestCompressRealJPEG(t *testing.T) {
	img := mustImage(t, makeTestImage(400, 300))
	const target = 8 * 1024

	out, err := CompressToTarget(img, target, JPEG)
	require.NoError(t, err)
	if out.MetTarget {
		assert.LessOrEqual(t, out.Size, int64(target))
	}
	assert.Equal(t, int64(len(out.Data)), out.Size)

	decoded, err := Decode(out.Data)
	require.NoError(t, err)
	assert.Equal(t, out.Dimensions, decoded.Dimensions())
}

func TestCompressIsDeterministic(t *testing.T) {
	img := mustImage(t, makeTestImage(120, 90))
	a, err := CompressToTarget(img, 2048, JPEG)
	require.NoError(t, err)
	b, err := CompressToTarget(img, 2048, JPEG)
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)
	assert.Equal(t, a.Quality, b.Quality)
	assert.Equal(t, a.Scale, b.Scale)
}
