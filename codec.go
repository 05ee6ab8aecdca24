package shrink

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/chai2010/webp"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gen2brain/avif"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// avifSpeed trades encode time for size; 10 is fastest.
const avifSpeed = 8

// Decoder turns encoded bytes into an Image.
type Decoder interface {
	Decode(data []byte) (Image, error)
}

// Encoder encodes an Image at a given format and quality.
// Implementations must be deterministic: the same image and request always
// yield the same size.
type Encoder interface {
	Encode(img Image, req EncodeRequest) (*EncodeResult, error)
}

// Codec is the full decode/encode capability used by the Optimizer.
type Codec interface {
	Decoder
	Encoder
}

// DefaultCodec decodes JPEG, PNG, GIF, BMP, TIFF, WebP and AVIF input and
// encodes JPEG, PNG, WebP and AVIF output. It holds no state.
var DefaultCodec Codec = stdCodec{}

type decodeFunc func(io.Reader) (image.Image, error)

// decoders maps sniffed MIME types to decoders.
var decoders = map[string]decodeFunc{
	"image/jpeg": jpeg.Decode,
	"image/png":  png.Decode,
	"image/gif":  gif.Decode,
	"image/bmp":  bmp.Decode,
	"image/tiff": tiff.Decode,
	"image/webp": webp.Decode,
	"image/avif": avif.Decode,
}

type stdCodec struct{}

// Decode sniffs the content type of data and decodes it. Unrecognized or
// malformed input yields a *DecodeError.
func (stdCodec) Decode(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, &DecodeError{Err: errors.New("empty input")}
	}

	mt := mimetype.Detect(data)
	var dec decodeFunc
	for m := mt; m != nil && dec == nil; m = m.Parent() {
		dec = decoders[m.String()]
	}
	if dec == nil {
		return Image{}, &DecodeError{Err: errors.Errorf("unsupported content type %s", mt)}
	}

	img, err := dec(bytes.NewReader(data))
	if err != nil {
		return Image{}, &DecodeError{Err: errors.Wrap(err, mt.String())}
	}
	out, err := NewImage(img)
	if err != nil {
		return Image{}, &DecodeError{Err: err}
	}
	return out, nil
}

// Encode normalizes the color mode for req.Format and encodes. PNG always
// uses maximal compression and ignores req.Quality. JPEG output never carries
// alpha: transparent pixels are flattened onto white.
func (stdCodec) Encode(img Image, req EncodeRequest) (*EncodeResult, error) {
	if img.img == nil {
		return nil, &EncodeError{Format: req.Format, Err: errors.New("empty image")}
	}
	if !req.Format.valid() {
		return nil, &EncodeError{Format: req.Format, Err: errors.New("unsupported format")}
	}

	q := clampQuality(req.Quality)
	src := Normalize(img, req.Format).img

	var buf bytes.Buffer
	var err error
	switch req.Format {
	case JPEG:
		err = jpeg.Encode(&buf, src, &jpeg.Options{Quality: q})
	case PNG:
		encoder := png.Encoder{CompressionLevel: png.BestCompression}
		err = encoder.Encode(&buf, src)
	case WEBP:
		err = webp.Encode(&buf, src, &webp.Options{Quality: float32(q)})
	case AVIF:
		err = avif.Encode(&buf, src, avif.Options{Quality: q, Speed: avifSpeed})
	}
	if err != nil {
		return nil, &EncodeError{Format: req.Format, Err: errors.Wrapf(err, "quality %d", q)}
	}
	return &EncodeResult{Data: buf.Bytes(), Size: int64(buf.Len())}, nil
}

func clampQuality(q int) int {
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}

// Decode decodes data with DefaultCodec.
func Decode(data []byte) (Image, error) {
	return DefaultCodec.Decode(data)
}

// Encode encodes img with DefaultCodec.
func Encode(img Image, req EncodeRequest) (*EncodeResult, error) {
	return DefaultCodec.Encode(img, req)
}
