package shrink

import (
	"fmt"
	"image"
)

// Image is an in-memory pixel buffer tagged with its color mode.
// Image values are never mutated; every transform returns a new Image, so the
// full-resolution source stays available for re-encoding.
type Image struct {
	img  image.Image
	mode ColorMode
}

// NewImage wraps a decoded image, deriving its color mode from the pixel data.
func NewImage(img image.Image) (Image, error) {
	if img == nil {
		return Image{}, invalidParam("image", nil, "nil image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Image{}, invalidParam("image", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), "empty image")
	}
	return Image{img: img, mode: detectMode(img)}, nil
}

// Width in pixels.
func (i Image) Width() int { return i.Bounds().Dx() }

// Height in pixels.
func (i Image) Height() int { return i.Bounds().Dy() }

// Bounds returns the pixel rectangle, empty for the zero Image.
func (i Image) Bounds() image.Rectangle {
	if i.img == nil {
		return image.Rectangle{}
	}
	return i.img.Bounds()
}

// Dimensions returns the width and height.
func (i Image) Dimensions() Dimensions { return dimensionsOf(i.Bounds()) }

// Mode returns the color mode.
func (i Image) Mode() ColorMode { return i.mode }

// Pixels exposes the underlying image. Callers must not modify it.
func (i Image) Pixels() image.Image { return i.img }

// detectMode classifies img: palettes stay palettes, anything that cannot
// prove it is opaque carries alpha.
func detectMode(img image.Image) ColorMode {
	if _, ok := img.(*image.Paletted); ok {
		return ModePalette
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return ModeRGB
	}
	return ModeRGBA
}
