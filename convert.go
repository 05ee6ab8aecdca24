package shrink

import (
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Normalize prepares img for encoding as f. Images with an alpha or palette
// channel become NRGBA when f can store alpha; otherwise they are composited
// onto white and become opaque RGB. Opaque RGB images are returned as is.
func Normalize(img Image, f Format) Image {
	if img.mode == ModeRGB || img.img == nil {
		return img
	}
	if f.SupportsAlpha() {
		if nrgba, ok := img.img.(*image.NRGBA); ok {
			return Image{img: nrgba, mode: ModeRGBA}
		}
		return Image{img: imaging.Clone(img.img), mode: ModeRGBA}
	}
	return Image{img: flattenOnWhite(img.img), mode: ModeRGB}
}

// flattenOnWhite composites src over an opaque white canvas.
func flattenOnWhite(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

// toNRGBA returns img as *image.NRGBA without copying when it already is one.
// The caller must not modify the result.
func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	return imaging.Clone(img)
}

// isGrayscale checks if all pixels have R == G == B.
func isGrayscale(img *image.NRGBA) bool {
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != img.Pix[i+1] || img.Pix[i+1] != img.Pix[i+2] {
			return false
		}
	}
	return true
}

// usesAlpha checks if any pixel is not fully opaque.
func usesAlpha(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			return true
		}
	}
	return false
}
