package shrink

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// CropToAspectRatio center-crops img to ratioW:ratioH. An image wider than the
// target loses columns evenly from both sides (the left margin takes the
// floor); a taller image loses rows the same way. Equal ratios are a no-op.
func CropToAspectRatio(img Image, ratioW, ratioH int) (Image, error) {
	if ratioW <= 0 || ratioH <= 0 {
		return img, invalidParam("aspect ratio", AspectRatio{W: ratioW, H: ratioH}, "both terms must be positive")
	}

	w, h := img.Width(), img.Height()
	targetRatio := float64(ratioW) / float64(ratioH)
	currentRatio := float64(w) / float64(h)

	var rect image.Rectangle
	switch {
	case currentRatio > targetRatio:
		newW := max(int(float64(h)*targetRatio), 1)
		left := (w - newW) / 2
		rect = image.Rect(left, 0, left+newW, h)
	case currentRatio < targetRatio:
		newH := max(int(float64(w)/targetRatio), 1)
		top := (h - newH) / 2
		rect = image.Rect(0, top, w, top+newH)
	default:
		return img, nil
	}

	// imaging.Crop takes coordinates in the source's own space.
	cropped := imaging.Crop(img.img, rect.Add(img.Bounds().Min))
	return Image{img: cropped, mode: transformedMode(img.mode)}, nil
}

// ResizeWithinBounds shrinks img so it fits maxWidth and maxHeight; 0 leaves
// that axis unconstrained. The width bound is applied first. The height bound
// is then checked against the possibly-updated height, so both can apply.
// Images already within bounds are returned unchanged.
func ResizeWithinBounds(img Image, maxWidth, maxHeight int, filter Filter) Image {
	w, h := boundedDimensions(img.Width(), img.Height(), maxWidth, maxHeight)
	if w == img.Width() && h == img.Height() {
		return img
	}
	return resize(img, w, h, filter)
}

func boundedDimensions(w, h, maxWidth, maxHeight int) (int, int) {
	if maxWidth > 0 && w > maxWidth {
		ratio := float64(maxWidth) / float64(w)
		h = max(int(float64(h)*ratio), 1)
		w = maxWidth
	}
	if maxHeight > 0 && h > maxHeight {
		ratio := float64(maxHeight) / float64(h)
		w = max(int(float64(w)*ratio), 1)
		h = maxHeight
	}
	return w, h
}

// Scale resizes img uniformly by factor; each dimension is floored and kept
// at least one pixel.
func Scale(img Image, factor float64, filter Filter) Image {
	w, h := scaledDimensions(img.Width(), img.Height(), factor)
	if w == img.Width() && h == img.Height() {
		return img
	}
	return resize(img, w, h, filter)
}

// scaledDimensions floors w*factor and h*factor. The epsilon absorbs binary
// representation error so that, e.g., 10*0.3 is 3 rather than 2.
func scaledDimensions(w, h int, factor float64) (int, int) {
	const eps = 1e-9
	sw := max(int(math.Floor(float64(w)*factor+eps)), 1)
	sh := max(int(math.Floor(float64(h)*factor+eps)), 1)
	return sw, sh
}

func resize(img Image, w, h int, filter Filter) Image {
	return Image{
		img:  imaging.Resize(img.img, w, h, filter.resample()),
		mode: transformedMode(img.mode),
	}
}

// transformedMode is the mode of a cropped or resampled image: imaging always
// produces NRGBA, so palettes become RGBA.
func transformedMode(m ColorMode) ColorMode {
	if m == ModePalette {
		return ModeRGBA
	}
	return m
}
