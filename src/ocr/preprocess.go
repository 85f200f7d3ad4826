package ocr

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/disintegration/imaging"
)

const (
	// Tesseract reads glyphs best at roughly 30px cap height.
	minPreprocessHeight = 48
	maxUpscale          = 4
	contrastBoost       = 0.35
)

// Preprocess prepares a small screen capture for digit recognition:
// grayscale, integer upscale of short captures, then a contrast boost.
func Preprocess(img image.Image) image.Image {
	b := img.Bounds()
	if b.Empty() {
		return img
	}

	gray := imaging.Grayscale(img)

	var out image.Image = gray
	if scale := upscaleFactor(b.Dy()); scale > 1 {
		out = imaging.Resize(gray, b.Dx()*scale, b.Dy()*scale, imaging.Lanczos)
	}
	return adjust.Contrast(out, contrastBoost)
}

func upscaleFactor(height int) int {
	if height <= 0 || height >= minPreprocessHeight {
		return 1
	}
	scale := (minPreprocessHeight + height - 1) / height
	if scale > maxUpscale {
		scale = maxUpscale
	}
	return scale
}
