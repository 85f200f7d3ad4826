package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log"

	"github.com/kbinani/screenshot"
)

// CaptureRegion captures the pixels inside region at the time of the call.
// A region without area yields an empty image rather than an error.
func CaptureRegion(region Region) (*image.RGBA, error) {
	if region.Empty() {
		log.Printf("screenshot: empty region %s, returning empty image", region)
		return image.NewRGBA(image.Rectangle{}), nil
	}

	img, err := screenshot.CaptureRect(region.Rect())
	if err != nil {
		return nil, fmt.Errorf("failed to capture region %s: %w", region, err)
	}
	return img, nil
}

// DisplayBounds returns the union of all active display bounds as reported by
// the capture backend.
func DisplayBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}

// PrimaryBounds returns the bounds of display 0.
func PrimaryBounds() (image.Rectangle, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	return screenshot.GetDisplayBounds(0), nil
}

// EncodePNG converts a captured image to PNG bytes for engines that take files
// or data URLs.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
