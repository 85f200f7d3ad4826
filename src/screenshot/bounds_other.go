//go:build !windows

package screenshot

import "image"

// VirtualBounds returns the union of all active displays.
func VirtualBounds() (image.Rectangle, error) {
	return DisplayBounds()
}
