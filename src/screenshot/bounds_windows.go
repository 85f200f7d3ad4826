//go:build windows

package screenshot

import (
	"fmt"
	"image"

	"github.com/lxn/win"
)

// VirtualBounds returns the virtual screen rectangle covering all monitors.
func VirtualBounds() (image.Rectangle, error) {
	vx := int(win.GetSystemMetrics(win.SM_XVIRTUALSCREEN))
	vy := int(win.GetSystemMetrics(win.SM_YVIRTUALSCREEN))
	vw := int(win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN))
	vh := int(win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN))
	if vw <= 0 || vh <= 0 {
		// Metrics unavailable (e.g. service session); fall back to display enumeration.
		b, err := DisplayBounds()
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("virtual screen metrics unavailable: %w", err)
		}
		return b, nil
	}
	return image.Rect(vx, vy, vx+vw, vy+vh), nil
}
