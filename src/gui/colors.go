package gui

import (
	"fmt"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	outlineColor = color.NRGBA{R: 255, G: 0, B: 0, A: 255}
	clearColor   = color.NRGBA{}
)

// ParseTint turns a hex colour and an opacity in [0,1] into the colour laid
// over the frozen screen while selecting.
func ParseTint(hex string, alpha float64) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("overlay colour %q: %w", hex, err)
	}
	r, g, b := c.Clamped().RGB255()
	alpha = math.Max(0, math.Min(1, alpha))
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(alpha * 255))}, nil
}

// TintOrBlack is ParseTint falling back to black when hex does not parse.
func TintOrBlack(hex string, alpha float64) color.NRGBA {
	tint, err := ParseTint(hex, alpha)
	if err != nil {
		tint, _ = ParseTint("#000000", alpha)
	}
	return tint
}
