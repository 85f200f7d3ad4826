package screenshot

import (
	"fmt"
	"image"
)

// Region is a rectangle in virtual-screen pixel coordinates. Values built with
// NewRegion always satisfy X1 <= X2 and Y1 <= Y2.
type Region struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

// Point is a position in virtual-screen pixel coordinates.
type Point struct {
	X int
	Y int
}

// NewRegion builds a normalized region from two opposite corners given in any order.
func NewRegion(a, b Point) Region {
	return Region{
		X1: min(a.X, b.X),
		Y1: min(a.Y, b.Y),
		X2: max(a.X, b.X),
		Y2: max(a.Y, b.Y),
	}
}

// RegionOf converts an image rectangle, e.g. display bounds, to a Region.
func RegionOf(rect image.Rectangle) Region {
	rect = rect.Canon()
	return Region{X1: rect.Min.X, Y1: rect.Min.Y, X2: rect.Max.X, Y2: rect.Max.Y}
}

func (r Region) Width() int  { return r.X2 - r.X1 }
func (r Region) Height() int { return r.Y2 - r.Y1 }

// Empty reports whether the region covers no pixels.
func (r Region) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle { return image.Rect(r.X1, r.Y1, r.X2, r.Y2) }

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d) %dx%d", r.X1, r.Y1, r.X2, r.Y2, r.Width(), r.Height())
}
