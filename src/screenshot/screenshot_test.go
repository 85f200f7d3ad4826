package screenshot

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func TestNewRegionNormalizes(t *testing.T) {
	want := Region{X1: 10, Y1: 20, X2: 110, Y2: 70}
	corners := []struct {
		name string
		a, b Point
	}{
		{"top-left to bottom-right", Point{10, 20}, Point{110, 70}},
		{"bottom-right to top-left", Point{110, 70}, Point{10, 20}},
		{"top-right to bottom-left", Point{110, 20}, Point{10, 70}},
		{"bottom-left to top-right", Point{10, 70}, Point{110, 20}},
	}
	for _, c := range corners {
		t.Run(c.name, func(t *testing.T) {
			got := NewRegion(c.a, c.b)
			if got != want {
				t.Fatalf("NewRegion(%v, %v) = %v, want %v", c.a, c.b, got, want)
			}
			if got.X1 > got.X2 || got.Y1 > got.Y2 {
				t.Fatalf("region not normalized: %v", got)
			}
		})
	}
}

func TestRegionGeometry(t *testing.T) {
	r := NewRegion(Point{-50, 5}, Point{50, 25})
	if r.Width() != 100 || r.Height() != 20 {
		t.Fatalf("unexpected size %dx%d", r.Width(), r.Height())
	}
	if r.Rect() != image.Rect(-50, 5, 50, 25) {
		t.Fatalf("unexpected rect %v", r.Rect())
	}
	if r.Empty() {
		t.Fatal("non-degenerate region reported empty")
	}
	if !NewRegion(Point{3, 3}, Point{3, 3}).Empty() {
		t.Fatal("zero-area region should be empty")
	}
	if !NewRegion(Point{3, 3}, Point{40, 3}).Empty() {
		t.Fatal("zero-height region should be empty")
	}
	if got := RegionOf(image.Rect(1920, 0, 0, 1080)); got != (Region{X1: 0, Y1: 0, X2: 1920, Y2: 1080}) {
		t.Fatalf("RegionOf = %v", got)
	}
}

func TestCaptureRegionEmpty(t *testing.T) {
	img, err := CaptureRegion(Region{X1: 5, Y1: 5, X2: 5, Y2: 5})
	if err != nil {
		t.Fatalf("empty region must not be an error: %v", err)
	}
	if !img.Bounds().Empty() {
		t.Fatalf("expected empty image, got %v", img.Bounds())
	}
}

func TestCaptureRegion(t *testing.T) {
	// Requires a display.
	img, err := CaptureRegion(Region{X1: 0, Y1: 0, X2: 100, Y2: 100})
	if err != nil {
		t.Skipf("Failed to capture region (expected in headless environment): %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 100 {
		t.Errorf("expected 100x100 capture, got %v", img.Bounds())
	}
}

func TestVirtualBounds(t *testing.T) {
	_, err := VirtualBounds()
	if err != nil {
		t.Logf("Failed to get display bounds (expected in headless environment): %v", err)
	}
}

func TestEncodePNG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	data, err := EncodePNG(src)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds() != src.Bounds() {
		t.Fatalf("bounds mismatch: %v vs %v", decoded.Bounds(), src.Bounds())
	}
}
