package gui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"screen-capture-ocr/src/ocr"
	"screen-capture-ocr/src/overlay"
	"screen-capture-ocr/src/screenshot"
)

// BackgroundFunc grabs the frozen screen shown under the selection and the
// screen rectangle it covers.
type BackgroundFunc func() (image.Image, image.Rectangle, error)

// OverlaySelector lets the user drag a rectangle over a dimmed, frozen copy of
// the primary display.
type OverlaySelector struct {
	app        fyne.App
	tint       color.NRGBA
	background BackgroundFunc
}

var _ overlay.Selector = (*OverlaySelector)(nil)

func NewOverlaySelector(app fyne.App, tint color.NRGBA) *OverlaySelector {
	return &OverlaySelector{app: app, tint: tint, background: primaryBackground}
}

func primaryBackground() (image.Image, image.Rectangle, error) {
	bounds, err := screenshot.PrimaryBounds()
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	img, err := screenshot.CaptureRegion(screenshot.RegionOf(bounds))
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	return img, bounds, nil
}

type selection struct {
	region    screenshot.Region
	cancelled bool
}

// Select blocks until the user releases the mouse, presses ESC, or ctx ends.
// It must not be called from the UI thread.
func (s *OverlaySelector) Select(ctx context.Context, mode ocr.Mode) (screenshot.Region, bool, error) {
	bg, bounds, err := s.background()
	if err != nil {
		return screenshot.Region{}, false, fmt.Errorf("capture overlay background: %w", err)
	}
	if bounds.Empty() {
		return screenshot.Region{}, false, fmt.Errorf("no display area to select from")
	}

	done := make(chan selection, 1)
	var win fyne.Window
	fyne.DoAndWait(func() {
		win = s.open(bg, bounds, mode, done)
	})
	log.Printf("overlay: %s selection over %v", mode, bounds)

	select {
	case sel := <-done:
		return sel.region, sel.cancelled, nil
	case <-ctx.Done():
		fyne.DoAndWait(win.Close)
		return screenshot.Region{}, false, ctx.Err()
	}
}

func (s *OverlaySelector) open(bg image.Image, bounds image.Rectangle, mode ocr.Mode, done chan<- selection) fyne.Window {
	var win fyne.Window
	if drv, ok := s.app.Driver().(desktop.Driver); ok {
		win = drv.CreateSplashWindow()
	} else {
		win = s.app.NewWindow("Select Area")
	}
	win.SetPadded(false)

	var once sync.Once
	finish := func(sel selection) {
		once.Do(func() {
			// The overlay must be gone before the region is captured.
			win.Close()
			done <- sel
		})
	}

	surface := newSelectionSurface(bg, bounds, s.tint, finish)
	surface.machine.Arm(mode)
	win.SetContent(surface)
	win.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			surface.cancel()
		}
	})
	win.SetCloseIntercept(surface.cancel)
	win.SetFullScreen(true)
	win.Show()
	win.RequestFocus()
	return win
}

// selectionSurface draws the frozen screen, the tint and the live rectangle,
// and feeds pointer events into an overlay.Machine.
type selectionSurface struct {
	widget.BaseWidget

	machine *overlay.Machine
	bounds  image.Rectangle
	finish  func(selection)

	background *canvas.Image
	shade      *canvas.Rectangle
	outline    *canvas.Rectangle

	anchor fyne.Position
	last   fyne.Position
}

var (
	_ desktop.Mouseable  = (*selectionSurface)(nil)
	_ desktop.Cursorable = (*selectionSurface)(nil)
	_ fyne.Draggable     = (*selectionSurface)(nil)
)

func newSelectionSurface(bg image.Image, bounds image.Rectangle, tint color.NRGBA, finish func(selection)) *selectionSurface {
	s := &selectionSurface{
		machine: overlay.NewMachine(),
		bounds:  bounds,
		finish:  finish,
		shade:   canvas.NewRectangle(tint),
		outline: canvas.NewRectangle(clearColor),
	}
	s.background = canvas.NewImageFromImage(bg)
	s.background.FillMode = canvas.ImageFillStretch
	s.background.ScaleMode = canvas.ImageScaleFastest
	s.outline.StrokeColor = outlineColor
	s.outline.StrokeWidth = 2
	s.outline.Hide()
	s.ExtendBaseWidget(s)
	return s
}

func (s *selectionSurface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(
		s.background,
		s.shade,
		container.NewWithoutLayout(s.outline),
	))
}

func (s *selectionSurface) Cursor() desktop.Cursor { return desktop.CrosshairCursor }

func (s *selectionSurface) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	s.press(ev.Position)
}

func (s *selectionSurface) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	s.release(ev.Position)
}

func (s *selectionSurface) Dragged(ev *fyne.DragEvent) {
	if s.machine.State() == overlay.Armed {
		// Some drivers start a drag without a MouseDown.
		s.press(fyne.NewPos(ev.Position.X-ev.Dragged.DX, ev.Position.Y-ev.Dragged.DY))
	}
	s.last = ev.Position
	if _, ok := s.machine.Move(s.toScreen(ev.Position)); !ok {
		return
	}
	s.drawOutline()
}

func (s *selectionSurface) DragEnd() { s.release(s.last) }

func (s *selectionSurface) press(pos fyne.Position) {
	if !s.machine.Press(s.toScreen(pos)) {
		return
	}
	s.anchor, s.last = pos, pos
	s.drawOutline()
	s.outline.Show()
}

func (s *selectionSurface) release(pos fyne.Position) {
	region, _, ok := s.machine.Release(s.toScreen(pos))
	if !ok {
		return
	}
	s.outline.Hide()
	s.finish(selection{region: region})
}

func (s *selectionSurface) cancel() {
	s.machine.Cancel()
	s.finish(selection{cancelled: true})
}

func (s *selectionSurface) drawOutline() {
	minX, minY := math.Min(float64(s.anchor.X), float64(s.last.X)), math.Min(float64(s.anchor.Y), float64(s.last.Y))
	w, h := math.Abs(float64(s.last.X-s.anchor.X)), math.Abs(float64(s.last.Y-s.anchor.Y))
	s.outline.Move(fyne.NewPos(float32(minX), float32(minY)))
	s.outline.Resize(fyne.NewSize(float32(w), float32(h)))
	s.outline.Refresh()
}

func (s *selectionSurface) toScreen(pos fyne.Position) screenshot.Point {
	return canvasToScreen(pos, s.Size(), s.bounds)
}

// canvasToScreen maps a position on a surface of size that stretches over
// bounds to a screen pixel. The ratio absorbs the canvas scale, so the result
// is correct on scaled displays too.
func canvasToScreen(pos fyne.Position, size fyne.Size, bounds image.Rectangle) screenshot.Point {
	if size.Width <= 0 || size.Height <= 0 {
		return screenshot.Point{X: bounds.Min.X + int(pos.X), Y: bounds.Min.Y + int(pos.Y)}
	}
	fx := float64(pos.X) / float64(size.Width)
	fy := float64(pos.Y) / float64(size.Height)
	x := bounds.Min.X + int(math.Round(fx*float64(bounds.Dx())))
	y := bounds.Min.Y + int(math.Round(fy*float64(bounds.Dy())))
	return screenshot.Point{
		X: min(max(x, bounds.Min.X), bounds.Max.X),
		Y: min(max(y, bounds.Min.Y), bounds.Max.Y),
	}
}
