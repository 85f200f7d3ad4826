package overlay

import (
	"context"
	"testing"

	"screen-capture-ocr/src/ocr"
	"screen-capture-ocr/src/screenshot"
)

func pt(x, y int) screenshot.Point { return screenshot.Point{X: x, Y: y} }

func TestMachineGesture(t *testing.T) {
	m := NewMachine()
	if m.State() != Idle {
		t.Fatalf("new machine should be idle, got %v", m.State())
	}
	if !m.Arm(ocr.ModeCalculateSum) {
		t.Fatal("Arm from idle failed")
	}
	if !m.Press(pt(100, 50)) {
		t.Fatal("Press from armed failed")
	}
	if _, live := m.Current(); !live {
		t.Fatal("expected live rectangle while dragging")
	}

	r, ok := m.Move(pt(120, 80))
	if !ok || r != (screenshot.Region{X1: 100, Y1: 50, X2: 120, Y2: 80}) {
		t.Fatalf("Move = %v, %v", r, ok)
	}
	// Each move replaces the previous rectangle.
	r, _ = m.Move(pt(40, 10))
	if r != (screenshot.Region{X1: 40, Y1: 10, X2: 100, Y2: 50}) {
		t.Fatalf("second Move = %v", r)
	}

	region, mode, ok := m.Release(pt(300, 200))
	if !ok {
		t.Fatal("Release failed")
	}
	if region != (screenshot.Region{X1: 100, Y1: 50, X2: 300, Y2: 200}) {
		t.Errorf("region = %v", region)
	}
	if mode != ocr.ModeCalculateSum {
		t.Errorf("mode = %v", mode)
	}
	if m.State() != Closed {
		t.Errorf("state = %v, want closed", m.State())
	}
}

func TestMachineDirectionSymmetry(t *testing.T) {
	want := screenshot.Region{X1: 10, Y1: 20, X2: 110, Y2: 70}
	corners := [][2]screenshot.Point{
		{pt(10, 20), pt(110, 70)},
		{pt(110, 70), pt(10, 20)},
		{pt(110, 20), pt(10, 70)},
		{pt(10, 70), pt(110, 20)},
	}
	for _, c := range corners {
		m := NewMachine()
		m.Arm(ocr.ModeExtractText)
		m.Press(c[0])
		got, _, ok := m.Release(c[1])
		if !ok || got != want {
			t.Errorf("drag %v -> %v gave %v, want %v", c[0], c[1], got, want)
		}
	}
}

func TestMachineIgnoresOutOfOrderEvents(t *testing.T) {
	m := NewMachine()
	if m.Press(pt(1, 1)) {
		t.Error("Press must be ignored while idle")
	}
	if _, ok := m.Move(pt(1, 1)); ok {
		t.Error("Move must be ignored while idle")
	}
	if _, _, ok := m.Release(pt(1, 1)); ok {
		t.Error("Release must be ignored while idle")
	}

	m.Arm(ocr.ModeExtractText)
	if _, ok := m.Move(pt(5, 5)); ok {
		t.Error("Move must be ignored before the press")
	}
	if _, _, ok := m.Release(pt(5, 5)); ok {
		t.Error("Release must be ignored before the press")
	}
	m.Press(pt(0, 0))
	if m.Arm(ocr.ModeCalculateSum) {
		t.Error("Arm must be ignored while dragging")
	}
	if m.Mode() != ocr.ModeExtractText {
		t.Error("mode changed mid-gesture")
	}
}

func TestMachineZeroArea(t *testing.T) {
	m := NewMachine()
	m.Arm(ocr.ModeExtractText)
	m.Press(pt(7, 7))
	r, _, ok := m.Release(pt(7, 7))
	if !ok {
		t.Fatal("zero-area release must complete the gesture")
	}
	if !r.Empty() {
		t.Errorf("expected empty region, got %v", r)
	}
}

func TestMachineCancelAndRearm(t *testing.T) {
	m := NewMachine()
	m.Arm(ocr.ModeExtractText)
	m.Press(pt(3, 3))
	m.Move(pt(9, 9))
	m.Cancel()
	if m.State() != Idle {
		t.Fatalf("state after cancel = %v", m.State())
	}
	if _, live := m.Current(); live {
		t.Error("cancel must drop the live rectangle")
	}
	if !m.Arm(ocr.ModeCalculateSum) {
		t.Fatal("re-arm after cancel failed")
	}
	m.Press(pt(0, 0))
	m.Release(pt(1, 1))
	if !m.Arm(ocr.ModeExtractText) {
		t.Fatal("re-arm after close failed")
	}
}

func TestSelectorFunc(t *testing.T) {
	var got ocr.Mode
	sel := SelectorFunc(func(ctx context.Context, mode ocr.Mode) (screenshot.Region, bool, error) {
		got = mode
		return screenshot.Region{X2: 5, Y2: 5}, false, nil
	})
	r, cancelled, err := sel.Select(context.Background(), ocr.ModeCalculateSum)
	if err != nil || cancelled || r.Width() != 5 || got != ocr.ModeCalculateSum {
		t.Fatalf("unexpected %v %v %v %v", r, cancelled, err, got)
	}
}
