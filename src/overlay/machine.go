package overlay

import (
	"sync"

	"screen-capture-ocr/src/ocr"
	"screen-capture-ocr/src/screenshot"
)

// State is the phase of one selection gesture.
type State int

const (
	Idle State = iota
	Armed
	Dragging
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Dragging:
		return "dragging"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Machine tracks a press-drag-release gesture. Events that do not fit the
// current state are ignored and reported with ok=false. Safe for use from the
// UI thread and the coordinator at the same time.
type Machine struct {
	mu      sync.Mutex
	state   State
	mode    ocr.Mode
	anchor  screenshot.Point
	current screenshot.Region
}

func NewMachine() *Machine { return &Machine{} }

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Mode() ocr.Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Arm opens a new gesture for mode. Only valid from Idle or Closed.
func (m *Machine) Arm(mode ocr.Mode) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Idle && m.state != Closed {
		return false
	}
	m.state = Armed
	m.mode = mode
	m.anchor = screenshot.Point{}
	m.current = screenshot.Region{}
	return true
}

// Press records the anchor corner. No rectangle exists yet.
func (m *Machine) Press(p screenshot.Point) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Armed {
		return false
	}
	m.state = Dragging
	m.anchor = p
	m.current = screenshot.NewRegion(p, p)
	return true
}

// Move replaces the live rectangle with the one spanned by the anchor and p.
func (m *Machine) Move(p screenshot.Point) (screenshot.Region, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Dragging {
		return screenshot.Region{}, false
	}
	m.current = screenshot.NewRegion(m.anchor, p)
	return m.current, true
}

// Current returns the live rectangle while dragging.
func (m *Machine) Current() (screenshot.Region, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.state == Dragging
}

// Release ends the gesture. A zero-area release still yields a region.
func (m *Machine) Release(p screenshot.Point) (screenshot.Region, ocr.Mode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Dragging {
		return screenshot.Region{}, m.mode, false
	}
	m.state = Closed
	m.current = screenshot.NewRegion(m.anchor, p)
	return m.current, m.mode, true
}

// Cancel abandons the gesture from any state.
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Idle
	m.current = screenshot.Region{}
}
