package singleinstance

import "fmt"

const (
	DefaultPortStart = 49500
	DefaultPortEnd   = 49550

	minPort = 1024
	maxPort = 65535
)

// PortRange is the inclusive loopback range clients scan for a resident.
// A server only ever binds Start.
type PortRange struct {
	Start int
	End   int
}

// NewPortRange orders the bounds and clamps them to unprivileged ports. A zero
// bound selects its default.
func NewPortRange(start, end int) PortRange {
	if start == 0 {
		start = DefaultPortStart
	}
	if end == 0 {
		end = DefaultPortEnd
	}
	start = min(max(start, minPort), maxPort)
	end = min(max(end, minPort), maxPort)
	if end < start {
		start, end = end, start
	}
	return PortRange{Start: start, End: end}
}

// DefaultPortRange is 49500-49550.
func DefaultPortRange() PortRange { return NewPortRange(0, 0) }

func (r PortRange) String() string { return fmt.Sprintf("%d-%d", r.Start, r.End) }
