package singleinstance

// Single-instance ownership over loopback TCP. The first instance owns the
// start port of the configured range; later launches forward a command to it
// and exit.

import (
	"context"
	"fmt"
	"strings"
)

// Command is what a later launch asks the resident instance to do.
type Command string

const (
	CmdShow Command = "SHOW"
	CmdText Command = "TEXT"
	CmdSum  Command = "SUM"
)

// ParseCommand accepts a protocol line with or without the trailing newline.
func ParseCommand(line string) (Command, error) {
	c := Command(strings.ToUpper(strings.TrimSpace(line)))
	switch c {
	case CmdShow, CmdText, CmdSum:
		return c, nil
	}
	return "", fmt.Errorf("unknown command %q", strings.TrimSpace(line))
}

// Server owns the TCP endpoint and receives forwarded commands.
type Server interface {
	// Start binds the start port of its range.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next forwarded command, or ctx error.
	Next(ctx context.Context) (Command, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Client forwards a command to a resident instance.
type Client interface {
	// Send scans the port range for a resident and delivers cmd.
	// If no resident is found, returns delivered=false, err=nil.
	Send(ctx context.Context, cmd Command) (delivered bool, err error)
}

// NewServer returns the TCP implementation bound to ports.Start.
func NewServer(ports PortRange) Server { return newTcpServer(ports) }

// NewClient returns the TCP implementation scanning ports.
func NewClient(ports PortRange) Client { return newTcpClient(ports) }
