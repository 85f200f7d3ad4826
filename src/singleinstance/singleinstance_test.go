package singleinstance

import (
	"context"
	"testing"
	"time"
)

func TestServerClientRoundTrip(t *testing.T) {
	ports := NewPortRange(49731, 49733)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := NewServer(ports)
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback port unavailable in this environment: %v", err)
	}
	defer srv.Close()

	if port, ok := DetectResidentPort(ctx, ports); !ok || port != srv.Port() {
		t.Fatalf("DetectResidentPort = %d, %v; want %d", port, ok, srv.Port())
	}

	for _, cmd := range []Command{CmdSum, CmdShow} {
		delivered, err := NewClient(ports).Send(ctx, cmd)
		if err != nil || !delivered {
			t.Fatalf("Send(%s) = %v, %v", cmd, delivered, err)
		}
		got, err := srv.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got != cmd {
			t.Errorf("got %s, want %s", got, cmd)
		}
	}
}

func TestSendWithoutResident(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	delivered, err := NewClient(NewPortRange(49741, 49742)).Send(ctx, CmdShow)
	if err != nil || delivered {
		t.Fatalf("expected no resident, got %v, %v", delivered, err)
	}
}

func TestSecondServerCannotStart(t *testing.T) {
	ports := NewPortRange(49751, 49751)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	first := NewServer(ports)
	if err := first.Start(ctx); err != nil {
		t.Skipf("loopback port unavailable: %v", err)
	}
	defer first.Close()
	if err := NewServer(ports).Start(ctx); err == nil {
		t.Fatal("second instance must not own the port")
	}
}

func TestNextAfterClose(t *testing.T) {
	srv := NewServer(DefaultPortRange())
	_ = srv.Close()
	if _, err := srv.Next(context.Background()); err != ErrServerClosed {
		t.Fatalf("expected ErrServerClosed, got %v", err)
	}
}

func TestParseCommand(t *testing.T) {
	for in, want := range map[string]Command{"SHOW\n": CmdShow, "sum": CmdSum, " Text \r\n": CmdText} {
		got, err := ParseCommand(in)
		if err != nil || got != want {
			t.Errorf("ParseCommand(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseCommand("STDOUT\n"); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestPortRange(t *testing.T) {
	tests := []struct {
		start, end int
		want       PortRange
	}{
		{0, 0, PortRange{Start: 49500, End: 49550}},
		{80, 70000, PortRange{Start: 1024, End: 65535}},
		{50010, 50000, PortRange{Start: 50000, End: 50010}},
		{80, 90, PortRange{Start: 1024, End: 1024}},
		{50000, 0, PortRange{Start: 49550, End: 50000}},
	}
	for _, tt := range tests {
		if got := NewPortRange(tt.start, tt.end); got != tt.want {
			t.Errorf("NewPortRange(%d, %d) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}
	if s := DefaultPortRange().String(); s != "49500-49550" {
		t.Errorf("String() = %q", s)
	}
}
