package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

type tcpClient struct {
	ports PortRange
}

func newTcpClient(ports PortRange) Client { return &tcpClient{ports: ports} }

func (c *tcpClient) Send(ctx context.Context, cmd Command) (bool, error) {
	timeout := dialTimeout(ctx, 2*time.Second)
	for port := c.ports.Start; port <= c.ports.End; port++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if !ping(addr, timeout) {
			continue
		}
		reply, err := roundTrip(addr, string(cmd)+"\n", timeout)
		if err != nil {
			return true, err
		}
		if reply != okResponse {
			return true, fmt.Errorf("resident rejected %s: %s", cmd, strings.TrimSpace(reply))
		}
		return true, nil
	}
	return false, nil
}

// DetectResidentPort scans ports and returns (port, true) if a resident responds to PING.
func DetectResidentPort(ctx context.Context, ports PortRange) (int, bool) {
	timeout := dialTimeout(ctx, 300*time.Millisecond)
	for port := ports.Start; port <= ports.End; port++ {
		if ping(net.JoinHostPort(residentHost, strconv.Itoa(port)), timeout) {
			return port, true
		}
	}
	return 0, false
}

func dialTimeout(ctx context.Context, def time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < def {
			return d
		}
	}
	return def
}

func ping(addr string, timeout time.Duration) bool {
	reply, err := roundTrip(addr, pingRequest, timeout)
	return err == nil && reply == pongResponse
}

func roundTrip(addr, line string, timeout time.Duration) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(line); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return bufio.NewReader(conn).ReadString('\n')
}
