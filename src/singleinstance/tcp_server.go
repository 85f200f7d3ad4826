package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"
)

const (
	residentHost = "127.0.0.1"
	pingRequest  = "PING\n"
	pongResponse = "PONG\n"
	okResponse   = "OK\n"
	busyResponse = "BUSY\n"
)

var ErrServerClosed = errors.New("singleinstance: server closed")

// tcpServer implements Server over TCP loopback.
type tcpServer struct {
	ports    PortRange
	mu       sync.Mutex
	lis      net.Listener
	incoming chan Command
	done     chan struct{}
	port     int
}

func newTcpServer(ports PortRange) Server {
	return &tcpServer{ports: ports, incoming: make(chan Command, 8), done: make(chan struct{})}
}

// Start binds ONLY the start port of the configured range. If occupied, fail.
func (s *tcpServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		return nil
	}
	start := s.ports.Start
	addr := fmt.Sprintf("%s:%d", residentHost, start)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("singleinstance: failed to bind %s: %v", addr, err)
		return err
	}
	s.lis = lis
	s.port = start
	log.Printf("singleinstance: listening on %s", addr)
	go s.acceptLoop(lis)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()
	return nil
}

// Port returns the bound port (0 if not started).
func (s *tcpServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *tcpServer) acceptLoop(lis net.Listener) {
	for {
		c, err := lis.Accept()
		if err != nil {
			return
		}
		s.serve(c)
	}
}

func (s *tcpServer) serve(c net.Conn) {
	defer c.Close()
	remote := c.RemoteAddr().String()
	_ = c.SetDeadline(time.Now().Add(3 * time.Second))
	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		return
	}
	if line == pingRequest {
		_, _ = c.Write([]byte(pongResponse))
		return
	}
	cmd, err := ParseCommand(line)
	if err != nil {
		log.Printf("singleinstance: %s from %s", err, remote)
		_, _ = c.Write([]byte("ERROR " + err.Error() + "\n"))
		return
	}
	select {
	case s.incoming <- cmd:
		log.Printf("singleinstance: %s from %s", cmd, remote)
		_, _ = c.Write([]byte(okResponse))
	case <-s.done:
	default:
		_, _ = c.Write([]byte(busyResponse))
	}
}

func (s *tcpServer) Next(ctx context.Context) (Command, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-s.done:
		return "", ErrServerClosed
	case cmd := <-s.incoming:
		return cmd, nil
	}
}

func (s *tcpServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		return nil
	default:
	}
	close(s.done)
	if s.lis != nil {
		_ = s.lis.Close()
		s.lis = nil
	}
	s.port = 0
	return nil
}
