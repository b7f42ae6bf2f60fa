// Package gateway runs the TCP accept loops for the Login and World
// servers: bind a listener, accept connections, spawn one task per
// connection, and read/process/write until the peer disconnects or the
// server is shut down. Grounded on the teacher's api.Server context-select
// shutdown shape and, for the raw-TCP accept loop itself (the teacher is
// HTTP-based), on the accept-loop/WaitGroup/per-connection-goroutine shape
// of the la2go login server in other_examples.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/idewave/tine/internal/logging"
)

// readBufferSize is the size of the per-connection read buffer. A single
// read is treated as exactly one packet -- a protocol assumption this
// gateway preserves rather than fixes (see DESIGN.md).
const readBufferSize = 64 * 1024

// connectionHandler processes one accepted connection until it closes.
type connectionHandler func(ctx context.Context, conn net.Conn)

// server is the shared accept-loop template both the Login and World
// servers build on.
type server struct {
	name   string
	addr   string
	logger *logging.Logger
	handle connectionHandler
	ln     net.Listener
	mu     sync.Mutex
	wg     sync.WaitGroup
}

func newServer(name, addr string, logger *logging.Logger, handle connectionHandler) *server {
	return &server{name: name, addr: addr, logger: logger, handle: handle}
}

// Run binds addr and serves until ctx is cancelled.
func (s *server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%s: listening on %s: %w", s.name, s.addr, err)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.logger.Info(s.name+" started", map[string]any{"address": ln.Addr().String()})

	s.acceptLoop(ctx, ln)
	s.wg.Wait()
	return nil
}

func (s *server) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
				s.logger.Error(s.name+" accept failed", map[string]any{"error": err.Error()})
				continue
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			s.handle(ctx, conn)
		}()
	}
}

// Addr returns the bound listener address, or nil if Run hasn't started.
func (s *server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}
