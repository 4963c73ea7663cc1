// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"syscall"

	"github.com/knetx-controls/localsim/lib/sim"
)

// AddrInUseError reports that the listen address is already bound.
// For a loopback runtime that almost always means another LocalSim
// instance is running, so it exits 2 rather than 1.
type AddrInUseError struct {
	Addr string
	Err  error
}

func (e *AddrInUseError) Error() string {
	return fmt.Sprintf("cannot bind %s: %v", e.Addr, e.Err)
}

func (e *AddrInUseError) Unwrap() error { return e.Err }

// ExitCode marks the error as "instance already running" for
// process.Fatal.
func (e *AddrInUseError) ExitCode() int { return 2 }

// Server owns the TCP listener and the per-connection goroutines.
// Create with New, then Listen, then Serve.
type Server struct {
	addr    string
	runtime *sim.Runtime
	logger  *slog.Logger

	listener net.Listener

	// shutdown is closed by the first SHUTDOWN command. Serve stops
	// accepting; connections already open keep their read loops until
	// the peer disconnects or the process exits.
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// New returns an unstarted server for the given listen address.
func New(addr string, runtime *sim.Runtime, logger *slog.Logger) *Server {
	return &Server{
		addr:     addr,
		runtime:  runtime,
		logger:   logger,
		shutdown: make(chan struct{}),
	}
}

// Listen binds the TCP listener. An address already in use comes back
// as *AddrInUseError.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return &AddrInUseError{Addr: s.addr, Err: err}
		}
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.listener = listener
	return nil
}

// Addr returns the bound listen address. Valid after Listen; with
// port 0 it carries the kernel-assigned port.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled or a SHUTDOWN
// command arrives, then closes the listener and returns. Open
// connections are not severed: their goroutines end when the peer
// disconnects, and on process exit in the binaries.
func (s *Server) Serve(ctx context.Context) error {
	defer s.listener.Close()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.shutdown:
		}
		s.listener.Close()
	}()

	s.logger.Info("localsim listening", "addr", s.listener.Addr().String())

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || s.shuttingDown() || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}
		go s.handleConnection(conn)
	}

	s.logger.Info("localsim stopped accepting connections")
	return nil
}

// requestShutdown stops the accept loop. Idempotent.
func (s *Server) requestShutdown() {
	s.shutdownOnce.Do(func() {
		s.logger.Info("shutdown requested")
		close(s.shutdown)
	})
}

func (s *Server) shuttingDown() bool {
	select {
	case <-s.shutdown:
		return true
	default:
		return false
	}
}
