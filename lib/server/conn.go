// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/google/uuid"

	"github.com/knetx-controls/localsim/lib/frame"
)

// handleConnection runs one connection's read loop to completion.
func (s *Server) handleConnection(conn net.Conn) {
	connID := uuid.NewString()
	log := s.logger.With("conn", connID, "peer", conn.RemoteAddr().String())
	log.Info("client connected")

	defer func() {
		if purged := s.runtime.PurgeConnection(connID); purged > 0 {
			log.Warn("cleared force owners on disconnect", "owners", purged)
		}
		conn.Close()
		log.Info("client disconnected")
	}()

	for {
		body, err := frame.ReadBody(conn)
		if err != nil {
			var lengthErr *frame.LengthError
			if errors.As(err, &lengthErr) {
				// Report the bad length, then drop the connection:
				// the stream position is unrecoverable.
				s.write(conn, log, frame.Failure(-1, lengthErr.Error()))
				return
			}
			if !errors.Is(err, io.EOF) {
				log.Debug("read failed", "error", err)
			}
			return
		}

		request, err := frame.ParseRequest(body)
		if err != nil {
			var schemaErr *frame.SchemaError
			if errors.As(err, &schemaErr) {
				if !s.write(conn, log, frame.Failure(schemaErr.ReqID, schemaErr.Error())) {
					return
				}
				continue
			}
			if !s.write(conn, log, frame.Failure(-1, err.Error())) {
				return
			}
			continue
		}

		response := s.dispatch(connID, request)
		if !s.write(conn, log, response) {
			return
		}
		if request.Cmd == "SHUTDOWN" && response.OK {
			s.requestShutdown()
			return
		}
	}
}

// write sends one response frame. Returns false when the connection
// is no longer writable.
func (s *Server) write(conn net.Conn, log *slog.Logger, response frame.Response) bool {
	if err := frame.Write(conn, response); err != nil {
		log.Debug("write failed", "error", err)
		return false
	}
	return true
}

// dispatch runs one validated request against the runtime and wraps
// the result in a response envelope. Handlers never touch the socket.
func (s *Server) dispatch(connID string, request frame.Request) frame.Response {
	result, err := s.handle(connID, request)
	if err != nil {
		return frame.Failure(request.ReqID, err.Error())
	}
	return frame.Success(request.ReqID, result)
}

func (s *Server) handle(connID string, request frame.Request) (any, error) {
	switch request.Cmd {
	case "PING":
		return s.runtime.Ping(), nil

	case "GET_STATUS":
		return s.runtime.Status(), nil

	case "START":
		return s.runtime.Start()

	case "STOP":
		return s.runtime.Stop(), nil

	case "GET_DIAG":
		return s.runtime.Diag(), nil

	case "READ_VARS":
		names, err := namesField(request.Payload)
		if err != nil {
			return nil, err
		}
		return readVarsResult{Values: s.runtime.ReadVars(names)}, nil

	case "SET_VARS":
		values, err := valuesField(request.Payload)
		if err != nil {
			return nil, err
		}
		return countResult{Count: s.runtime.SetVars(values)}, nil

	case "FORCE_SET":
		ownerID, err := ownerField(request.Payload)
		if err != nil {
			return nil, err
		}
		values, err := valuesField(request.Payload)
		if err != nil {
			return nil, err
		}
		s.runtime.ForceSet(ownerID, connID, values)
		return forceSetResult{OwnerID: ownerID, Count: len(values)}, nil

	case "FORCE_CLEAR":
		ownerID, err := ownerField(request.Payload)
		if err != nil {
			return nil, err
		}
		names, all, err := clearFields(request.Payload)
		if err != nil {
			return nil, err
		}
		s.runtime.ForceClear(ownerID, names, all)
		return forceClearResult{OwnerID: ownerID}, nil

	case "GET_FORCES":
		return forcesResult{Forces: s.runtime.Forces()}, nil

	case "LOAD_PROJECT":
		return s.runtime.LoadProject(request.Payload)

	case "SHUTDOWN":
		return shutdownResult{ShuttingDown: true}, nil

	default:
		return nil, fmt.Errorf("Unknown cmd: %s", request.Cmd)
	}
}
