// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package frame

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// MaxFrameSize is the hard cap on a single frame body. A declared
// length above this is treated as a corrupt or malicious header, not
// as a frame to buffer.
const MaxFrameSize = 10_000_000

// LengthError reports a declared frame length outside (0, MaxFrameSize].
// The connection cannot be resynchronized after one of these — the
// peer's byte stream is no longer trustworthy — so callers report it
// once and close.
type LengthError struct {
	Declared uint32
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("Invalid length: %d", e.Declared)
}

// Encode returns the framed encoding of v: length prefix plus compact
// JSON body.
func Encode(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding frame body: %w", err)
	}
	framed := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(framed, uint32(len(body)))
	copy(framed[4:], body)
	return framed, nil
}

// Write encodes v and writes the complete frame to w.
func Write(w io.Writer, v any) error {
	framed, err := Encode(v)
	if err != nil {
		return err
	}
	if _, err := w.Write(framed); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// ReadBody reads one frame from r and returns the raw JSON body.
//
// A peer that closes the connection before or during the length header
// produces io.EOF — the caller treats that as a clean disconnect. A
// declared length outside the allowed range produces a *LengthError.
// A body cut short mid-read produces io.ErrUnexpectedEOF.
func ReadBody(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			// Partial header: the peer went away mid-write.
			return nil, io.EOF
		}
		return nil, err
	}

	length := binary.LittleEndian.Uint32(header[:])
	if length == 0 || length > MaxFrameSize {
		return nil, &LengthError{Declared: length}
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}
