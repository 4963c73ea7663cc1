// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package frame

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Request is a parsed and validated request envelope. Payload is the
// raw JSON object for the command handler to decode; it is never nil
// (an absent or null payload parses as "{}").
type Request struct {
	Cmd     string          `json:"cmd"`
	ReqID   int64           `json:"req_id"`
	Payload json.RawMessage `json:"payload"`
}

// Response is the wire envelope for every reply. Exactly one Response
// is written per request, in submission order, on the same connection.
// Error is the empty string on success; Payload is an empty object on
// failure.
type Response struct {
	OK      bool            `json:"ok"`
	ReqID   int64           `json:"req_id"`
	Payload json.RawMessage `json:"payload"`
	Error   string          `json:"error"`
}

// emptyObject is the payload of every failure response and of success
// responses whose handler returned nothing.
var emptyObject = json.RawMessage("{}")

// Success builds an ok response with the given payload value. The
// payload must be JSON-marshalable; handler payloads are structs and
// maps built by the server, so a marshal failure is a programming
// error and panics.
func Success(reqID int64, payload any) Response {
	body := emptyObject
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			panic(fmt.Sprintf("frame: marshaling response payload: %v", err))
		}
		body = encoded
	}
	return Response{OK: true, ReqID: reqID, Payload: body, Error: ""}
}

// Failure builds an error response. The payload is always an empty
// object.
func Failure(reqID int64, message string) Response {
	return Response{OK: false, ReqID: reqID, Payload: emptyObject, Error: message}
}

// SchemaError reports a request whose envelope fields have the wrong
// shape: cmd not a string, req_id not an integer, or payload not an
// object. ReqID carries the echoed req_id when it was a valid integer,
// -1 otherwise, so the caller can still correlate the error response.
type SchemaError struct {
	ReqID int64
}

func (e *SchemaError) Error() string { return "Invalid message schema" }

// ParseRequest validates body as a request envelope.
//
// Malformed JSON produces an error prefixed "JSON parse error:" and
// the caller responds with req_id -1. A well-formed JSON document with
// wrong field shapes produces a *SchemaError. Both are recoverable —
// the connection stays open.
func ParseRequest(body []byte) (Request, error) {
	var envelope struct {
		Cmd     json.RawMessage `json:"cmd"`
		ReqID   json.RawMessage `json:"req_id"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// Valid JSON, but not an object at the top level.
			return Request{}, &SchemaError{ReqID: -1}
		}
		return Request{}, fmt.Errorf("JSON parse error: %v", err)
	}

	// req_id first: a valid integer is echoed even when the rest of
	// the envelope is bad.
	reqID := int64(-1)
	reqIDValid := false
	if len(envelope.ReqID) > 0 {
		if err := json.Unmarshal(envelope.ReqID, &reqID); err == nil {
			reqIDValid = true
		} else {
			reqID = -1
		}
	}

	var cmd string
	if len(envelope.Cmd) == 0 || json.Unmarshal(envelope.Cmd, &cmd) != nil {
		return Request{}, &SchemaError{ReqID: reqID}
	}
	if !reqIDValid {
		return Request{}, &SchemaError{ReqID: -1}
	}

	payload := envelope.Payload
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		payload = emptyObject
	} else if !isJSONObject(payload) {
		return Request{}, &SchemaError{ReqID: reqID}
	}

	return Request{Cmd: cmd, ReqID: reqID, Payload: payload}, nil
}

// isJSONObject reports whether raw (already known to be valid JSON)
// is an object.
func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}
