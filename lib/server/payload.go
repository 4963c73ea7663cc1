// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/knetx-controls/localsim/lib/force"
)

// Command result payloads. Each mirrors the documented response shape
// for its command; the runtime's own result structs cover the rest.

type readVarsResult struct {
	Values map[string]any `json:"values"`
}

type countResult struct {
	Count int `json:"count"`
}

type forceSetResult struct {
	OwnerID string `json:"owner_id"`
	Count   int    `json:"count"`
}

type forceClearResult struct {
	OwnerID string `json:"owner_id"`
}

type forcesResult struct {
	Forces []force.Entry `json:"forces"`
}

type shutdownResult struct {
	ShuttingDown bool `json:"shutting_down"`
}

var (
	errNamesNotStrings = errors.New("payload.names must be array of strings")
	errValuesNotObject = errors.New("payload.values must be object")
	errOwnerRequired   = errors.New("payload.owner_id required")
)

// namesField extracts payload.names for READ_VARS: absent means an
// empty read, anything present must be an array of strings.
func namesField(payload json.RawMessage) ([]string, error) {
	var fields struct {
		Names json.RawMessage `json:"names"`
	}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, errNamesNotStrings
	}
	if isAbsent(fields.Names) {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal(fields.Names, &names); err != nil {
		return nil, errNamesNotStrings
	}
	return names, nil
}

// valuesField extracts payload.values for SET_VARS and FORCE_SET:
// absent means an empty write, null or any non-object is an error.
func valuesField(payload json.RawMessage) (map[string]any, error) {
	var fields struct {
		Values json.RawMessage `json:"values"`
	}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, errValuesNotObject
	}
	if len(fields.Values) == 0 {
		return map[string]any{}, nil
	}
	var values map[string]any
	if err := json.Unmarshal(fields.Values, &values); err != nil || values == nil {
		return nil, errValuesNotObject
	}
	return values, nil
}

// ownerField extracts payload.owner_id: a non-empty string, required.
func ownerField(payload json.RawMessage) (string, error) {
	var fields struct {
		OwnerID json.RawMessage `json:"owner_id"`
	}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return "", errOwnerRequired
	}
	var ownerID string
	if isAbsent(fields.OwnerID) || json.Unmarshal(fields.OwnerID, &ownerID) != nil || ownerID == "" {
		return "", errOwnerRequired
	}
	return ownerID, nil
}

// clearFields extracts payload.names and payload.all for FORCE_CLEAR.
// names absent or null means "clear everything this owner holds";
// all accepts any JSON value and follows truthiness, so {"all": 1}
// and {"all": true} behave the same.
func clearFields(payload json.RawMessage) (names []string, all bool, err error) {
	var fields struct {
		Names json.RawMessage `json:"names"`
		All   json.RawMessage `json:"all"`
	}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, false, errNamesNotStrings
	}
	if !isAbsent(fields.Names) {
		if json.Unmarshal(fields.Names, &names) != nil {
			return nil, false, errNamesNotStrings
		}
	}
	return names, truthy(fields.All), nil
}

// isAbsent reports whether a raw field was missing or JSON null.
func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// truthy applies JSON truthiness: false, null, 0, "", absent are
// false; everything else is true.
func truthy(raw json.RawMessage) bool {
	if isAbsent(raw) {
		return false
	}
	switch string(bytes.TrimSpace(raw)) {
	case "false", "0", `""`:
		return false
	}
	return true
}
