// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"encoding/json"

	"github.com/knetx-controls/localsim/lib/bundle"
	"github.com/knetx-controls/localsim/lib/force"
)

// PingInfo is the PING response payload.
type PingInfo struct {
	Resp          string   `json:"resp"`
	RuntimeState  string   `json:"runtime_state"`
	UptimeMS      int64    `json:"uptime_ms"`
	ProjectLoaded bool     `json:"project_loaded"`
	Caps          []string `json:"caps"`
}

// Status is the GET_STATUS response payload. ProjectInfo is the zero
// Summary until a project is loaded.
type Status struct {
	RuntimeState    string         `json:"runtime_state"`
	LastError       string         `json:"last_error"`
	EffectiveScanMS float64        `json:"effective_scan_ms"`
	RoundTimeMS     float64        `json:"round_time_ms"`
	UptimeMS        int64          `json:"uptime_ms"`
	ProjectLoaded   bool           `json:"project_loaded"`
	ProjectInfo     bundle.Summary `json:"project_info"`
}

// Diag is the GET_DIAG response payload.
type Diag struct {
	RuntimeState    string            `json:"runtime_state"`
	RoundTimeMS     float64           `json:"round_time_ms"`
	EffectiveScanMS float64           `json:"effective_scan_ms"`
	Boards          []json.RawMessage `json:"boards"`
}

// LoadInfo is the LOAD_PROJECT response payload.
type LoadInfo struct {
	Loaded      bool           `json:"loaded"`
	ProjectInfo bundle.Summary `json:"project_info"`
}

// Ping reports liveness and capabilities.
func (c *Client) Ping() (PingInfo, error) {
	var info PingInfo
	err := c.call("PING", nil, &info, 1)
	return info, err
}

// Status fetches the full runtime status.
func (c *Client) Status() (Status, error) {
	var status Status
	err := c.call("GET_STATUS", nil, &status, 1)
	return status, err
}

// Diag fetches scan timing and board diagnostics.
func (c *Client) Diag() (Diag, error) {
	var diag Diag
	err := c.call("GET_DIAG", nil, &diag, 1)
	return diag, err
}

// Start asks the runtime to enter RUN and returns the resulting
// state. Fails without a loaded project or from ERROR.
func (c *Client) Start() (string, error) {
	return c.stateCommand("START")
}

// Stop moves the runtime to STOP and returns the resulting state.
func (c *Client) Stop() (string, error) {
	return c.stateCommand("STOP")
}

func (c *Client) stateCommand(cmd string) (string, error) {
	var result struct {
		RuntimeState string `json:"runtime_state"`
	}
	if err := c.call(cmd, nil, &result, 1); err != nil {
		return "", err
	}
	return result.RuntimeState, nil
}

// ReadVars returns the effective value of each name. Names never
// written come back as nil.
func (c *Client) ReadVars(names []string) (map[string]any, error) {
	var result struct {
		Values map[string]any `json:"values"`
	}
	payload := map[string]any{"names": names}
	if err := c.call("READ_VARS", payload, &result, 1); err != nil {
		return nil, err
	}
	return result.Values, nil
}

// SetVars writes values into the variable table and returns how many
// names were written.
func (c *Client) SetVars(values map[string]any) (int, error) {
	var result struct {
		Count int `json:"count"`
	}
	payload := map[string]any{"values": values}
	if err := c.call("SET_VARS", payload, &result, 1); err != nil {
		return 0, err
	}
	return result.Count, nil
}

// ForceSet forces values under ownerID. The forces last until
// cleared or until this connection closes.
func (c *Client) ForceSet(ownerID string, values map[string]any) (int, error) {
	var result struct {
		OwnerID string `json:"owner_id"`
		Count   int    `json:"count"`
	}
	payload := map[string]any{"owner_id": ownerID, "values": values}
	if err := c.call("FORCE_SET", payload, &result, 1); err != nil {
		return 0, err
	}
	return result.Count, nil
}

// ForceClear clears ownerID's forces: the named ones, or all of them
// when names is empty or all is set.
func (c *Client) ForceClear(ownerID string, names []string, all bool) error {
	payload := map[string]any{"owner_id": ownerID, "all": all}
	if len(names) > 0 {
		payload["names"] = names
	}
	return c.call("FORCE_CLEAR", payload, nil, 1)
}

// Forces fetches the flattened force table across all owners.
func (c *Client) Forces() ([]force.Entry, error) {
	var result struct {
		Forces []force.Entry `json:"forces"`
	}
	if err := c.call("GET_FORCES", nil, &result, 1); err != nil {
		return nil, err
	}
	return result.Forces, nil
}

// LoadProject uploads a bundle. Bigger than the chatty commands, so
// it gets a stretched deadline.
func (c *Client) LoadProject(b *bundle.Bundle) (bundle.Summary, error) {
	var info LoadInfo
	if err := c.call("LOAD_PROJECT", b, &info, 3); err != nil {
		return bundle.Summary{}, err
	}
	return info.ProjectInfo, nil
}

// Shutdown asks the runtime to stop accepting connections. The
// response arrives before the listener closes.
func (c *Client) Shutdown() error {
	return c.call("SHUTDOWN", nil, nil, 1)
}
