// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/knetx-controls/localsim/lib/bundle"
	"github.com/knetx-controls/localsim/lib/clock"
	"github.com/knetx-controls/localsim/lib/force"
)

// State is the runtime lifecycle state. There is no in-place recovery
// from StateError: the operator restarts the process.
type State string

const (
	StateStop  State = "STOP"
	StateRun   State = "RUN"
	StateError State = "ERROR"
)

// Caps lists every command the runtime answers, in the order PING
// reports them.
var Caps = []string{
	"PING",
	"GET_STATUS",
	"START",
	"STOP",
	"GET_DIAG",
	"READ_VARS",
	"SET_VARS",
	"FORCE_SET",
	"FORCE_CLEAR",
	"GET_FORCES",
	"LOAD_PROJECT",
	"SHUTDOWN",
}

// ErrNoProject is returned by Start before any successful
// LOAD_PROJECT. Its text is the wire error.
var ErrNoProject = errors.New("No project loaded. Use LOAD_PROJECT first.")

// ErrFaulted is returned by Start while the runtime is in ERROR.
var ErrFaulted = errors.New("Runtime in ERROR: restart LocalSim to clear")

// Runtime is the simulated PLC. The zero value is not usable; call
// New. One Runtime is shared by every connection of a server.
type Runtime struct {
	mu sync.Mutex

	clk       clock.Clock
	log       *slog.Logger
	startedAt time.Time

	state     State
	lastError string

	// Static in the simulator: there is no scan loop to measure.
	effectiveScanMS float64
	roundTimeMS     float64

	vars   map[string]any
	forces *force.Table

	bundle  *bundle.Bundle
	summary bundle.Summary
	loaded  bool
}

// New returns a stopped Runtime with an empty variable table.
func New(clk clock.Clock, log *slog.Logger) *Runtime {
	return &Runtime{
		clk:             clk,
		log:             log,
		startedAt:       clk.Now(),
		state:           StateStop,
		effectiveScanMS: 10.0,
		vars:            map[string]any{},
		forces:          force.NewTable(),
	}
}

// PingResult is the PING response payload.
type PingResult struct {
	Resp          string   `json:"resp"`
	RuntimeState  State    `json:"runtime_state"`
	UptimeMS      int64    `json:"uptime_ms"`
	ProjectLoaded bool     `json:"project_loaded"`
	Caps          []string `json:"caps"`
}

// StatusResult is the GET_STATUS response payload. ProjectInfo is the
// bundle summary once a project is loaded, an empty object before.
type StatusResult struct {
	RuntimeState    State   `json:"runtime_state"`
	LastError       string  `json:"last_error"`
	EffectiveScanMS float64 `json:"effective_scan_ms"`
	RoundTimeMS     float64 `json:"round_time_ms"`
	UptimeMS        int64   `json:"uptime_ms"`
	ProjectLoaded   bool    `json:"project_loaded"`
	ProjectInfo     any     `json:"project_info"`
}

// StateResult carries the post-transition state for START and STOP.
type StateResult struct {
	RuntimeState State `json:"runtime_state"`
}

// DiagResult is the GET_DIAG response payload. Boards is always empty
// in the simulator; the field exists so diagnostics consumers see the
// same shape a bus-backed runtime produces.
type DiagResult struct {
	RuntimeState    State   `json:"runtime_state"`
	RoundTimeMS     float64 `json:"round_time_ms"`
	EffectiveScanMS float64 `json:"effective_scan_ms"`
	Boards          []any   `json:"boards"`
}

// LoadResult is the LOAD_PROJECT response payload.
type LoadResult struct {
	Loaded      bool           `json:"loaded"`
	ProjectInfo bundle.Summary `json:"project_info"`
}

func (r *Runtime) uptimeLocked() int64 {
	return r.clk.Now().Sub(r.startedAt).Milliseconds()
}

// Ping reports liveness and capabilities. Never fails.
func (r *Runtime) Ping() PingResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return PingResult{
		Resp:          "PONG",
		RuntimeState:  r.state,
		UptimeMS:      r.uptimeLocked(),
		ProjectLoaded: r.loaded,
		Caps:          Caps,
	}
}

// Status reports the full runtime status.
func (r *Runtime) Status() StatusResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := StatusResult{
		RuntimeState:    r.state,
		LastError:       r.lastError,
		EffectiveScanMS: r.effectiveScanMS,
		RoundTimeMS:     r.roundTimeMS,
		UptimeMS:        r.uptimeLocked(),
		ProjectLoaded:   r.loaded,
		ProjectInfo:     map[string]any{},
	}
	if r.loaded {
		result.ProjectInfo = r.summary
	}
	return result
}

// Start transitions STOP to RUN. Starting an already running runtime
// is a no-op that succeeds. A runtime without a project, or one in
// ERROR, refuses.
func (r *Runtime) Start() (StateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateError {
		return StateResult{}, ErrFaulted
	}
	if !r.loaded {
		return StateResult{}, ErrNoProject
	}
	r.setStateLocked(StateRun)
	return StateResult{RuntimeState: r.state}, nil
}

// Stop transitions any state to STOP. Never fails.
func (r *Runtime) Stop() StateResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setStateLocked(StateStop)
	return StateResult{RuntimeState: r.state}
}

func (r *Runtime) setStateLocked(next State) {
	if r.state == next {
		return
	}
	r.log.Info("runtime state change", "from", r.state, "to", next)
	r.state = next
}

// Diag reports scan timing and board diagnostics.
func (r *Runtime) Diag() DiagResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return DiagResult{
		RuntimeState:    r.state,
		RoundTimeMS:     r.roundTimeMS,
		EffectiveScanMS: r.effectiveScanMS,
		Boards:          []any{},
	}
}

// ReadVars returns the effective value of each requested name: the
// forced value when any owner forces it, the stored value otherwise,
// and null for names never written. Unknown names are not an error.
func (r *Runtime) ReadVars(names []string) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	values := make(map[string]any, len(names))
	for _, name := range names {
		if forced, ok := r.forces.Lookup(name); ok {
			values[name] = forced
			continue
		}
		values[name] = r.vars[name]
	}
	return values
}

// SetVars merges values into the variable table and returns how many
// names were written. The simulator accepts any value for any name.
func (r *Runtime) SetVars(values map[string]any) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, value := range values {
		r.vars[name] = value
	}
	return len(values)
}

// ForceSet records values as forced by ownerID, owned by connection
// connID for disconnect cleanup.
func (r *Runtime) ForceSet(ownerID, connID string, values map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forces.Set(ownerID, connID, values)
}

// ForceClear removes forces held by ownerID: the named ones, or every
// one when all is set or names is empty. Absent owners are a no-op.
func (r *Runtime) ForceClear(ownerID string, names []string, all bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forces.Clear(ownerID, names, all)
}

// Forces returns the flattened force table.
func (r *Runtime) Forces() []force.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forces.Snapshot()
}

// PurgeConnection drops every force owner registered by connID and
// returns how many owners were dropped. The server calls this exactly
// once per connection, on every exit path.
func (r *Runtime) PurgeConnection(connID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forces.ClearConnection(connID)
}

// LoadProject validates raw as a project bundle and, only when the
// whole payload validates, replaces the stored bundle and forces the
// runtime to STOP. A failed load leaves the previous bundle and the
// current state untouched.
func (r *Runtime) LoadProject(raw json.RawMessage) (LoadResult, error) {
	parsed, err := bundle.Parse(raw)
	if err != nil {
		return LoadResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	receivedUTC := r.clk.Now().UTC().Format("2006-01-02T15:04:05Z")
	r.bundle = parsed
	r.summary = bundle.Summarize(parsed, receivedUTC)
	r.loaded = true
	r.setStateLocked(StateStop)
	r.log.Info("project loaded",
		"name", r.summary.Name,
		"pages", r.summary.Pages,
		"sheets", r.summary.Sheets,
		"files", r.summary.Files,
		"bytes", r.summary.Bytes,
		"digest", r.summary.Digest)
	return LoadResult{Loaded: true, ProjectInfo: r.summary}, nil
}

// Fault moves the runtime to ERROR and records why. Nothing in the
// simulator faults on its own today.
func (r *Runtime) Fault(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastError = reason
	r.setStateLocked(StateError)
}

// State returns the current lifecycle state.
func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
