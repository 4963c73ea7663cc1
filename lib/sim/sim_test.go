// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/knetx-controls/localsim/lib/bundle"
	"github.com/knetx-controls/localsim/lib/clock"
)

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestRuntime(t *testing.T) (*Runtime, *clock.FakeClock) {
	t.Helper()
	clk := clock.Fake(testEpoch)
	return New(clk, slog.New(slog.DiscardHandler)), clk
}

func validBundle(t *testing.T, name string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"project": map[string]any{"name": name},
		"pages": map[string]any{
			"init": map[string]any{
				"sheets": []any{map[string]any{"file": "pages/INIT/S001.st"}},
			},
		},
		"vars":    map[string]any{},
		"sources": map[string]any{"pages/INIT/S001.st": "X := 1;"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func mustLoad(t *testing.T, rt *Runtime, name string) {
	t.Helper()
	if _, err := rt.LoadProject(validBundle(t, name)); err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
}

func TestPing(t *testing.T) {
	rt, clk := newTestRuntime(t)
	clk.Advance(1500 * time.Millisecond)

	result := rt.Ping()
	if result.Resp != "PONG" {
		t.Errorf("resp = %q", result.Resp)
	}
	if result.RuntimeState != StateStop {
		t.Errorf("state = %q, want STOP", result.RuntimeState)
	}
	if result.UptimeMS != 1500 {
		t.Errorf("uptime = %d, want 1500", result.UptimeMS)
	}
	if result.ProjectLoaded {
		t.Error("project_loaded true before any load")
	}
	if len(result.Caps) != 12 || result.Caps[0] != "PING" || result.Caps[11] != "SHUTDOWN" {
		t.Errorf("caps = %v", result.Caps)
	}
}

func TestStartRequiresProject(t *testing.T) {
	rt, _ := newTestRuntime(t)

	if _, err := rt.Start(); !errors.Is(err, ErrNoProject) {
		t.Fatalf("Start without project: %v, want ErrNoProject", err)
	}
	if rt.State() != StateStop {
		t.Errorf("state = %q after refused start", rt.State())
	}

	mustLoad(t, rt, "p")
	result, err := rt.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if result.RuntimeState != StateRun {
		t.Errorf("state = %q, want RUN", result.RuntimeState)
	}
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	rt, _ := newTestRuntime(t)
	mustLoad(t, rt, "p")
	if _, err := rt.Start(); err != nil {
		t.Fatal(err)
	}
	result, err := rt.Start()
	if err != nil || result.RuntimeState != StateRun {
		t.Errorf("second Start = (%v, %v)", result, err)
	}
}

func TestStartRefusedInError(t *testing.T) {
	rt, _ := newTestRuntime(t)
	mustLoad(t, rt, "p")
	rt.Fault("watchdog trip")

	if _, err := rt.Start(); !errors.Is(err, ErrFaulted) {
		t.Fatalf("Start in ERROR: %v, want ErrFaulted", err)
	}
	status := rt.Status()
	if status.RuntimeState != StateError || status.LastError != "watchdog trip" {
		t.Errorf("status = %+v", status)
	}
}

func TestStopAlwaysSucceeds(t *testing.T) {
	rt, _ := newTestRuntime(t)
	for range 2 {
		if result := rt.Stop(); result.RuntimeState != StateStop {
			t.Errorf("Stop = %+v", result)
		}
	}

	mustLoad(t, rt, "p")
	rt.Fault("bus fault")
	if result := rt.Stop(); result.RuntimeState != StateStop {
		t.Errorf("Stop from ERROR = %+v", result)
	}
}

func TestStatusBeforeAndAfterLoad(t *testing.T) {
	rt, _ := newTestRuntime(t)

	status := rt.Status()
	if status.ProjectLoaded {
		t.Error("project_loaded before load")
	}
	if status.EffectiveScanMS != 10.0 || status.RoundTimeMS != 0.0 {
		t.Errorf("scan figures = %+v", status)
	}
	encoded, err := json.Marshal(status)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatal(err)
	}
	if info, ok := decoded["project_info"].(map[string]any); !ok || len(info) != 0 {
		t.Errorf("project_info before load = %v, want {}", decoded["project_info"])
	}

	mustLoad(t, rt, "conveyor")
	status = rt.Status()
	if !status.ProjectLoaded {
		t.Error("project_loaded false after load")
	}
	info, ok := status.ProjectInfo.(bundle.Summary)
	if !ok || info.Name != "conveyor" {
		t.Errorf("project_info = %v", status.ProjectInfo)
	}
}

func TestLoadProjectSummary(t *testing.T) {
	rt, _ := newTestRuntime(t)

	result, err := rt.LoadProject(validBundle(t, "conveyor"))
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if !result.Loaded {
		t.Error("loaded = false")
	}
	info := result.ProjectInfo
	if info.Name != "conveyor" || info.Pages != 1 || info.Sheets != 1 || info.Files != 1 || info.STFiles != 1 {
		t.Errorf("project_info = %+v", info)
	}
	if info.ReceivedUTC != "2026-03-01T09:00:00Z" {
		t.Errorf("received_utc = %q", info.ReceivedUTC)
	}
}

func TestLoadProjectForcesStop(t *testing.T) {
	rt, _ := newTestRuntime(t)
	mustLoad(t, rt, "one")
	if _, err := rt.Start(); err != nil {
		t.Fatal(err)
	}

	mustLoad(t, rt, "two")
	if rt.State() != StateStop {
		t.Errorf("state = %q after reload, want STOP", rt.State())
	}
	if info, ok := rt.Status().ProjectInfo.(bundle.Summary); !ok || info.Name != "two" {
		t.Errorf("project_info = %v, want replaced bundle", rt.Status().ProjectInfo)
	}
}

func TestLoadProjectFailureLeavesStateAlone(t *testing.T) {
	rt, _ := newTestRuntime(t)
	mustLoad(t, rt, "keep")
	if _, err := rt.Start(); err != nil {
		t.Fatal(err)
	}

	_, err := rt.LoadProject(json.RawMessage(`{"project":[],"pages":{},"vars":{},"sources":{}}`))
	if err == nil || err.Error() != "payload.project must be object" {
		t.Fatalf("err = %v", err)
	}
	if rt.State() != StateRun {
		t.Errorf("state = %q, want RUN preserved", rt.State())
	}
	status := rt.Status()
	if !status.ProjectLoaded {
		t.Error("previous project dropped by failed load")
	}
}

func TestReadWriteVars(t *testing.T) {
	rt, _ := newTestRuntime(t)

	if count := rt.SetVars(map[string]any{"MOTOR_ON": true, "SPEED": 42.5}); count != 2 {
		t.Errorf("count = %d", count)
	}
	values := rt.ReadVars([]string{"MOTOR_ON", "SPEED", "MISSING"})
	if values["MOTOR_ON"] != true || values["SPEED"] != 42.5 {
		t.Errorf("values = %v", values)
	}
	if missing, ok := values["MISSING"]; !ok || missing != nil {
		t.Errorf("MISSING = %v (present %v), want null", missing, ok)
	}
}

func TestForcesOverlayReads(t *testing.T) {
	rt, _ := newTestRuntime(t)
	rt.SetVars(map[string]any{"SPEED": 10})

	rt.ForceSet("ide-1", "conn-a", map[string]any{"SPEED": 99})
	if values := rt.ReadVars([]string{"SPEED"}); values["SPEED"] != 99 {
		t.Errorf("forced read = %v", values["SPEED"])
	}

	// A write after the force lands in the table but the force still
	// wins on reads.
	rt.SetVars(map[string]any{"SPEED": 20})
	if values := rt.ReadVars([]string{"SPEED"}); values["SPEED"] != 99 {
		t.Errorf("read after write under force = %v, want forced 99", values["SPEED"])
	}

	rt.ForceClear("ide-1", nil, true)
	if values := rt.ReadVars([]string{"SPEED"}); values["SPEED"] != 20 {
		t.Errorf("read after clear = %v, want last written 20", values["SPEED"])
	}
}

func TestLastWriterWinsAcrossOwners(t *testing.T) {
	rt, _ := newTestRuntime(t)
	rt.ForceSet("ide-1", "conn-a", map[string]any{"VALVE": "open"})
	rt.ForceSet("ide-2", "conn-b", map[string]any{"VALVE": "shut"})

	if values := rt.ReadVars([]string{"VALVE"}); values["VALVE"] != "shut" {
		t.Errorf("VALVE = %v, want most recent force", values["VALVE"])
	}
	rt.ForceClear("ide-2", nil, true)
	if values := rt.ReadVars([]string{"VALVE"}); values["VALVE"] != "open" {
		t.Errorf("VALVE = %v, want surviving force", values["VALVE"])
	}
}

func TestPurgeConnection(t *testing.T) {
	rt, _ := newTestRuntime(t)
	rt.ForceSet("ide-1", "conn-a", map[string]any{"A": 1})
	rt.ForceSet("ide-2", "conn-a", map[string]any{"B": 2})
	rt.ForceSet("panel", "conn-b", map[string]any{"C": 3})

	if purged := rt.PurgeConnection("conn-a"); purged != 2 {
		t.Errorf("purged = %d, want 2", purged)
	}
	if entries := rt.Forces(); len(entries) != 1 || entries[0].OwnerID != "panel" {
		t.Errorf("forces = %v", entries)
	}
	if purged := rt.PurgeConnection("conn-a"); purged != 0 {
		t.Errorf("second purge = %d, want 0", purged)
	}
}

func TestUptimeAdvances(t *testing.T) {
	rt, clk := newTestRuntime(t)
	first := rt.Ping().UptimeMS
	clk.Advance(2 * time.Second)
	second := rt.Ping().UptimeMS
	if second-first != 2000 {
		t.Errorf("uptime delta = %d, want 2000", second-first)
	}
}
