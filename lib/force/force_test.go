// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package force

import "testing"

func TestSetAndLookup(t *testing.T) {
	table := NewTable()
	table.Set("monitor-1", "conn-a", map[string]any{"X": 1, "Y": true})

	value, forced := table.Lookup("X")
	if !forced || value != 1 {
		t.Errorf("Lookup(X) = %v, %v; want 1, true", value, forced)
	}
	if _, forced := table.Lookup("Z"); forced {
		t.Error("Lookup(Z) reported a force for an unforced name")
	}
}

func TestSetExtendsExistingOwner(t *testing.T) {
	table := NewTable()
	table.Set("monitor-1", "conn-a", map[string]any{"X": 1})
	table.Set("monitor-1", "conn-a", map[string]any{"Y": 2})

	if got := len(table.Snapshot()); got != 2 {
		t.Errorf("snapshot has %d entries, want 2", got)
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1 owner", table.Len())
	}
}

func TestLastWriterWinsAcrossOwners(t *testing.T) {
	table := NewTable()
	table.Set("monitor-1", "conn-a", map[string]any{"X": 1})
	table.Set("monitor-2", "conn-b", map[string]any{"X": 2})

	if value, _ := table.Lookup("X"); value != 2 {
		t.Errorf("Lookup(X) = %v, want 2 (most recent Set wins)", value)
	}

	// Re-forcing from the first owner makes it the winner again.
	table.Set("monitor-1", "conn-a", map[string]any{"X": 3})
	if value, _ := table.Lookup("X"); value != 3 {
		t.Errorf("Lookup(X) = %v, want 3 after re-force", value)
	}
}

func TestClearWinnerFallsBackToSurvivor(t *testing.T) {
	table := NewTable()
	table.Set("monitor-1", "conn-a", map[string]any{"X": 1})
	table.Set("monitor-2", "conn-b", map[string]any{"X": 2})

	table.Clear("monitor-2", nil, true)
	value, forced := table.Lookup("X")
	if !forced || value != 1 {
		t.Errorf("Lookup(X) = %v, %v; want fallback to 1", value, forced)
	}
}

func TestClearNames(t *testing.T) {
	table := NewTable()
	table.Set("monitor-1", "conn-a", map[string]any{"X": 1, "Y": 2})

	table.Clear("monitor-1", []string{"X"}, false)
	if _, forced := table.Lookup("X"); forced {
		t.Error("X still forced after Clear")
	}
	if _, forced := table.Lookup("Y"); !forced {
		t.Error("Y lost its force; only X was cleared")
	}

	// Clearing the last name removes the owner entirely.
	table.Clear("monitor-1", []string{"Y"}, false)
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after last name cleared", table.Len())
	}
}

func TestClearAllIsIdempotent(t *testing.T) {
	table := NewTable()
	table.Set("monitor-1", "conn-a", map[string]any{"X": 1})

	table.Clear("monitor-1", nil, true)
	table.Clear("monitor-1", nil, true) // absent owner: no-op
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}
}

func TestClearOmittedNamesClearsWholeOwner(t *testing.T) {
	table := NewTable()
	table.Set("monitor-1", "conn-a", map[string]any{"X": 1, "Y": 2})

	table.Clear("monitor-1", nil, false)
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0 (omitted names clears everything)", table.Len())
	}
}

func TestClearConnection(t *testing.T) {
	table := NewTable()
	table.Set("monitor-1", "conn-a", map[string]any{"X": 1})
	table.Set("monitor-2", "conn-a", map[string]any{"Y": 2})
	table.Set("monitor-3", "conn-b", map[string]any{"Z": 3})

	purged := table.ClearConnection("conn-a")
	if purged != 2 {
		t.Errorf("ClearConnection purged %d owners, want 2", purged)
	}
	if _, forced := table.Lookup("X"); forced {
		t.Error("conn-a force survived ClearConnection")
	}
	if _, forced := table.Lookup("Z"); !forced {
		t.Error("conn-b force was purged with conn-a")
	}
}

func TestReforceReassignsOwnership(t *testing.T) {
	table := NewTable()
	table.Set("monitor-1", "conn-a", map[string]any{"X": 1})
	table.Set("monitor-1", "conn-b", map[string]any{"X": 2})

	// The owner now belongs to conn-b: conn-a's disconnect is a no-op.
	if purged := table.ClearConnection("conn-a"); purged != 0 {
		t.Errorf("ClearConnection(conn-a) purged %d owners, want 0", purged)
	}
	if purged := table.ClearConnection("conn-b"); purged != 1 {
		t.Errorf("ClearConnection(conn-b) purged %d owners, want 1", purged)
	}
}

func TestSnapshotSorted(t *testing.T) {
	table := NewTable()
	table.Set("monitor-2", "conn-a", map[string]any{"B": 2, "A": 1})
	table.Set("monitor-1", "conn-a", map[string]any{"C": 3})

	entries := table.Snapshot()
	want := []struct{ owner, name string }{
		{"monitor-1", "C"},
		{"monitor-2", "A"},
		{"monitor-2", "B"},
	}
	if len(entries) != len(want) {
		t.Fatalf("snapshot has %d entries, want %d", len(entries), len(want))
	}
	for i, entry := range entries {
		if entry.OwnerID != want[i].owner || entry.Name != want[i].name {
			t.Errorf("entry %d = %s/%s, want %s/%s",
				i, entry.OwnerID, entry.Name, want[i].owner, want[i].name)
		}
	}
}
