// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

// Package force implements the debugging override table. A force
// replaces a variable's effective value on reads, independent of what
// the program (or SET_VARS) stored. Forces are grouped by an opaque
// owner id — typically a monitor-window id chosen by the IDE — and
// every owner is tied to the connection that created it, so a crashed
// or closed debugging session can never leave overrides behind.
package force

import "sort"

// Entry is one flattened force for wire snapshots.
type Entry struct {
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Value   any    `json:"value"`
}

// forcedValue is one owner's override for one variable. seq orders
// writes across owners: the highest sequence number wins when several
// owners force the same name.
type forcedValue struct {
	value any
	seq   uint64
}

// Table maps owner ids to their forced variables, with a reverse index
// from connection id to owner ids for bulk cleanup on disconnect.
//
// Table is not safe for concurrent use on its own. The runtime owns
// exactly one Table and accesses it only under its own mutex.
type Table struct {
	// byOwner holds each owner's forced names. An owner present in
	// this map always has at least one forced name.
	byOwner map[string]map[string]forcedValue

	// ownerConn records which connection created or last touched each
	// owner. Its key set always equals byOwner's.
	ownerConn map[string]string

	// nextSeq numbers individual forced-value writes for the
	// last-writer-wins policy.
	nextSeq uint64
}

// NewTable returns an empty force table.
func NewTable() *Table {
	return &Table{
		byOwner:   make(map[string]map[string]forcedValue),
		ownerConn: make(map[string]string),
	}
}

// Set creates or extends the owner's entry with the given values and
// records connID as the owner's current connection. Re-forcing from a
// different connection re-assigns ownership: the new connection's
// disconnect will purge the owner, the old one's will not.
func (t *Table) Set(ownerID, connID string, values map[string]any) {
	t.ownerConn[ownerID] = connID
	bucket := t.byOwner[ownerID]
	if bucket == nil {
		bucket = make(map[string]forcedValue)
		t.byOwner[ownerID] = bucket
	}
	for name, value := range values {
		t.nextSeq++
		bucket[name] = forcedValue{value: value, seq: t.nextSeq}
	}
}

// Clear removes names from the owner's entry, or the whole entry when
// all is true or names is empty. Removing the last name removes the
// owner from the reverse index too. Clearing an absent owner is a
// no-op.
func (t *Table) Clear(ownerID string, names []string, all bool) {
	bucket, present := t.byOwner[ownerID]
	if !present {
		return
	}
	if all || len(names) == 0 {
		delete(t.byOwner, ownerID)
		delete(t.ownerConn, ownerID)
		return
	}
	for _, name := range names {
		delete(bucket, name)
	}
	if len(bucket) == 0 {
		delete(t.byOwner, ownerID)
		delete(t.ownerConn, ownerID)
	}
}

// ClearConnection purges every owner whose current connection is
// connID and returns how many owners were removed. This is the
// fail-safe that runs when a connection closes for any reason.
func (t *Table) ClearConnection(connID string) int {
	var purged []string
	for ownerID, owningConn := range t.ownerConn {
		if owningConn == connID {
			purged = append(purged, ownerID)
		}
	}
	for _, ownerID := range purged {
		delete(t.byOwner, ownerID)
		delete(t.ownerConn, ownerID)
	}
	return len(purged)
}

// Lookup returns the effective forced value for name, if any owner
// forces it. When several owners force the same name, the most recent
// Set wins; clearing the winner falls back to the next most recent
// surviving force.
func (t *Table) Lookup(name string) (any, bool) {
	var best forcedValue
	var found bool
	for _, bucket := range t.byOwner {
		if forced, present := bucket[name]; present {
			if !found || forced.seq > best.seq {
				best = forced
				found = true
			}
		}
	}
	return best.value, found
}

// Snapshot returns every force as a flattened owner/name/value list,
// sorted by owner then name for deterministic output.
func (t *Table) Snapshot() []Entry {
	entries := make([]Entry, 0, len(t.byOwner))
	for ownerID, bucket := range t.byOwner {
		for name, forced := range bucket {
			entries = append(entries, Entry{
				OwnerID: ownerID,
				Name:    name,
				Value:   forced.value,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].OwnerID != entries[j].OwnerID {
			return entries[i].OwnerID < entries[j].OwnerID
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Len returns the number of owners currently holding forces.
func (t *Table) Len() int {
	return len(t.byOwner)
}
