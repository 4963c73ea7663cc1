// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

// Package sim holds the runtime core: the lifecycle state machine,
// the simulated variable table, the force table, and the loaded
// project slot. All shared state lives behind one mutex; every
// exported method takes the lock, mutates or reads, and returns
// without doing any I/O, so callers are free to hold connections
// open while handlers run.
package sim
