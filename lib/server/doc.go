// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

// Package server accepts IDE connections and drives the runtime core.
// Each accepted connection gets one goroutine running a read loop:
// read a frame, dispatch the command, write exactly one response,
// repeat. The loop never reads ahead, so responses land in submission
// order on every connection. A connection's force owners are purged
// exactly once when it goes away, whatever the exit path.
package server
