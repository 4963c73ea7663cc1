// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. Fatal is the
// one place a LocalSim binary writes raw output to stderr: errors
// from run() where the structured logger may not be initialized yet.
package process
