// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command tree for the localsim CLI:
// dispatch, flag parsing, help output, and typo suggestions for
// unknown commands and flags. Command handlers connect to the runtime
// through lib/client; this package owns no protocol logic.
package cli
