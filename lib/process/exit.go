// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"os"
)

// Fatal writes "error: err" to stderr and exits. Errors carrying an
// ExitCode method choose their own status; everything else exits 1.
// The bind-in-use error exits 2 so scripts can tell "already running"
// from "broken".
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if coder, ok := err.(interface{ ExitCode() int }); ok {
		os.Exit(coder.ExitCode())
	}
	os.Exit(1)
}
