// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

// localsim is the operator CLI for the LocalSim runtime: liveness
// checks, run control, variable access, force management, and project
// upload, all over the framed-JSON protocol.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like ping) return an
		// ExitError with the desired exit code. Don't print a
		// redundant "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return rootCommand().Execute(os.Args[1:])
}
