// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/knetx-controls/localsim/cmd/localsim/cli"
	"github.com/knetx-controls/localsim/lib/version"
)

// rootCommand builds the complete localsim command tree.
func rootCommand() *cli.Command {
	return &cli.Command{
		Name: "localsim",
		Description: `LocalSim: simulated PLC runtime control.

Talk to a running localsim-runtime over its loopback protocol:
check liveness, start and stop the cycle, read and write variables,
manage forces, and upload projects.`,
		Subcommands: []*cli.Command{
			pingCommand(),
			statusCommand(),
			diagCommand(),
			startCommand(),
			stopCommand(),
			readCommand(),
			writeCommand(),
			forceCommand(),
			loadCommand(),
			shutdownCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("localsim %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Check whether the runtime is up",
				Command:     "localsim ping",
			},
			{
				Description: "Upload a project directory and start the cycle",
				Command:     "localsim load ./my-project && localsim start",
			},
			{
				Description: "Read two variables",
				Command:     "localsim read MOTOR_ON SPEED",
			},
			{
				Description: "Force a variable for thirty seconds",
				Command:     "localsim force set --owner bench MOTOR_ON=true --hold 30s",
			},
		},
	}
}
