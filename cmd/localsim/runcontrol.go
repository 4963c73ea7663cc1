// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/knetx-controls/localsim/cmd/localsim/cli"
)

func startCommand() *cli.Command {
	var connection cli.RuntimeConnection
	return &cli.Command{
		Name:    "start",
		Summary: "Start the runtime cycle (STOP to RUN)",
		Description: `Move the runtime to RUN.

Fails when no project is loaded or the runtime is in ERROR.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("start", pflag.ContinueOnError)
			connection.AddFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			return stateChange(&connection, "start")
		},
	}
}

func stopCommand() *cli.Command {
	var connection cli.RuntimeConnection
	return &cli.Command{
		Name:    "stop",
		Summary: "Stop the runtime cycle",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("stop", pflag.ContinueOnError)
			connection.AddFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			return stateChange(&connection, "stop")
		},
	}
}

func stateChange(connection *cli.RuntimeConnection, which string) error {
	c, err := connection.Dial()
	if err != nil {
		return err
	}
	defer c.Close()

	var state string
	if which == "start" {
		state, err = c.Start()
	} else {
		state, err = c.Stop()
	}
	if err != nil {
		return err
	}
	fmt.Printf("state=%s\n", state)
	return nil
}

func shutdownCommand() *cli.Command {
	var connection cli.RuntimeConnection
	return &cli.Command{
		Name:    "shutdown",
		Summary: "Shut the runtime down",
		Description: `Ask the runtime to stop accepting connections and exit.

The runtime acknowledges before its listener closes. Connections held
by other clients are not severed.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("shutdown", pflag.ContinueOnError)
			connection.AddFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			c, err := connection.Dial()
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Shutdown(); err != nil {
				return err
			}
			fmt.Println("shutting down")
			return nil
		},
	}
}
