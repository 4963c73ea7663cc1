// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/knetx-controls/localsim/cmd/localsim/cli"
)

func pingCommand() *cli.Command {
	var connection cli.RuntimeConnection
	return &cli.Command{
		Name:    "ping",
		Summary: "Check runtime liveness",
		Description: `Ping the runtime and print its state.

Prints ONLINE with the runtime state, or OFFLINE when the runtime is
not reachable. Exits 1 when offline, so scripts can gate on it.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ping", pflag.ContinueOnError)
			connection.AddFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			c, err := connection.Dial()
			if err != nil {
				fmt.Println("OFFLINE")
				return &cli.ExitError{Code: 1}
			}
			defer c.Close()

			info, err := c.Ping()
			if err != nil {
				fmt.Println("OFFLINE")
				return &cli.ExitError{Code: 1}
			}
			fmt.Printf("ONLINE state=%s uptime=%dms project_loaded=%v\n",
				info.RuntimeState, info.UptimeMS, info.ProjectLoaded)
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	var connection cli.RuntimeConnection
	var asJSON bool
	return &cli.Command{
		Name:    "status",
		Summary: "Show runtime status",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
			connection.AddFlags(flagSet)
			flagSet.BoolVar(&asJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			c, err := connection.Dial()
			if err != nil {
				return err
			}
			defer c.Close()

			status, err := c.Status()
			if err != nil {
				return err
			}
			if asJSON {
				return cli.WriteJSON(status)
			}
			fmt.Printf("state:        %s\n", status.RuntimeState)
			fmt.Printf("uptime:       %dms\n", status.UptimeMS)
			fmt.Printf("scan:         %.1fms effective, %.1fms round\n",
				status.EffectiveScanMS, status.RoundTimeMS)
			if status.LastError != "" {
				fmt.Printf("last error:   %s\n", status.LastError)
			}
			if status.ProjectLoaded {
				info := status.ProjectInfo
				fmt.Printf("project:      %s (%d pages, %d sheets, %d files, %d bytes)\n",
					info.Name, info.Pages, info.Sheets, info.Files, info.Bytes)
				fmt.Printf("digest:       %s\n", info.Digest)
				fmt.Printf("received:     %s\n", info.ReceivedUTC)
			} else {
				fmt.Printf("project:      none loaded\n")
			}
			return nil
		},
	}
}

func diagCommand() *cli.Command {
	var connection cli.RuntimeConnection
	var asJSON bool
	return &cli.Command{
		Name:    "diag",
		Summary: "Show scan timing and board diagnostics",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("diag", pflag.ContinueOnError)
			connection.AddFlags(flagSet)
			flagSet.BoolVar(&asJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			c, err := connection.Dial()
			if err != nil {
				return err
			}
			defer c.Close()

			diag, err := c.Diag()
			if err != nil {
				return err
			}
			if asJSON {
				return cli.WriteJSON(diag)
			}
			fmt.Printf("state:  %s\n", diag.RuntimeState)
			fmt.Printf("scan:   %.1fms effective, %.1fms round\n",
				diag.EffectiveScanMS, diag.RoundTimeMS)
			fmt.Printf("boards: %d\n", len(diag.Boards))
			return nil
		},
	}
}
