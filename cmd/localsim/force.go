// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/knetx-controls/localsim/cmd/localsim/cli"
)

func forceCommand() *cli.Command {
	return &cli.Command{
		Name:    "force",
		Summary: "Manage variable forces",
		Description: `Manage variable forces.

A force pins a variable to a value for every reader until cleared.
Forces are owned by the connection that set them: the runtime drops
them the moment that connection goes away. "force set" therefore
holds its connection open for the duration of the force.`,
		Subcommands: []*cli.Command{
			forceSetCommand(),
			forceClearCommand(),
			forceListCommand(),
		},
	}
}

func forceSetCommand() *cli.Command {
	var connection cli.RuntimeConnection
	var owner string
	var hold time.Duration
	return &cli.Command{
		Name:    "set",
		Summary: "Force variables and hold them",
		Usage:   "localsim force set --owner <id> <name>=<value>... [flags]",
		Description: `Force one or more variables and hold the connection open.

The forces last until --hold elapses or the command is interrupted,
then the connection closes and the runtime clears them. With no
--hold, hold until interrupted.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("force set", pflag.ContinueOnError)
			connection.AddFlags(flagSet)
			flagSet.StringVar(&owner, "owner", "", "force owner id (required)")
			flagSet.DurationVar(&hold, "hold", 0, "how long to hold the forces (0: until interrupted)")
			return flagSet
		},
		Run: func(args []string) error {
			if owner == "" {
				return fmt.Errorf("--owner is required")
			}
			values, err := parseAssignments(args)
			if err != nil {
				return err
			}
			c, err := connection.Dial()
			if err != nil {
				return err
			}
			defer c.Close()

			count, err := c.ForceSet(owner, values)
			if err != nil {
				return err
			}
			for _, name := range sortedNames(values) {
				fmt.Printf("forced %s=%s\n", name, formatValue(values[name]))
			}
			if hold > 0 {
				fmt.Printf("holding %d force(s) for %s (Ctrl-C to release early)\n", count, hold)
			} else {
				fmt.Printf("holding %d force(s) until interrupted (Ctrl-C to release)\n", count)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if hold > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(hold):
				}
			} else {
				<-ctx.Done()
			}

			// Explicit clear so the release is acknowledged rather
			// than racing the disconnect purge.
			if err := c.ForceClear(owner, nil, true); err != nil {
				return err
			}
			fmt.Println("released")
			return nil
		},
	}
}

func forceClearCommand() *cli.Command {
	var connection cli.RuntimeConnection
	var owner string
	var all bool
	return &cli.Command{
		Name:    "clear",
		Summary: "Clear forces held by an owner",
		Usage:   "localsim force clear --owner <id> [<name>...] [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("force clear", pflag.ContinueOnError)
			connection.AddFlags(flagSet)
			flagSet.StringVar(&owner, "owner", "", "force owner id (required)")
			flagSet.BoolVar(&all, "all", false, "clear every force the owner holds")
			return flagSet
		},
		Run: func(args []string) error {
			if owner == "" {
				return fmt.Errorf("--owner is required")
			}
			c, err := connection.Dial()
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.ForceClear(owner, args, all); err != nil {
				return err
			}
			fmt.Printf("cleared owner %s\n", owner)
			return nil
		},
	}
}

func forceListCommand() *cli.Command {
	var connection cli.RuntimeConnection
	var asJSON bool
	return &cli.Command{
		Name:    "list",
		Summary: "List active forces across all owners",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("force list", pflag.ContinueOnError)
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

			forces, err := c.Forces()
			if err != nil {
				return err
			}
			if asJSON {
				return cli.WriteJSON(forces)
			}
			if len(forces) == 0 {
				fmt.Println("no active forces")
				return nil
			}
			for _, entry := range forces {
				fmt.Printf("%s\t%s=%s\n", entry.OwnerID, entry.Name, formatValue(entry.Value))
			}
			return nil
		},
	}
}
