// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/knetx-controls/localsim/cmd/localsim/cli"
	"github.com/knetx-controls/localsim/lib/bundle"
	"github.com/knetx-controls/localsim/lib/clock"
)

func loadCommand() *cli.Command {
	var connection cli.RuntimeConnection
	var asJSON bool
	return &cli.Command{
		Name:    "load",
		Summary: "Upload a project directory to the runtime",
		Usage:   "localsim load <project-dir> [flags]",
		Description: `Assemble a bundle from a project directory and upload it.

The directory must contain project.json, pages.json, and vars.json
(JSONC allowed) plus the source files the pages manifest references.
A successful load replaces whatever project the runtime held and
stops the cycle.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("load", pflag.ContinueOnError)
			connection.AddFlags(flagSet)
			flagSet.BoolVar(&asJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one project directory required")
			}
			built, err := bundle.BuildFromDir(args[0], clock.Real())
			if err != nil {
				return err
			}

			c, err := connection.Dial()
			if err != nil {
				return err
			}
			defer c.Close()

			summary, err := c.LoadProject(built)
			if err != nil {
				return err
			}
			if asJSON {
				return cli.WriteJSON(summary)
			}
			fmt.Printf("loaded %s: %d pages, %d sheets, %d files (%d bytes)\n",
				summary.Name, summary.Pages, summary.Sheets, summary.Files, summary.Bytes)
			fmt.Printf("digest %s\n", summary.Digest)
			if warnings, ok := built.Meta["warnings"].([]string); ok {
				for _, warning := range warnings {
					fmt.Printf("warning: %s\n", warning)
				}
			}
			return nil
		},
	}
}
