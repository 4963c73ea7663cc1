// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

// localsim-panel is a terminal control panel for the LocalSim
// runtime: an online LED, the runtime state and uptime, and one-key
// run control, polling the runtime once a second. It can also launch
// a runtime when none is listening.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/knetx-controls/localsim/lib/client"
	"github.com/knetx-controls/localsim/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var addr string
	var runtimeBin string
	var showVersion bool

	flagSet := pflag.NewFlagSet("localsim-panel", pflag.ContinueOnError)
	flagSet.StringVar(&addr, "addr", client.DefaultAddr, "runtime address (host:port)")
	flagSet.StringVar(&runtimeBin, "runtime-bin", "localsim-runtime", "runtime binary launched by the L key")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintln(os.Stderr, "localsim-panel: terminal control panel for the LocalSim runtime")
		flagSet.PrintDefaults()
		return nil
	}
	if showVersion {
		fmt.Printf("localsim-panel %s\n", version.Info())
		return nil
	}

	program := tea.NewProgram(newModel(addr, runtimeBin))
	_, err := program.Run()
	return err
}
