// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "localsim",
		Subcommands: []*Command{
			{
				Name: "ping",
				Run: func(args []string) error {
					called = "ping"
					return nil
				},
			},
			{
				Name: "status",
				Run: func(args []string) error {
					called = "status"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"status"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "status" {
		t.Errorf("dispatched to %q, want %q", called, "status")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "localsim",
		Subcommands: []*Command{
			{
				Name: "force",
				Subcommands: []*Command{
					{
						Name: "set",
						Run: func(args []string) error {
							called = "force set"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute([]string{"force", "set", "MOTOR_ON=true"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "force set" {
		t.Errorf("dispatched to %q, want %q", called, "force set")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "MOTOR_ON=true" {
		t.Errorf("args = %v, want [MOTOR_ON=true]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var addr string
	var target string

	command := &Command{
		Name: "read",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("read", pflag.ContinueOnError)
			flagSet.StringVar(&addr, "addr", "127.0.0.1:1963", "runtime address")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	if err := command.Execute([]string{"--addr", "127.0.0.1:2099", "SPEED"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if addr != "127.0.0.1:2099" {
		t.Errorf("addr = %q, want %q", addr, "127.0.0.1:2099")
	}
	if target != "SPEED" {
		t.Errorf("target = %q, want %q", target, "SPEED")
	}
}

func TestCommand_Execute_UnknownCommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "localsim",
		Subcommands: []*Command{
			{Name: "status", Run: func(args []string) error { return nil }},
			{Name: "shutdown", Run: func(args []string) error { return nil }},
		},
	}

	err := root.Execute([]string{"stauts"})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "status"`) {
		t.Errorf("error = %q, want status suggestion", err)
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "read",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("read", pflag.ContinueOnError)
			flagSet.String("addr", "127.0.0.1:1963", "runtime address")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--adr", "x"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "--addr") {
		t.Errorf("error = %q, want --addr suggestion", err)
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	root := &Command{
		Name: "force",
		Subcommands: []*Command{
			{Name: "set", Run: func(args []string) error { return nil }},
		},
	}

	err := root.Execute(nil)
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %v, want subcommand required", err)
	}
}

func TestCommand_PrintHelp_ListsSubcommands(t *testing.T) {
	root := &Command{
		Name:    "localsim",
		Summary: "operator CLI for the LocalSim runtime",
		Subcommands: []*Command{
			{Name: "ping", Summary: "check runtime liveness"},
			{Name: "status", Summary: "show runtime status"},
		},
	}

	var buf bytes.Buffer
	root.PrintHelp(&buf)
	help := buf.String()
	for _, want := range []string{"ping", "check runtime liveness", "status", "Commands:"} {
		if !strings.Contains(help, want) {
			t.Errorf("help output missing %q:\n%s", want, help)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"status", "status", 0},
		{"stauts", "status", 2},
		{"stop", "start", 3},
		{"x", "", 1},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
