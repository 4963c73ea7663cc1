// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/knetx-controls/localsim/cmd/localsim/cli"
)

func readCommand() *cli.Command {
	var connection cli.RuntimeConnection
	var asJSON bool
	return &cli.Command{
		Name:    "read",
		Summary: "Read variables",
		Usage:   "localsim read <name>... [flags]",
		Description: `Read the effective value of one or more variables.

Forced values win over written values; names never written print
null. Unknown names are not an error.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("read", pflag.ContinueOnError)
			connection.AddFlags(flagSet)
			flagSet.BoolVar(&asJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("at least one variable name required")
			}
			c, err := connection.Dial()
			if err != nil {
				return err
			}
			defer c.Close()

			values, err := c.ReadVars(args)
			if err != nil {
				return err
			}
			if asJSON {
				return cli.WriteJSON(values)
			}
			// Print in the order asked for, not map order.
			for _, name := range args {
				fmt.Printf("%s=%s\n", name, formatValue(values[name]))
			}
			return nil
		},
	}
}

func writeCommand() *cli.Command {
	var connection cli.RuntimeConnection
	return &cli.Command{
		Name:    "write",
		Summary: "Write variables",
		Usage:   "localsim write <name>=<value>... [flags]",
		Description: `Write one or more variables.

Values parse as JSON (true, 42, 3.14, "text", null); anything that
does not parse is taken as a plain string, so SPEED=42 and
LABEL=running both work unquoted.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("write", pflag.ContinueOnError)
			connection.AddFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			values, err := parseAssignments(args)
			if err != nil {
				return err
			}
			c, err := connection.Dial()
			if err != nil {
				return err
			}
			defer c.Close()

			count, err := c.SetVars(values)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %d variable(s)\n", count)
			return nil
		},
	}
}

// parseAssignments turns NAME=VALUE arguments into a value map.
func parseAssignments(args []string) (map[string]any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one name=value pair required")
	}
	values := make(map[string]any, len(args))
	for _, arg := range args {
		name, raw, found := strings.Cut(arg, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid assignment %q, want name=value", arg)
		}
		values[name] = parseValue(raw)
	}
	return values, nil
}

// parseValue interprets raw as a JSON literal, falling back to a
// plain string.
func parseValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		return value
	}
	return raw
}

// formatValue renders a value the way it would appear in a payload.
func formatValue(value any) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(encoded)
}

// sortedNames returns the map's keys in order, for stable output.
func sortedNames(values map[string]any) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
