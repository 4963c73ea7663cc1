// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for LocalSim
// binaries.
//
// Configuration is loaded from a single YAML file specified by:
//   - LOCALSIM_CONFIG environment variable, or
//   - --config flag passed to the binary
//
// There are no fallbacks or automatic discovery, and environment
// variables never override file values. Flags given on the command
// line win over the file.
package config
