// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/knetx-controls/localsim/lib/client"
)

// RuntimeConnection carries the flags every runtime-facing command
// shares: where the runtime listens and how long to wait for it.
type RuntimeConnection struct {
	Addr    string
	Timeout time.Duration
}

// AddFlags registers the shared connection flags on flagSet.
func (rc *RuntimeConnection) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&rc.Addr, "addr", client.DefaultAddr, "runtime address (host:port)")
	flagSet.DurationVar(&rc.Timeout, "timeout", client.DefaultTimeout, "request timeout")
}

// Dial connects to the runtime. The caller owns the returned client
// and must Close it; forces set through it die with the connection.
func (rc *RuntimeConnection) Dial() (*client.Client, error) {
	return client.Dial(rc.Addr, rc.Timeout)
}
