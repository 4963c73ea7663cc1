// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

// Package client speaks the runtime protocol from the IDE side: one
// persistent framed-JSON connection, one outstanding request at a
// time, req_id correlation checked on every response. The CLI, the
// control panel, and the server tests all drive the runtime through
// this package.
//
// Force ownership is scoped to the connection: forces set through a
// Client vanish when that Client closes or drops.
package client
