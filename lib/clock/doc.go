// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability. Production code
// injects Real(); tests inject Fake() and advance time explicitly.
// The runtime's uptime figures and bundle receipt timestamps all go
// through a Clock so tests can pin them to known values.
package clock
