// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

// Package frame implements the LocalSim wire format: each message is a
// 4-byte little-endian unsigned length followed by that many bytes of
// UTF-8 JSON. The package also defines the request/response envelopes
// and the strict envelope validation both ends rely on.
//
// There is no version negotiation in this protocol. The IDE and the
// runtime agree on the schema out of band.
package frame
