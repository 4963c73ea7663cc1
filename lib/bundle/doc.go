// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle handles project bundles: the project/pages/vars
// metadata plus source file contents that the IDE uploads in one
// LOAD_PROJECT call.
//
// The server side (Parse, Summarize) validates an uploaded payload
// fully before anything is committed and derives the summary the IDE
// shows after a load. The client side (BuildFromDir) assembles the
// same payload from a project directory on disk, reading the JSON
// manifests as JSONC so hand-edited files may carry comments.
package bundle
