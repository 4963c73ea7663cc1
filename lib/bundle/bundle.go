// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
)

// SourceExtension is the recognized source-file extension. Files whose
// name ends in it (case-insensitive) are counted as program sources in
// the summary.
const SourceExtension = ".st"

// Bundle is one uploaded project: three JSON metadata documents, the
// source file contents keyed by relative path, and whatever meta the
// sender attached. A bundle is replaced wholesale by each successful
// load — never merged, never partially updated.
type Bundle struct {
	Project map[string]any    `json:"project"`
	Pages   map[string]any    `json:"pages"`
	Vars    map[string]any    `json:"vars"`
	Sources map[string]string `json:"sources"`
	Meta    map[string]any    `json:"meta,omitempty"`
}

// Summary is the server-derived description of a loaded bundle,
// returned by LOAD_PROJECT and included in GET_STATUS output.
type Summary struct {
	Name        string `json:"name"`
	Pages       int    `json:"pages"`
	Sheets      int    `json:"sheets"`
	Files       int    `json:"files"`
	STFiles     int    `json:"st_files"`
	Bytes       int    `json:"bytes"`
	Digest      string `json:"digest"`
	ReceivedUTC string `json:"received_utc"`
}

// Parse validates raw as a LOAD_PROJECT payload. Validation is
// complete before anything is returned: a payload that fails any check
// produces an error and no Bundle, so the caller never commits a
// half-valid upload.
func Parse(raw json.RawMessage) (*Bundle, error) {
	var payload struct {
		Project json.RawMessage `json:"project"`
		Pages   json.RawMessage `json:"pages"`
		Vars    json.RawMessage `json:"vars"`
		Sources json.RawMessage `json:"sources"`
		Meta    json.RawMessage `json:"meta"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("payload must be object: %v", err)
	}

	parsed := &Bundle{}
	var err error
	if parsed.Project, err = requireObject(payload.Project); err != nil {
		return nil, fmt.Errorf("payload.project must be object")
	}
	if parsed.Pages, err = requireObject(payload.Pages); err != nil {
		return nil, fmt.Errorf("payload.pages must be object")
	}
	if parsed.Vars, err = requireObject(payload.Vars); err != nil {
		return nil, fmt.Errorf("payload.vars must be object")
	}

	var sources map[string]json.RawMessage
	if len(payload.Sources) == 0 || json.Unmarshal(payload.Sources, &sources) != nil {
		return nil, fmt.Errorf("payload.sources must be object")
	}
	parsed.Sources = make(map[string]string, len(sources))
	for path, rawValue := range sources {
		if path == "" {
			return nil, fmt.Errorf("payload.sources keys must be non-empty strings")
		}
		var content string
		if err := json.Unmarshal(rawValue, &content); err != nil {
			return nil, fmt.Errorf("payload.sources values must be strings")
		}
		parsed.Sources[path] = content
	}

	// meta is optional; absent or null becomes an empty object,
	// anything else must be an object.
	if len(payload.Meta) == 0 || string(payload.Meta) == "null" {
		parsed.Meta = map[string]any{}
	} else if parsed.Meta, err = requireObject(payload.Meta); err != nil {
		return nil, fmt.Errorf("payload.meta must be object")
	}

	return parsed, nil
}

// requireObject unmarshals raw into a JSON object.
func requireObject(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing")
	}
	var object map[string]any
	if err := json.Unmarshal(raw, &object); err != nil {
		return nil, err
	}
	if object == nil {
		return nil, fmt.Errorf("null")
	}
	return object, nil
}

// Summarize derives the summary for a validated bundle. The pages
// walk is deliberately tolerant: missing or malformed substructures
// contribute zero to the counts, they are never an error — the bundle
// already passed validation, and a manifest a newer IDE emits should
// not make LOAD_PROJECT fail on an older runtime.
func Summarize(b *Bundle, receivedUTC string) Summary {
	summary := Summary{
		Files:       len(b.Sources),
		Digest:      Digest(b.Sources),
		ReceivedUTC: receivedUTC,
	}
	if name, ok := b.Project["name"].(string); ok {
		summary.Name = name
	}

	if init, ok := asObject(b.Pages["init"]); ok {
		summary.Pages++
		summary.Sheets += len(asList(init["sheets"]))
	}
	pageList := asList(b.Pages["pages"])
	summary.Pages += len(pageList)
	for _, page := range pageList {
		if pageObject, ok := asObject(page); ok {
			summary.Sheets += len(asList(pageObject["sheets"]))
		}
	}

	for path, content := range b.Sources {
		summary.Bytes += len(content)
		if strings.HasSuffix(strings.ToLower(path), SourceExtension) {
			summary.STFiles++
		}
	}
	return summary
}

// Digest returns the hex BLAKE3 digest of the source set: each
// relative path and its content, in path order, separated by NUL
// bytes so no path/content concatenation can collide with another.
func Digest(sources map[string]string) string {
	paths := make([]string, 0, len(sources))
	for path := range sources {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	hasher := blake3.New()
	for _, path := range paths {
		hasher.WriteString(path)
		hasher.Write([]byte{0})
		hasher.WriteString(sources[path])
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

func asObject(v any) (map[string]any, bool) {
	object, ok := v.(map[string]any)
	return object, ok
}

func asList(v any) []any {
	list, _ := v.([]any)
	return list
}
