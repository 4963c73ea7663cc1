// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/knetx-controls/localsim/lib/clock"
)

// maxMissingListed caps how many missing source files a build error
// names before truncating the list.
const maxMissingListed = 20

// BuildFromDir assembles a LOAD_PROJECT bundle from a project
// directory containing project.json, pages.json, and vars.json plus
// the source files those manifests reference. The three manifests are
// read as JSONC (comments and trailing commas tolerated); the wire
// payload is plain JSON either way.
//
// Source paths are collected from the pages manifest: every sheet's
// file, a pages/<id>.st wrapper per page, and the pages/INIT.st
// wrapper. A manifest entry whose file does not exist fails the build
// with every missing path named (up to a cap).
func BuildFromDir(root string, clk clock.Clock) (*Bundle, error) {
	projectJSON, err := readManifest(filepath.Join(root, "project.json"))
	if err != nil {
		return nil, err
	}
	pagesJSON, err := readManifest(filepath.Join(root, "pages.json"))
	if err != nil {
		return nil, err
	}
	varsJSON, err := readManifest(filepath.Join(root, "vars.json"))
	if err != nil {
		return nil, err
	}

	relPaths, warnings := collectSourcePaths(pagesJSON)

	sources := make(map[string]string, len(relPaths))
	var missing []string
	totalBytes := 0
	for _, rel := range relPaths {
		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if os.IsNotExist(err) {
			missing = append(missing, rel)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rel, err)
		}
		sources[rel] = string(content)
		totalBytes += len(content)
	}
	if len(missing) > 0 {
		listed := missing
		truncated := ""
		if len(listed) > maxMissingListed {
			truncated = fmt.Sprintf("\n...(+%d)", len(listed)-maxMissingListed)
			listed = listed[:maxMissingListed]
		}
		return nil, fmt.Errorf("missing project files (pages.json):\n%s%s",
			strings.Join(listed, "\n"), truncated)
	}

	return &Bundle{
		Project: projectJSON,
		Pages:   pagesJSON,
		Vars:    varsJSON,
		Sources: sources,
		Meta: map[string]any{
			"sent_utc":    clk.Now().UTC().Format(time.RFC3339),
			"warnings":    warnings,
			"total_bytes": totalBytes,
		},
	}, nil
}

// readManifest reads a JSONC manifest file into a JSON object.
func readManifest(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var object map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &object); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return object, nil
}

// collectSourcePaths walks the pages manifest and returns the sorted,
// de-duplicated set of relative source paths it references, plus any
// warnings. The walk tolerates malformed substructures the same way
// Summarize does.
func collectSourcePaths(pages map[string]any) ([]string, []string) {
	seen := make(map[string]bool)
	addFile := func(v any) {
		if rel, ok := v.(string); ok && strings.TrimSpace(rel) != "" {
			seen[strings.ReplaceAll(rel, "\\", "/")] = true
		}
	}

	if init, ok := asObject(pages["init"]); ok {
		for _, sheet := range asList(init["sheets"]) {
			if sheetObject, ok := asObject(sheet); ok {
				addFile(sheetObject["file"])
			}
		}
	}
	for _, page := range asList(pages["pages"]) {
		pageObject, ok := asObject(page)
		if !ok {
			continue
		}
		if id, ok := pageObject["id"].(string); ok && id != "" {
			addFile("pages/" + id + SourceExtension)
		}
		for _, sheet := range asList(pageObject["sheets"]) {
			if sheetObject, ok := asObject(sheet); ok {
				addFile(sheetObject["file"])
			}
		}
	}
	addFile("pages/INIT" + SourceExtension)

	var warnings []string
	if len(seen) == 0 {
		warnings = append(warnings, "no source files referenced by pages.json")
	}

	paths := make([]string, 0, len(seen))
	for rel := range seen {
		paths = append(paths, rel)
	}
	sort.Strings(paths)
	return paths, warnings
}
