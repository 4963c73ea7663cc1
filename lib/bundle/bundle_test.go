// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseValid(t *testing.T) {
	raw := []byte(`{
		"project": {"name": "conveyor"},
		"pages": {"init": {"sheets": [{"file": "pages/INIT/S001.st"}]}},
		"vars": {"globals": []},
		"sources": {"pages/INIT/S001.st": "X := 1;"},
		"meta": {"sent_utc": "2026-03-01T09:00:00Z"}
	}`)

	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Project["name"] != "conveyor" {
		t.Errorf("project name = %v, want conveyor", parsed.Project["name"])
	}
	if parsed.Sources["pages/INIT/S001.st"] != "X := 1;" {
		t.Errorf("sources = %v", parsed.Sources)
	}
	if parsed.Meta["sent_utc"] != "2026-03-01T09:00:00Z" {
		t.Errorf("meta = %v", parsed.Meta)
	}
}

func TestParseMetaOptional(t *testing.T) {
	for _, raw := range []string{
		`{"project":{},"pages":{},"vars":{},"sources":{}}`,
		`{"project":{},"pages":{},"vars":{},"sources":{},"meta":null}`,
	} {
		parsed, err := Parse([]byte(raw))
		if err != nil {
			t.Fatalf("Parse(%s): %v", raw, err)
		}
		if parsed.Meta == nil || len(parsed.Meta) != 0 {
			t.Errorf("Meta = %v, want empty object", parsed.Meta)
		}
	}
}

func TestParseValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{"project not object", `{"project":[],"pages":{},"vars":{},"sources":{}}`, "payload.project must be object"},
		{"project missing", `{"pages":{},"vars":{},"sources":{}}`, "payload.project must be object"},
		{"pages not object", `{"project":{},"pages":"x","vars":{},"sources":{}}`, "payload.pages must be object"},
		{"vars null", `{"project":{},"pages":{},"vars":null,"sources":{}}`, "payload.vars must be object"},
		{"sources not object", `{"project":{},"pages":{},"vars":{},"sources":[1]}`, "payload.sources must be object"},
		{"sources missing", `{"project":{},"pages":{},"vars":{}}`, "payload.sources must be object"},
		{"source value not string", `{"project":{},"pages":{},"vars":{},"sources":{"a.st":7}}`, "payload.sources values must be strings"},
		{"meta not object", `{"project":{},"pages":{},"vars":{},"sources":{},"meta":3}`, "payload.meta must be object"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.raw))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("error = %q, want %q", err, test.wantErr)
			}
		})
	}
}

func TestSummarizeCounts(t *testing.T) {
	raw := []byte(`{
		"project": {"name": "press-line"},
		"pages": {
			"init": {"sheets": [{"file": "a"}, {"file": "b"}]},
			"pages": [
				{"id": "P001", "sheets": [{"file": "c"}]},
				{"id": "P002", "sheets": []}
			]
		},
		"vars": {},
		"sources": {"a.st": "x", "b.ST": "yy", "notes.txt": "zzz"}
	}`)
	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	summary := Summarize(parsed, "2026-03-01T09:00:00Z")
	if summary.Name != "press-line" {
		t.Errorf("Name = %q", summary.Name)
	}
	if summary.Pages != 3 {
		t.Errorf("Pages = %d, want 3 (init counts as one)", summary.Pages)
	}
	if summary.Sheets != 3 {
		t.Errorf("Sheets = %d, want 3", summary.Sheets)
	}
	if summary.Files != 3 {
		t.Errorf("Files = %d, want 3", summary.Files)
	}
	if summary.STFiles != 2 {
		t.Errorf("STFiles = %d, want 2 (extension match is case-insensitive)", summary.STFiles)
	}
	if summary.Bytes != 6 {
		t.Errorf("Bytes = %d, want 6", summary.Bytes)
	}
	if summary.ReceivedUTC != "2026-03-01T09:00:00Z" {
		t.Errorf("ReceivedUTC = %q", summary.ReceivedUTC)
	}
	if len(summary.Digest) != 64 {
		t.Errorf("Digest = %q, want 64 hex chars", summary.Digest)
	}
}

func TestSummarizeMalformedPagesTolerated(t *testing.T) {
	tests := []string{
		`{"project":{},"pages":{},"vars":{},"sources":{}}`,
		`{"project":{},"pages":{"init":"not-an-object"},"vars":{},"sources":{}}`,
		`{"project":{},"pages":{"init":{"sheets":"nope"},"pages":"nope"},"vars":{},"sources":{}}`,
		`{"project":{},"pages":{"pages":[42,"x"]},"vars":{},"sources":{}}`,
	}
	for _, raw := range tests {
		parsed, err := Parse([]byte(raw))
		if err != nil {
			t.Fatalf("Parse(%s): %v", raw, err)
		}
		summary := Summarize(parsed, "")
		if summary.Sheets != 0 {
			t.Errorf("Summarize(%s).Sheets = %d, want 0", raw, summary.Sheets)
		}
	}
}

func TestSummarizeSingleSTSource(t *testing.T) {
	parsed, err := Parse([]byte(`{"project":{},"pages":{},"vars":{},"sources":{"a.st":"x"}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	summary := Summarize(parsed, "")
	if summary.Files != 1 || summary.STFiles != 1 || summary.Bytes != 1 {
		t.Errorf("summary = %+v, want files=1 st_files=1 bytes=1", summary)
	}
}

func TestDigestDeterministicAndSensitive(t *testing.T) {
	a := Digest(map[string]string{"a.st": "x", "b.st": "y"})
	b := Digest(map[string]string{"b.st": "y", "a.st": "x"})
	if a != b {
		t.Error("digest depends on map iteration order")
	}

	changed := Digest(map[string]string{"a.st": "x", "b.st": "z"})
	if changed == a {
		t.Error("digest did not change when a source changed")
	}

	moved := Digest(map[string]string{"a.st": "xb.st", "": "y"})
	if moved == a {
		t.Error("digest collides across path/content boundaries")
	}
}

func TestSummaryJSONKeys(t *testing.T) {
	encoded, err := json.Marshal(Summary{Name: "p"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{"name", "pages", "sheets", "files", "st_files", "bytes", "digest", "received_utc"} {
		if !strings.Contains(string(encoded), `"`+key+`"`) {
			t.Errorf("summary JSON is missing key %q: %s", key, encoded)
		}
	}
}
