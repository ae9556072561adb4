// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package recent

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/pypindex/pkg/cli"
	"github.com/google/pypindex/pkg/journal"
)

func seedJournal(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	jc := journal.NewFilesystem(osfs.New(dir))
	for _, e := range []journal.Entry{
		{
			Project:  "part",
			Filename: "part-0.1.tar.gz",
			Version:  "0.1",
			Key:      "part/part-0.1.tar.gz",
			Time:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			Project:  "part",
			Filename: "part-0.2.tar.gz",
			Version:  "0.2",
			Key:      "part/part-0.2.tar.gz",
			Time:     time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC),
		},
		{
			Project:  "other",
			Filename: "other-2.0.zip",
			Version:  "2.0",
			Key:      "other/other-2.0.zip",
			Time:     time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		},
	} {
		if err := jc.Record(context.Background(), e); err != nil {
			t.Fatalf("Record(%q) error = %v", e.Key, err)
		}
	}
	return dir
}

func run(t *testing.T, cfg Config) string {
	t.Helper()
	var out bytes.Buffer
	deps := &Deps{IO: cli.IO{Out: &out}}
	if _, err := Handler(context.Background(), cfg, deps); err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	return out.String()
}

func TestHandler(t *testing.T) {
	url := "file://" + seedJournal(t)
	out := run(t, Config{Journal: url, Limit: 20})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("Handler() printed %d lines, want 3:\n%s", len(lines), out)
	}
	for i, key := range []string{"part/part-0.2.tar.gz", "other/other-2.0.zip", "part/part-0.1.tar.gz"} {
		if !strings.Contains(lines[i], key) {
			t.Errorf("line %d = %q, want key %s", i, lines[i], key)
		}
	}
	if !strings.Contains(lines[0], "2026-03-03T10:00:00Z") {
		t.Errorf("line 0 = %q, want RFC3339 time", lines[0])
	}
}

func TestHandlerProjectFilter(t *testing.T) {
	url := "file://" + seedJournal(t)
	out := run(t, Config{Journal: url, Project: "part", Limit: 20})
	if strings.Contains(out, "other") {
		t.Errorf("output includes filtered project:\n%s", out)
	}
	if got := strings.Count(out, "\n"); got != 2 {
		t.Errorf("Handler() printed %d lines, want 2:\n%s", got, out)
	}
}

func TestHandlerLimit(t *testing.T) {
	url := "file://" + seedJournal(t)
	out := run(t, Config{Journal: url, Limit: 1})
	if got := strings.Count(out, "\n"); got != 1 {
		t.Errorf("Handler() printed %d lines, want 1:\n%s", got, out)
	}
	if !strings.Contains(out, "part/part-0.2.tar.gz") {
		t.Errorf("output missing most recent key:\n%s", out)
	}
}
