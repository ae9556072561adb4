// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package sync

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/go-cmp/cmp"
	"github.com/google/pypindex/pkg/cli"
	"github.com/google/pypindex/pkg/storage"
)

func seed(t *testing.T, s storage.Store, keys map[string]string) {
	t.Helper()
	for key, content := range keys {
		if err := s.Save(context.Background(), key, strings.NewReader(content)); err != nil {
			t.Fatalf("Save(%q) error = %v", key, err)
		}
	}
}

func TestHandler(t *testing.T) {
	for _, tc := range []struct {
		test     string
		keys     map[string]string
		prefix   string
		wantKeys []string
	}{
		{
			test: "all_keys",
			keys: map[string]string{
				"part/part-0.1.tar.gz":   "sdist bytes",
				"other/other-2.0.zip":    "zip bytes",
				"other/other-2.1.tar.gz": "more sdist bytes",
			},
			wantKeys: []string{"other/other-2.0.zip", "other/other-2.1.tar.gz", "part/part-0.1.tar.gz"},
		},
		{
			test: "prefix",
			keys: map[string]string{
				"part/part-0.1.tar.gz": "sdist bytes",
				"other/other-2.0.zip":  "zip bytes",
			},
			prefix:   "part",
			wantKeys: []string{"part/part-0.1.tar.gz"},
		},
	} {
		t.Run(tc.test, func(t *testing.T) {
			srcDir, dstDir := t.TempDir(), t.TempDir()
			seed(t, storage.NewFS(osfs.New(srcDir)), tc.keys)
			var out, errOut bytes.Buffer
			deps := &Deps{IO: cli.IO{Out: &out, Err: &errOut}}
			cfg := Config{From: "file://" + srcDir, To: "file://" + dstDir, Prefix: tc.prefix, Concurrency: 2}
			if _, err := Handler(context.Background(), cfg, deps); err != nil {
				t.Fatalf("Handler() error = %v", err)
			}
			dst := storage.NewFS(osfs.New(dstDir))
			keys, err := dst.List(context.Background(), "")
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if diff := cmp.Diff(tc.wantKeys, keys); diff != "" {
				t.Errorf("synced keys diff (-want +got):\n%s", diff)
			}
			for _, key := range tc.wantKeys {
				value, err := dst.Value(context.Background(), key)
				if err != nil {
					t.Fatalf("Value(%q) error = %v", key, err)
				}
				content, err := io.ReadAll(value)
				value.Close()
				if err != nil {
					t.Fatalf("reading %q: %v", key, err)
				}
				if string(content) != tc.keys[key] {
					t.Errorf("synced %q = %q, want %q", key, content, tc.keys[key])
				}
			}
		})
	}
}

func TestHandlerEmptySource(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	var out, errOut bytes.Buffer
	deps := &Deps{IO: cli.IO{Out: &out, Err: &errOut}}
	cfg := Config{From: "file://" + srcDir, To: "file://" + dstDir, Concurrency: 2}
	if _, err := Handler(context.Background(), cfg, deps); err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	if !strings.Contains(out.String(), "Nothing to sync") {
		t.Errorf("output missing empty-source notice:\n%s", out.String())
	}
}
