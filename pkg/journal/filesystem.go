// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
)

// Filesystem stores journal entries as JSON files in a billy dir, one file
// per storage key.
type Filesystem struct {
	fs billy.Filesystem
}

var _ Client = &Filesystem{}

// NewFilesystem creates a journal client rooted at fs.
func NewFilesystem(fs billy.Filesystem) *Filesystem {
	return &Filesystem{fs: fs}
}

// Record writes the entry, replacing any prior entry for the same key.
func (c *Filesystem) Record(ctx context.Context, e Entry) error {
	file, err := c.fs.Create(fmt.Sprintf("%s.json", sanitize(e.Key)))
	if err != nil {
		return errors.Wrap(err, "creating entry file")
	}
	defer file.Close()
	return errors.Wrap(json.NewEncoder(file).Encode(e), "encoding entry")
}

// Recent returns entries ordered most recent first.
func (c *Filesystem) Recent(ctx context.Context, project string, n int) ([]Entry, error) {
	var entries []Entry
	err := util.Walk(c.fs, ".", func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".json" {
			return nil
		}
		file, err := c.fs.Open(path)
		if err != nil {
			return errors.Wrap(err, "opening entry file")
		}
		defer file.Close()
		var e Entry
		if err := json.NewDecoder(file).Decode(&e); err != nil {
			return errors.Wrap(err, "decoding entry file")
		}
		if project != "" && e.Project != project {
			return nil
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return b.Time.Compare(a.Time)
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}
