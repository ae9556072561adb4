// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
)

// FS is a Store over a billy.Filesystem, one file per key.
type FS struct {
	fs billy.Filesystem
}

var _ Store = &FS{}

// NewFS creates a store rooted at fs.
func NewFS(fs billy.Filesystem) *FS {
	return &FS{fs: fs}
}

// Save writes the contents of r at key.
func (s *FS) Save(ctx context.Context, key string, r io.Reader) error {
	f, err := s.fs.Create(key)
	if err != nil {
		return errors.Wrapf(err, "creating %s", key)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", key)
	}
	return errors.Wrapf(f.Close(), "closing %s", key)
}

// Value opens the value at key.
func (s *FS) Value(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := s.fs.Open(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = stderrors.Join(err, ErrNotExists)
		}
		return nil, errors.Wrapf(err, "opening %s", key)
	}
	return f, nil
}

// List returns the sorted keys under prefix.
func (s *FS) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := util.Walk(s.fs, ".", func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if underPrefix(path, prefix) {
			keys = append(keys, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "walking filesystem")
	}
	sort.Strings(keys)
	return keys, nil
}

// Move renames the value at src to dst.
func (s *FS) Move(ctx context.Context, src, dst string) error {
	if dir := path.Dir(dst); dir != "." {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "creating parent of %s", dst)
		}
	}
	if err := s.fs.Rename(src, dst); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = stderrors.Join(err, ErrNotExists)
		}
		return errors.Wrapf(err, "moving %s", src)
	}
	return nil
}

// Delete removes the value at key.
func (s *FS) Delete(ctx context.Context, key string) error {
	if err := s.fs.Remove(key); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = stderrors.Join(err, ErrNotExists)
		}
		return errors.Wrapf(err, "deleting %s", key)
	}
	return nil
}
