// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package storage defines the keyed byte store backing the index and its
// memory, filesystem, and GCS implementations.
package storage

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/pkg/errors"
)

// ErrNotExists indicates the requested key holds no value.
var ErrNotExists = errors.New("key does not exist")

// Store is a flat keyed byte store. Keys are slash-joined segment paths and
// listing is by whole segments, so the prefix "one" never matches "onetwo".
type Store interface {
	// Save writes the contents of r at key, replacing any prior value.
	Save(ctx context.Context, key string, r io.Reader) error
	// Value opens the value at key.
	Value(ctx context.Context, key string) (io.ReadCloser, error)
	// List returns, sorted, every key equal to prefix or under prefix + "/".
	// The empty prefix lists the whole store.
	List(ctx context.Context, prefix string) ([]string, error)
	// Move renames the value at src to dst.
	Move(ctx context.Context, src, dst string) error
	// Delete removes the value at key.
	Delete(ctx context.Context, key string) error
}

// Copy copies the values at the given keys from src to dst.
func Copy(ctx context.Context, dst, src Store, keys ...string) error {
	for _, key := range keys {
		r, err := src.Value(ctx, key)
		if err != nil {
			return errors.Wrapf(err, "reading %s", key)
		}
		err = dst.Save(ctx, key, r)
		closeErr := r.Close()
		if err != nil {
			return errors.Wrapf(err, "writing %s", key)
		}
		if closeErr != nil {
			return errors.Wrapf(closeErr, "closing %s", key)
		}
	}
	return nil
}

// FromURL constructs the Store a storage URL names: mem://, file:///path, or
// gs://bucket/prefix.
func FromURL(ctx context.Context, storeURL string) (Store, error) {
	u, err := url.Parse(storeURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing storage URL")
	}
	switch u.Scheme {
	case "mem":
		return NewMemory(), nil
	case "file":
		if u.Path == "" {
			return nil, errors.New("file storage URL requires a path")
		}
		return NewFS(osfs.New(u.Path)), nil
	case "gs":
		return NewGCS(ctx, u.Host, strings.Trim(u.Path, "/"))
	default:
		return nil, errors.Errorf("unsupported scheme: '%s'", u.Scheme)
	}
}

func underPrefix(key, prefix string) bool {
	if prefix == "" {
		return true
	}
	return key == prefix || strings.HasPrefix(key, prefix+"/")
}
