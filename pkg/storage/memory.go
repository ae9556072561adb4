// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Memory is an in-process Store for tests and single-instance serving.
type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

var _ Store = &Memory{}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

// Save writes the contents of r at key.
func (s *Memory) Save(ctx context.Context, key string, r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrapf(err, "reading value for %s", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = b
	return nil
}

// Value opens the value at key.
func (s *Memory) Value(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.m[key]
	if !ok {
		return nil, errors.Wrapf(ErrNotExists, "reading %s", key)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

// List returns the sorted keys under prefix.
func (s *Memory) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.m {
		if underPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Move renames the value at src to dst.
func (s *Memory) Move(ctx context.Context, src, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.m[src]
	if !ok {
		return errors.Wrapf(ErrNotExists, "moving %s", src)
	}
	s.m[dst] = b
	delete(s.m, src)
	return nil
}

// Delete removes the value at key.
func (s *Memory) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[key]; !ok {
		return errors.Wrapf(ErrNotExists, "deleting %s", key)
	}
	delete(s.m, key)
	return nil
}
