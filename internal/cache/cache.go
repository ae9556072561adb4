// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package cache provides request-coalescing in-memory caching.
package cache

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrNotExist is returned when a key does not exist in the cache.
var ErrNotExist = errors.New("does not exist")

// Cache is a typed cache.
type Cache[K comparable, V any] interface {
	Get(K) (V, error)
	GetOrSet(K, func() (V, error)) (V, error)
	Del(K)
	Clear()
}

// Coalescing is an in-memory cache that coalesces concurrent fetches of the
// same key. Failed fetches are not retained.
type Coalescing[K comparable, V any] struct {
	data sync.Map // K -> *fn[V]
}

// fn is a wrapper that allows making func() comparable.
type fn[V any] struct {
	Func func() (V, error)
}

func (c *Coalescing[K, V]) valueOrClear(key K, once *fn[V]) (V, error) {
	val, err := once.Func()
	if err != nil {
		c.data.CompareAndDelete(key, once)
	}
	return val, err
}

// Get returns the value for the given key, or ErrNotExist.
func (c *Coalescing[K, V]) Get(key K) (V, error) {
	once, ok := c.data.Load(key)
	if !ok {
		var zero V
		return zero, ErrNotExist
	}
	return c.valueOrClear(key, once.(*fn[V]))
}

// GetOrSet returns the value for the given key, fetching it if it does not
// exist. Simultaneous accesses to the same key share one fetch.
func (c *Coalescing[K, V]) GetOrSet(key K, fetch func() (V, error)) (V, error) {
	once, _ := c.data.LoadOrStore(key, &fn[V]{sync.OnceValues(fetch)})
	return c.valueOrClear(key, once.(*fn[V]))
}

// Del deletes the value for the given key.
func (c *Coalescing[K, V]) Del(key K) {
	c.data.Delete(key)
}

// Clear clears the cache.
func (c *Coalescing[K, V]) Clear() {
	c.data = sync.Map{}
}

var _ Cache[string, int] = &Coalescing[string, int]{}
