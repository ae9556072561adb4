// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	stderrors "errors"
	"io"
	"path"
	"sort"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCS is a Store backed by a Cloud Storage bucket, with keys stored
// beneath an optional object prefix.
type GCS struct {
	client *gcs.Client
	bucket string
	prefix string
}

var _ Store = &GCS{}

// NewGCS creates a store for the given bucket and object prefix.
func NewGCS(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*GCS, error) {
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "initializing GCS client")
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *GCS) objectPath(key string) string {
	return path.Join(s.prefix, key)
}

// Save writes the contents of r at key.
func (s *GCS) Save(ctx context.Context, key string, r io.Reader) error {
	obj := s.client.Bucket(s.bucket).Object(s.objectPath(key))
	w := obj.NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return errors.Wrapf(err, "writing %s", key)
	}
	return errors.Wrapf(w.Close(), "closing GCS writer for %s", key)
}

// Value opens the value at key.
func (s *GCS) Value(ctx context.Context, key string) (io.ReadCloser, error) {
	objectPath := s.objectPath(key)
	obj := s.client.Bucket(s.bucket).Object(objectPath)
	r, err := obj.NewReader(ctx)
	if err != nil {
		if err == gcs.ErrObjectNotExist {
			err = stderrors.Join(err, ErrNotExists)
		}
		return nil, errors.Wrapf(err, "creating GCS reader for %s", objectPath)
	}
	return r, nil
}

// List returns the sorted keys under prefix.
func (s *GCS) List(ctx context.Context, prefix string) ([]string, error) {
	query := &gcs.Query{
		Prefix: s.objectPath(prefix),
	}
	query.SetAttrSelection([]string{"Name"})
	it := s.client.Bucket(s.bucket).Objects(ctx, query)
	var keys []string
	for {
		obj, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "listing objects")
		}
		key := strings.TrimPrefix(strings.TrimPrefix(obj.Name, s.prefix), "/")
		if underPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Move copies the value at src to dst, then removes src.
func (s *GCS) Move(ctx context.Context, src, dst string) error {
	bucket := s.client.Bucket(s.bucket)
	srcObj := bucket.Object(s.objectPath(src))
	dstObj := bucket.Object(s.objectPath(dst))
	if _, err := dstObj.CopierFrom(srcObj).Run(ctx); err != nil {
		if err == gcs.ErrObjectNotExist {
			err = stderrors.Join(err, ErrNotExists)
		}
		return errors.Wrapf(err, "copying %s", src)
	}
	if err := srcObj.Delete(ctx); err != nil {
		return errors.Wrapf(err, "removing %s", src)
	}
	return nil
}

// Delete removes the value at key.
func (s *GCS) Delete(ctx context.Context, key string) error {
	if err := s.client.Bucket(s.bucket).Object(s.objectPath(key)).Delete(ctx); err != nil {
		if err == gcs.ErrObjectNotExist {
			err = stderrors.Join(err, ErrNotExists)
		}
		return errors.Wrapf(err, "deleting %s", key)
	}
	return nil
}
