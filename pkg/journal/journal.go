// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package journal records finalized uploads for later inspection.
package journal

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/pkg/errors"
)

// Entry describes one finalized upload.
type Entry struct {
	Project  string    `json:"project" firestore:"project,omitempty"`
	Filename string    `json:"filename" firestore:"filename,omitempty"`
	Version  string    `json:"version" firestore:"version,omitempty"`
	Key      string    `json:"key" firestore:"key,omitempty"`
	Time     time.Time `json:"time" firestore:"time,omitempty"`
}

// Writer records upload entries.
type Writer interface {
	Record(ctx context.Context, e Entry) error
}

// Reader queries recorded entries.
type Reader interface {
	// Recent returns entries ordered most recent first, optionally limited
	// to one project. n <= 0 means no limit.
	Recent(ctx context.Context, project string, n int) ([]Entry, error)
}

// Client reads and writes a journal.
type Client interface {
	Writer
	Reader
}

const defaultCollection = "uploads"

// FromURL constructs the Client a journal URL names:
// firestore://project[/collection] or file:///path.
func FromURL(ctx context.Context, journalURL string) (Client, error) {
	u, err := url.Parse(journalURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing journal URL")
	}
	switch u.Scheme {
	case "firestore":
		collection := strings.Trim(u.Path, "/")
		if collection == "" {
			collection = defaultCollection
		}
		return NewFirestore(ctx, u.Host, collection)
	case "file":
		if u.Path == "" {
			return nil, errors.New("file journal URL requires a path")
		}
		return NewFilesystem(osfs.New(u.Path)), nil
	default:
		return nil, errors.Errorf("unsupported scheme: '%s'", u.Scheme)
	}
}

func sanitize(key string) string {
	return strings.ReplaceAll(key, "/", "!")
}
