// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
)

// Firestore stores journal entries in a Firestore collection, one document
// per storage key.
type Firestore struct {
	client     *firestore.Client
	collection string
}

var _ Client = &Firestore{}

// NewFirestore creates a journal client for the given project and collection.
func NewFirestore(ctx context.Context, project, collection string) (*Firestore, error) {
	if project == "" {
		return nil, errors.New("empty project provided")
	}
	client, err := firestore.NewClient(ctx, project)
	if err != nil {
		return nil, errors.Wrap(err, "creating firestore client")
	}
	return &Firestore{client: client, collection: collection}, nil
}

// Record writes the entry, replacing any prior entry for the same key.
func (c *Firestore) Record(ctx context.Context, e Entry) error {
	_, err := c.client.Collection(c.collection).Doc(sanitize(e.Key)).Set(ctx, e)
	return errors.Wrap(err, "writing journal entry")
}

// Recent returns entries ordered most recent first.
func (c *Firestore) Recent(ctx context.Context, project string, n int) ([]Entry, error) {
	q := c.client.Collection(c.collection).Query
	if project != "" {
		q = q.Where("project", "==", project)
	}
	q = q.OrderBy("time", firestore.Desc)
	if n > 0 {
		q = q.Limit(n)
	}
	iter := q.Documents(ctx)
	var entries []Entry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "listing journal entries")
		}
		var e Entry
		if err := doc.DataTo(&e); err != nil {
			return nil, errors.Wrap(err, "decoding journal entry")
		}
		entries = append(entries, e)
	}
	return entries, nil
}
