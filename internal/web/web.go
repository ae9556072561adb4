// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package web implements the HTTP surface of the package index: uploads,
// downloads, index listings, and legacy XML-RPC search.
package web

import (
	"log"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/pypindex/internal/cache"
	"github.com/google/pypindex/pkg/archive"
	"github.com/google/pypindex/pkg/journal"
	"github.com/google/pypindex/pkg/pypi"
	"github.com/google/pypindex/pkg/storage"
	"github.com/pkg/errors"
)

// Handler serves the package index.
type Handler struct {
	// Store holds the published distributions.
	Store storage.Store
	// Journal records finalized uploads. Optional.
	Journal journal.Writer
	// Staging returns a scratch store for one upload plus its cleanup.
	Staging func() (storage.Store, func(), error)

	meta cache.Coalescing[string, pypi.PackageInfo]
}

// NewHandler creates a Handler over the given store and journal. The journal
// may be nil.
func NewHandler(store storage.Store, j journal.Writer) *Handler {
	return &Handler{Store: store, Journal: j, Staging: tempStaging}
}

func tempStaging() (storage.Store, func(), error) {
	dir, err := os.MkdirTemp("", "pypindex-upload-")
	if err != nil {
		return nil, nil, errors.Wrap(err, "creating staging dir")
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("error: %+v", errors.Wrap(err, "removing staging dir"))
		}
	}
	return storage.NewFS(osfs.New(dir)), cleanup, nil
}

var _ http.Handler = &Handler{}

type herror struct {
	error
	status int
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if err := h.handleRequest(rw, r); err != nil {
		status := http.StatusInternalServerError
		if he, ok := err.(herror); ok {
			status = he.status
		}
		if status/100 == 3 {
			http.Redirect(rw, r, err.Error(), status)
			return
		}
		log.Printf("error: %+v  [%s]", err, r.URL.String())
		if status/100 == 4 { // Only surface messages for 4XX errors
			http.Error(rw, err.Error(), status)
		} else {
			http.Error(rw, http.StatusText(status), status)
		}
	}
}

func (h *Handler) handleRequest(rw http.ResponseWriter, r *http.Request) error {
	key := strings.Trim(path.Clean(r.URL.Path), "/")
	switch r.Method {
	case http.MethodGet:
		if archive.FormatFor(path.Base(key)) != archive.UnknownFormat {
			return h.handleDownload(rw, r, key)
		}
		return h.handleIndex(rw, r, key)
	case http.MethodPost:
		if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil {
			if mediaType == "text/xml" || mediaType == "application/xml" {
				return h.handleSearch(rw, r)
			}
		}
		return h.handleUpload(rw, r, key)
	default:
		return herror{errors.Errorf("unsupported method: %s", r.Method), http.StatusMethodNotAllowed}
	}
}
