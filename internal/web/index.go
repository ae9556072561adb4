// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/google/pypindex/pkg/pypi"
	"github.com/google/pypindex/pkg/storage"
	"github.com/pkg/errors"
)

// handleIndex redirects non-normalized paths and renders the link page for
// everything stored under the requested prefix.
func (h *Handler) handleIndex(rw http.ResponseWriter, r *http.Request, key string) error {
	if normalized := normalizeKey(key); normalized != key {
		return herror{errors.New("/" + normalized), http.StatusMovedPermanently}
	}
	keys, err := h.Store.List(r.Context(), key)
	if err != nil {
		return errors.Wrapf(err, "listing %s", key)
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<body>\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "<a href=%q>%s</a><br/>\n", "/"+k, path.Base(k))
	}
	b.WriteString("</body>\n</html>")
	page := b.String()
	rw.Header().Set("Content-Type", "text/html")
	rw.Header().Set("Content-Length", fmt.Sprintf("%d", len(page)))
	if _, err := io.WriteString(rw, page); err != nil {
		log.Printf("error: %+v", errors.Wrap(err, "writing index page"))
	}
	return nil
}

// handleDownload streams the artifact stored at key.
func (h *Handler) handleDownload(rw http.ResponseWriter, r *http.Request, key string) error {
	value, err := h.Store.Value(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotExists) {
			return herror{err, http.StatusNotFound}
		}
		return errors.Wrapf(err, "reading %s", key)
	}
	defer value.Close()
	rw.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(rw, value); err != nil {
		log.Printf("error: %+v", errors.Wrapf(err, "transmitting %s", key))
	}
	return nil
}

// normalizeKey applies project name normalization to each path segment.
func normalizeKey(key string) string {
	if key == "" {
		return ""
	}
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = pypi.Normalize(s)
	}
	return strings.Join(segments, "/")
}
