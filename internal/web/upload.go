// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/pypindex/pkg/journal"
	"github.com/google/pypindex/pkg/pypi"
	"github.com/google/pypindex/pkg/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// handleUpload ingests one distribution: the file is staged under a scratch
// key, copied into the store, validated against its own metadata, and only
// then moved to <prefix>/<normalized project>/<filename>.
func (h *Handler) handleUpload(rw http.ResponseWriter, r *http.Request, prefix string) error {
	ctx := r.Context()
	filename, file, err := filePart(r)
	if err != nil {
		return herror{err, http.StatusBadRequest}
	}
	defer file.Close()
	staging, cleanup, err := h.Staging()
	if err != nil {
		return errors.Wrap(err, "creating staging area")
	}
	defer cleanup()
	scratch := uuid.New().String()
	if err := staging.Save(ctx, scratch, file); err != nil {
		return herror{errors.Wrap(err, "staging upload"), http.StatusBadRequest}
	}
	if err := storage.Copy(ctx, h.Store, staging, scratch); err != nil {
		return herror{errors.Wrap(err, "copying upload to store"), http.StatusBadRequest}
	}
	staged, err := staging.Value(ctx, scratch)
	if err != nil {
		return herror{errors.Wrap(err, "reopening staged upload"), http.StatusBadRequest}
	}
	defer staged.Close()
	info, err := pypi.ReadDistribution(filename, staged)
	if err != nil || !pypi.ValidFilename(info, filename) {
		if err := h.Store.Delete(ctx, scratch); err != nil {
			log.Printf("error: %+v", errors.Wrapf(err, "deleting scratch object %s", scratch))
		}
		return herror{errors.New("Uploaded filename does not correspond to file metadata"), http.StatusBadRequest}
	}
	dest := path.Join(prefix, pypi.Normalize(info.Name), filename)
	if err := h.Store.Move(ctx, scratch, dest); err != nil {
		return herror{errors.Wrapf(err, "moving upload to %s", dest), http.StatusBadRequest}
	}
	h.meta.Del(dest)
	if h.Journal != nil {
		entry := journal.Entry{
			Project:  pypi.Normalize(info.Name),
			Filename: filename,
			Version:  info.Version,
			Key:      dest,
			Time:     time.Now().UTC(),
		}
		if err := h.Journal.Record(ctx, entry); err != nil {
			log.Printf("error: %+v", errors.Wrapf(err, "recording upload of %s", dest))
		}
	}
	rw.WriteHeader(http.StatusCreated)
	return nil
}

// filePart returns the name and contents of the first multipart part
// carrying a filename.
func filePart(r *http.Request) (string, io.ReadCloser, error) {
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return "", nil, errors.Wrap(err, "parsing content type")
	}
	if !strings.HasPrefix(mediaType, "multipart") {
		return "", nil, errors.Errorf("unsupported media type: %s", mediaType)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return "", nil, errors.New("no multipart boundary")
	}
	mr := multipart.NewReader(r.Body, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", nil, errors.New("no file in upload")
		}
		if err != nil {
			return "", nil, errors.Wrap(err, "reading multipart body")
		}
		if part.FileName() != "" {
			return part.FileName(), part, nil
		}
	}
}
