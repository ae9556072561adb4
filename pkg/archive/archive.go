// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package archive provides format detection, decompression, and entry
// construction for Python distribution archives.
package archive

import (
	"archive/tar"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Format represents the archive types of distribution files.
type Format int

// Format constants specify the container and compression of a file.
const (
	UnknownFormat Format = iota
	TarFormat
	TarGzFormat
	TarBz2Format
	TarZFormat
	ZipFormat
)

// FormatFor returns the Format implied by a distribution filename.
//
// Wheels are zip containers so .whl and .zip resolve identically. The
// compressed tar suffixes are matched before bare .tar.
func FormatFor(filename string) Format {
	switch {
	case strings.HasSuffix(filename, ".whl"), strings.HasSuffix(filename, ".zip"):
		return ZipFormat
	case strings.HasSuffix(filename, ".tar.gz"):
		return TarGzFormat
	case strings.HasSuffix(filename, ".tar.bz2"):
		return TarBz2Format
	case strings.HasSuffix(filename, ".tar.Z"):
		return TarZFormat
	case strings.HasSuffix(filename, ".tar"):
		return TarFormat
	default:
		return UnknownFormat
	}
}

// NewTarReader returns a tar reader over src applying the decompression
// implied by the tar-family format f.
func NewTarReader(f Format, src io.Reader) (*tar.Reader, error) {
	switch f {
	case TarFormat:
		return tar.NewReader(src), nil
	case TarGzFormat:
		gzr, err := gzip.NewReader(src)
		if err != nil {
			return nil, errors.Wrap(err, "initializing gzip reader")
		}
		return tar.NewReader(gzr), nil
	case TarBz2Format:
		return tar.NewReader(bzip2.NewReader(src)), nil
	case TarZFormat:
		zr, err := NewCompressReader(src)
		if err != nil {
			return nil, errors.Wrap(err, "initializing compress reader")
		}
		return tar.NewReader(zr), nil
	default:
		return nil, errors.New("unsupported archive type")
	}
}

// ToZipCompatibleReader adapts an io.Reader into the io.ReaderAt and size
// expected by zip.NewReader, buffering the input only when the reader does
// not already support random access.
func ToZipCompatibleReader(r io.Reader) (io.ReaderAt, int64, error) {
	seeker, seekerOK := r.(io.Seeker)
	readerAt, readerOK := r.(io.ReaderAt)
	if seekerOK && readerOK {
		pos, err := seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, 0, errors.Wrap(err, "locating reader position")
		}
		size, err := seeker.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, errors.Wrap(err, "retrieving size")
		}
		if _, err := seeker.Seek(pos, io.SeekStart); err != nil {
			return nil, 0, errors.Wrap(err, "restoring reader position")
		}
		return readerAt, size, nil
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, errors.New("unsupported reader")
	}
	return bytes.NewReader(b), int64(len(b)), nil
}
