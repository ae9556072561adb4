// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package pypi

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"bytes"
	stderrors "errors"
	"io"
	"path"
	"strings"

	"github.com/google/pypindex/pkg/archive"
	"github.com/pkg/errors"
)

// ErrNoMetadata indicates a distribution carried no readable metadata entry.
var ErrNoMetadata = errors.New("no package metadata found")

// ReadDistribution extracts PackageInfo from a distribution archive. The
// container format is implied by filename: wheels and zips carry a
// */METADATA entry, tar-family sdists a */PKG-INFO entry.
func ReadDistribution(filename string, r io.Reader) (PackageInfo, error) {
	var raw []byte
	switch f := archive.FormatFor(filename); f {
	case archive.ZipFormat:
		ra, size, err := archive.ToZipCompatibleReader(r)
		if err != nil {
			return PackageInfo{}, errors.Wrap(err, "converting reader")
		}
		zr, err := zip.NewReader(ra, size)
		if err != nil {
			return PackageInfo{}, errors.Wrapf(stderrors.Join(err, ErrNoMetadata), "opening zip %s", filename)
		}
		raw, err = zipEntryMatching(zr, "*/METADATA")
		if err != nil {
			return PackageInfo{}, errors.Wrapf(err, "searching %s", filename)
		}
	case archive.TarFormat, archive.TarGzFormat, archive.TarBz2Format, archive.TarZFormat:
		tr, err := archive.NewTarReader(f, r)
		if err != nil {
			return PackageInfo{}, errors.Wrapf(stderrors.Join(err, ErrNoMetadata), "opening %s", filename)
		}
		raw, err = tarEntryMatching(tr, "*/PKG-INFO")
		if err != nil {
			return PackageInfo{}, errors.Wrapf(err, "searching %s", filename)
		}
	default:
		return PackageInfo{}, errors.Wrapf(ErrNoMetadata, "unrecognized archive %q", filename)
	}
	info, err := ParseMetadata(bytes.NewReader(raw))
	if err != nil {
		return PackageInfo{}, errors.Wrap(err, "parsing metadata")
	}
	if info.Name == "" || info.Version == "" {
		return PackageInfo{}, errors.Wrap(ErrNoMetadata, "metadata missing name or version")
	}
	return info, nil
}

// ParseMetadata reads the email-header-style metadata block from r. The
// first colon on a line delimits key from value and the block ends at the
// first blank line. Lines without a colon are skipped.
func ParseMetadata(r io.Reader) (PackageInfo, error) {
	var info PackageInfo
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		line := strings.TrimRight(s.Text(), "\r")
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Name":
			info.Name = value
		case "Version":
			info.Version = value
		case "Summary":
			info.Summary = value
		}
	}
	if err := s.Err(); err != nil {
		return PackageInfo{}, errors.Wrap(err, "scanning metadata")
	}
	return info, nil
}

func zipEntryMatching(zr *zip.Reader, pattern string) ([]byte, error) {
	for _, f := range zr.File {
		if ok, _ := path.Match(pattern, f.Name); !ok {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "opening entry %s", f.Name)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, errors.Wrapf(ErrNoMetadata, "no entry matching %s", pattern)
}

func tarEntryMatching(tr *tar.Reader, pattern string) ([]byte, error) {
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stderrors.Join(errors.Wrap(err, "reading tar"), ErrNoMetadata)
		}
		if ok, _ := path.Match(pattern, hdr.Name); ok {
			return io.ReadAll(tr)
		}
	}
	return nil, errors.Wrapf(ErrNoMetadata, "no entry matching %s", pattern)
}
