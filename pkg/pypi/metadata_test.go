// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package pypi

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/pypindex/pkg/archive"
	"github.com/google/pypindex/pkg/archive/archivetest"
	"github.com/pkg/errors"
)

const sampleMetadata = "Metadata-Version: 2.1\nName: myproject\nVersion: 0.1\nSummary: A sample project\n\nLong description.\n"

func sdistEntries(path string) []archive.TarEntry {
	return []archive.TarEntry{
		{Header: &tar.Header{Name: "myproject-0.1/setup.py", Mode: 0644}, Body: []byte("from setuptools import setup\n")},
		{Header: &tar.Header{Name: path, Mode: 0644}, Body: []byte(sampleMetadata)},
	}
}

func wheelEntries(path string) []archive.ZipEntry {
	return []archive.ZipEntry{
		{FileHeader: &zip.FileHeader{Name: "myproject/__init__.py"}, Body: []byte("")},
		{FileHeader: &zip.FileHeader{Name: path}, Body: []byte(sampleMetadata)},
	}
}

func TestReadDistribution(t *testing.T) {
	want := PackageInfo{Name: "myproject", Version: "0.1", Summary: "A sample project"}
	for _, tc := range []struct {
		test     string
		filename string
		build    func(t *testing.T) []byte
	}{
		{
			test:     "tar",
			filename: "myproject-0.1.tar",
			build: func(t *testing.T) []byte {
				return archivetest.Tar(t, sdistEntries("myproject-0.1/PKG-INFO")...)
			},
		},
		{
			test:     "tar_gz",
			filename: "myproject-0.1.tar.gz",
			build: func(t *testing.T) []byte {
				return archivetest.Tgz(t, sdistEntries("myproject-0.1/PKG-INFO")...)
			},
		},
		{
			test:     "tar_Z",
			filename: "myproject-0.1.tar.Z",
			build: func(t *testing.T) []byte {
				return archivetest.TarZ(t, sdistEntries("myproject-0.1/PKG-INFO")...)
			},
		},
		{
			test:     "wheel",
			filename: "myproject-0.1-py3-none-any.whl",
			build: func(t *testing.T) []byte {
				return archivetest.Zip(t, wheelEntries("myproject-0.1.dist-info/METADATA")...)
			},
		},
		{
			test:     "zip",
			filename: "myproject-0.1.zip",
			build: func(t *testing.T) []byte {
				return archivetest.Zip(t, wheelEntries("myproject-0.1.dist-info/METADATA")...)
			},
		},
	} {
		t.Run(tc.test, func(t *testing.T) {
			got, err := ReadDistribution(tc.filename, bytes.NewReader(tc.build(t)))
			if err != nil {
				t.Fatalf("ReadDistribution: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ReadDistribution mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadDistributionErrors(t *testing.T) {
	for _, tc := range []struct {
		test     string
		filename string
		build    func(t *testing.T) []byte
	}{
		{
			test:     "no_metadata_entry",
			filename: "myproject-0.1.tar.gz",
			build: func(t *testing.T) []byte {
				return archivetest.Tgz(t, archive.TarEntry{
					Header: &tar.Header{Name: "myproject-0.1/setup.py", Mode: 0644}, Body: []byte(""),
				})
			},
		},
		{
			test:     "metadata_at_root",
			filename: "myproject-0.1.tar.gz",
			build: func(t *testing.T) []byte {
				return archivetest.Tgz(t, archive.TarEntry{
					Header: &tar.Header{Name: "PKG-INFO", Mode: 0644}, Body: []byte(sampleMetadata),
				})
			},
		},
		{
			test:     "metadata_nested_too_deep",
			filename: "myproject-0.1-py3-none-any.whl",
			build: func(t *testing.T) []byte {
				return archivetest.Zip(t, wheelEntries("extra/myproject-0.1.dist-info/METADATA")...)
			},
		},
		{
			test:     "missing_version",
			filename: "myproject-0.1.tar.gz",
			build: func(t *testing.T) []byte {
				return archivetest.Tgz(t, archive.TarEntry{
					Header: &tar.Header{Name: "myproject-0.1/PKG-INFO", Mode: 0644}, Body: []byte("Name: myproject\n"),
				})
			},
		},
		{
			test:     "garbage_archive",
			filename: "myproject-0.1.tar.gz",
			build:    func(t *testing.T) []byte { return []byte("not a tarball") },
		},
		{
			test:     "unrecognized_suffix",
			filename: "myproject-0.1.rpm",
			build:    func(t *testing.T) []byte { return []byte("") },
		},
	} {
		t.Run(tc.test, func(t *testing.T) {
			_, err := ReadDistribution(tc.filename, bytes.NewReader(tc.build(t)))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrNoMetadata) {
				t.Errorf("error %v is not ErrNoMetadata", err)
			}
		})
	}
}

func TestParseMetadata(t *testing.T) {
	for _, tc := range []struct {
		test  string
		input string
		want  PackageInfo
	}{
		{
			test:  "basic",
			input: "Name: part\nVersion: 0.1\nSummary: Python part\n",
			want:  PackageInfo{Name: "part", Version: "0.1", Summary: "Python part"},
		},
		{
			test:  "stops_at_blank_line",
			input: "Name: part\nVersion: 0.1\n\nSummary: from the body\n",
			want:  PackageInfo{Name: "part", Version: "0.1"},
		},
		{
			test:  "first_colon_delimits",
			input: "Name: part\nVersion: 0.1\nSummary: includes: a colon\n",
			want:  PackageInfo{Name: "part", Version: "0.1", Summary: "includes: a colon"},
		},
		{
			test:  "crlf",
			input: "Name: part\r\nVersion: 0.1\r\n\r\nSummary: body\r\n",
			want:  PackageInfo{Name: "part", Version: "0.1"},
		},
		{
			test:  "lines_without_colon_skipped",
			input: "Name: part\ncontinuation text\nVersion: 0.1\n",
			want:  PackageInfo{Name: "part", Version: "0.1"},
		},
		{
			test:  "missing_summary",
			input: "Name: part\nVersion: 0.1\n",
			want:  PackageInfo{Name: "part", Version: "0.1"},
		},
		{
			test:  "empty",
			input: "",
			want:  PackageInfo{},
		},
	} {
		t.Run(tc.test, func(t *testing.T) {
			got, err := ParseMetadata(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("ParseMetadata: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseMetadata mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
