package archivetest

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/google/pypindex/pkg/archive"
)

// Tar builds an uncompressed tar from entries, sizing each header to its
// body.
func Tar(t *testing.T, entries ...archive.TarEntry) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	tw := tar.NewWriter(buf)
	for _, entry := range entries {
		entry.Header.Size = int64(len(entry.Body))
		if err := entry.WriteTo(tw); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// Tgz builds a gzip-compressed tar from entries.
func Tgz(t *testing.T, entries ...archive.TarEntry) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := gzip.NewWriter(buf)
	if _, err := zw.Write(Tar(t, entries...)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// TarZ builds a compress(1)-compressed tar, the .tar.Z sdist form.
func TarZ(t *testing.T, entries ...archive.TarEntry) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := archive.NewCompressWriter(buf)
	if _, err := zw.Write(Tar(t, entries...)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
