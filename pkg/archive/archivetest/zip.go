package archivetest

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/google/pypindex/pkg/archive"
)

// Zip builds a zip from entries.
func Zip(t *testing.T, entries ...archive.ZipEntry) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, entry := range entries {
		if err := entry.WriteTo(zw); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
