package testsupport

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// Pattern returns size bytes of a repeating, non-trivial pattern. Large
// patterns make stored entries cross reader buffer boundaries.
func Pattern(size int) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte(i*31 + i/251)
	}
	return buf
}

// WriteManifest writes body to the config's manifest path.
func WriteManifest(t testing.TB, path, body string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write manifest %s: %v", path, err)
	}
}

// ZipEntry describes one entry of a fixture archive. Names ending in "/"
// become directories. Stored entries skip compression.
type ZipEntry struct {
	Name   string
	Body   []byte
	Stored bool
}

// Entry is shorthand for a deflated entry with a string body.
func Entry(name, body string) ZipEntry {
	return ZipEntry{Name: name, Body: []byte(body)}
}

// WriteZip writes a zip archive to path using archive/zip, so every file
// entry carries a trailing data descriptor.
func WriteZip(t testing.TB, path string, entries ...ZipEntry) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, entry := range entries {
		method := zip.Deflate
		if entry.Stored {
			method = zip.Store
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: entry.Name, Method: method})
		if err != nil {
			t.Fatalf("zip entry %s: %v", entry.Name, err)
		}
		if len(entry.Body) == 0 {
			continue
		}
		if _, err := w.Write(entry.Body); err != nil {
			t.Fatalf("zip write %s: %v", entry.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close %s: %v", path, err)
	}
}
