package fileutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteStream(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "track.vgz")

	n, err := WriteStream(dst, strings.NewReader("hello world"), 11)
	if err != nil {
		t.Fatal(err)
	}
	if n != 11 {
		t.Fatalf("unexpected byte count: %d", n)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Fatalf("content mismatch: got %q", got)
	}
	assertOnlyFiles(t, dir, "track.vgz")
}

func TestWriteStreamUnknownSize(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "empty.vgz")

	n, err := WriteStream(dst, strings.NewReader(""), 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("unexpected byte count: %d", n)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("expected empty file: %v", err)
	}
}

func TestWriteStreamMode(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "dst.bin")

	if _, err := WriteStreamMode(dst, strings.NewReader("data"), 4, 0o600); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("unexpected mode: %o", info.Mode().Perm())
	}
}

func TestWriteStreamSizeMismatchLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "track.vgz")

	_, err := WriteStream(dst, strings.NewReader("short"), 100)
	if err == nil || !strings.Contains(err.Error(), "size mismatch") {
		t.Fatalf("expected size mismatch, got %v", err)
	}
	assertOnlyFiles(t, dir)
}

func TestWriteStreamReadErrorLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "track.vgz")
	boom := errors.New("stream broke")

	_, err := WriteStream(dst, io.MultiReader(strings.NewReader("partial"), errReader{boom}), 0)
	if !errors.Is(err, boom) {
		t.Fatalf("expected stream error, got %v", err)
	}
	assertOnlyFiles(t, dir)
}

func TestWriteStreamSyncsBeforeRename(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "track.vgz")

	var synced []string
	prev := syncFile
	t.Cleanup(func() { syncFile = prev })
	syncFile = func(f *os.File) error {
		if _, err := os.Stat(dst); !os.IsNotExist(err) {
			t.Fatalf("destination visible before sync, stat err = %v", err)
		}
		synced = append(synced, f.Name())
		return f.Sync()
	}

	if _, err := WriteStream(dst, strings.NewReader("hello"), 5); err != nil {
		t.Fatalf("WriteStream failed: %v", err)
	}
	if len(synced) != 1 || filepath.Dir(synced[0]) != dir {
		t.Fatalf("expected one sync of a temp file in %s, got %v", dir, synced)
	}
}

func TestWriteStreamSyncErrorLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "track.vgz")
	boom := errors.New("sync failed")

	prev := syncFile
	t.Cleanup(func() { syncFile = prev })
	syncFile = func(*os.File) error { return boom }

	if _, err := WriteStream(dst, strings.NewReader("hello"), 5); !errors.Is(err, boom) {
		t.Fatalf("expected sync error, got %v", err)
	}
	assertOnlyFiles(t, dir)
}

func TestWriteStreamMissingDirectory(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "missing", "track.vgz")
	if _, err := WriteStream(dst, strings.NewReader("x"), 1); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func assertOnlyFiles(t *testing.T, dir string, want ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, entry := range entries {
		got = append(got, entry.Name())
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected directory contents: got %v want %v", got, want)
	}
}
