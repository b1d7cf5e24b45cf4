package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vgmimport/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir, ReadWrite)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "read/write ok") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"), ReadOnly)
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f, ReadOnly)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckWritableDirectory_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "uploads")
	result := CheckWritableDirectory("Uploads", path)
	if !result.Passed {
		t.Fatalf("expected creatable directory to pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckManifest(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "games.json")
	testsupport.WriteManifest(t, good, `{"Sega Genesis": {"Sonic": "sonic.zip", "Columns": "columns.zip"}}`)
	bad := filepath.Join(dir, "bad.json")
	testsupport.WriteManifest(t, bad, `{"Sega Genesis": [1]}`)

	if result := CheckManifest("Manifest", good); !result.Passed || !strings.Contains(result.Detail, "2 entries") {
		t.Fatalf("unexpected result for valid manifest: %+v", result)
	}
	if result := CheckManifest("Manifest", bad); result.Passed {
		t.Fatalf("expected malformed manifest to fail: %+v", result)
	}
	if result := CheckManifest("Manifest", filepath.Join(dir, "missing.json")); result.Passed || !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected result for missing manifest: %+v", result)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteManifest(t, cfg.Paths.ManifestPath, `{"Sega Genesis": {"Sonic": "sonic.zip", "Columns": "columns.zip"}}`)
	testsupport.WriteZip(t, cfg.ArchivePath("sonic.zip"), testsupport.Entry("01 Green Hill Zone.vgz", "x"))

	results := RunAll(cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d: %+v", len(results), results)
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Archives" {
		t.Fatalf("expected only the archive check to fail, got %+v", failed)
	}
	if !strings.Contains(failed[0].Detail, "1 of 2 present (missing columns.zip)") {
		t.Fatalf("unexpected archive detail: %s", failed[0].Detail)
	}

	testsupport.WriteZip(t, cfg.ArchivePath("columns.zip"))
	if failed := Failed(RunAll(cfg)); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}
}

func TestRunAllWithoutManifestSkipsArchives(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := RunAll(cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d: %+v", len(results), results)
	}
	if results[0].Passed {
		t.Fatal("expected missing manifest to fail")
	}
	if RunAll(nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunDirectoriesReportsMissingArchiveDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.ArchiveDir = filepath.Join(testsupport.BaseDir(cfg), "missing")

	failed := Failed(RunDirectories(cfg))
	if len(failed) != 1 || failed[0].Name != "Archive directory" {
		t.Fatalf("expected archive directory failure, got %+v", failed)
	}
}
