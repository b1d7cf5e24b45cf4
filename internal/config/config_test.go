package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vgmimport/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "vgmimport")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if !filepath.IsAbs(cfg.Paths.ManifestPath) {
		t.Fatalf("expected absolute manifest path, got %q", cfg.Paths.ManifestPath)
	}
	if filepath.Base(cfg.Paths.ManifestPath) != "games.json" {
		t.Fatalf("unexpected manifest path: %q", cfg.Paths.ManifestPath)
	}
	if cfg.Import.MaxGames != 0 {
		t.Fatalf("expected max_games to default to 0, got %d", cfg.Import.MaxGames)
	}
	if cfg.Import.TrackExtension != ".vgz" || cfg.Import.StoredExtension != ".vgz" {
		t.Fatalf("unexpected extensions: %q %q", cfg.Import.TrackExtension, cfg.Import.StoredExtension)
	}
	if cfg.CatalogPath() != filepath.Join(wantData, "catalog.db") {
		t.Fatalf("unexpected catalog path: %q", cfg.CatalogPath())
	}
	if cfg.LockPath() != filepath.Join(wantData, "import.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.UploadsDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if _, err := os.Stat(cfg.Paths.ArchiveDir); !os.IsNotExist(err) {
		t.Fatalf("archive dir must not be created, stat err = %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "vgmimport.toml")

	type payload struct {
		Paths struct {
			ManifestPath string `toml:"manifest_path"`
			ArchiveDir   string `toml:"archive_dir"`
		} `toml:"paths"`
		Import struct {
			MaxGames       int `toml:"max_games"`
			PersistWorkers int `toml:"persist_workers"`
		} `toml:"import"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.ManifestPath = filepath.Join(tempDir, "export", "games.json")
	custom.Paths.ArchiveDir = filepath.Join(tempDir, "export")
	custom.Import.MaxGames = 1
	custom.Import.PersistWorkers = 2
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.ManifestPath != custom.Paths.ManifestPath {
		t.Fatalf("expected manifest path from file, got %q", cfg.Paths.ManifestPath)
	}
	if cfg.ArchivePath("sonic.zip") != filepath.Join(tempDir, "export", "sonic.zip") {
		t.Fatalf("unexpected archive path: %q", cfg.ArchivePath("sonic.zip"))
	}
	if cfg.Import.MaxGames != 1 {
		t.Fatalf("expected max_games 1, got %d", cfg.Import.MaxGames)
	}
	if cfg.Import.PersistWorkers != 2 {
		t.Fatalf("expected persist_workers 2, got %d", cfg.Import.PersistWorkers)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected log format to be lowercased, got %q", cfg.Logging.Format)
	}
}

func TestEnvOverridesManifestAndDataDir(t *testing.T) {
	tempDir := t.TempDir()
	manifest := filepath.Join(tempDir, "other.json")
	dataDir := filepath.Join(tempDir, "data")
	t.Setenv("VGMIMPORT_MANIFEST", manifest)
	t.Setenv("VGMIMPORT_DATA_DIR", dataDir)

	cfg, _, _, err := config.Load(filepath.Join(tempDir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.ManifestPath != manifest {
		t.Fatalf("expected manifest from env, got %q", cfg.Paths.ManifestPath)
	}
	if cfg.Paths.DataDir != dataDir {
		t.Fatalf("expected data dir from env, got %q", cfg.Paths.DataDir)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"negative max games", "[import]\nmax_games = -1\n", "import.max_games"},
		{"extension without dot", "[import]\ntrack_extension = \"vgz\"\n", "import.track_extension"},
		{"stored extension with separator", "[import]\nstored_extension = \"./x\"\n", "import.stored_extension"},
		{"negative workers", "[import]\npersist_workers = -3\n", "import.persist_workers"},
		{"bad log format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"bad log level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"unknown key", "[import]\nmystery = 1\n", "parse config"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "vgmimport.toml")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantMsg, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Import.PersistWorkers != 4 {
		t.Fatalf("unexpected persist workers from sample: %d", cfg.Import.PersistWorkers)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := config.ExpandPath("~/uploads")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "uploads") {
		t.Fatalf("unexpected expansion: %q", got)
	}
	empty, err := config.ExpandPath("")
	if err != nil || empty != "" {
		t.Fatalf("expected empty passthrough, got %q, %v", empty, err)
	}
}
