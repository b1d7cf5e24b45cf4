package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"vgmimport/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose paths all live in a per-test temp
// directory. The archive directory is created so tests can drop fixtures in
// it; the rest is left to EnsureDirectories.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ArchiveDir = filepath.Join(base, "vgmrips")
	cfgVal.Paths.ManifestPath = filepath.Join(cfgVal.Paths.ArchiveDir, "games.json")
	cfgVal.Paths.UploadsDir = filepath.Join(base, "uploads")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := os.MkdirAll(builder.cfg.Paths.ArchiveDir, 0o755); err != nil {
		t.Fatalf("mkdir archive dir: %v", err)
	}
	return builder.cfg
}

// WithMaxGames limits how many manifest entries an import processes.
func WithMaxGames(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Import.MaxGames = n
	}
}

// WithPersistWorkers overrides the bound on concurrent track saves.
func WithPersistWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Import.PersistWorkers = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
