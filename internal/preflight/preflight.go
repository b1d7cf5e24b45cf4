package preflight

import (
	"vgmimport/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	manifestResult := CheckManifest("Manifest", cfg.Paths.ManifestPath)
	results := append([]Result{manifestResult}, RunDirectories(cfg)...)
	if manifestResult.Passed {
		results = append(results, CheckArchives("Archives", cfg))
	}
	return results
}

// RunDirectories checks only the directories an import reads from and
// writes to.
func RunDirectories(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess("Archive directory", cfg.Paths.ArchiveDir, ReadOnly),
		CheckWritableDirectory("Uploads directory", cfg.Paths.UploadsDir),
		CheckWritableDirectory("Data directory", cfg.Paths.DataDir),
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}
