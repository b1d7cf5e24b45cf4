package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"vgmimport/internal/config"
	"vgmimport/internal/manifest"
)

// Access selects the permissions a directory check requires.
type Access uint32

const (
	// ReadOnly requires the directory to be listable and readable.
	ReadOnly Access = unix.R_OK | unix.X_OK
	// ReadWrite additionally requires write access.
	ReadWrite Access = unix.R_OK | unix.W_OK | unix.X_OK
)

func (a Access) String() string {
	if a&unix.W_OK != 0 {
		return "read/write ok"
	}
	return "read ok"
}

// CheckManifest verifies that the manifest exists and parses.
func CheckManifest(name, path string) Result {
	m, err := manifest.Open(path)
	if err != nil {
		var readErr *manifest.ReadError
		if errors.As(err, &readErr) && os.IsNotExist(readErr.Err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d entries)", path, m.Len())}
}

// CheckDirectoryAccess verifies that the directory exists and grants access.
func CheckDirectoryAccess(name, path string, access Access) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, uint32(access)); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, access)}
}

// CheckWritableDirectory verifies a directory the importer writes to. A
// missing directory passes when its closest existing ancestor is writable,
// since the import creates it.
func CheckWritableDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path, ReadWrite)
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	ancestor := CheckDirectoryAccess(name, parent, ReadWrite)
	if !ancestor.Passed {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot be created under %s)", path, parent)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckArchives verifies that every archive named by the manifest is present
// in the archive directory.
func CheckArchives(name string, cfg *config.Config) Result {
	m, err := manifest.Open(cfg.Paths.ManifestPath)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("error: %v", err)}
	}
	var missing []string
	total := 0
	for entry, err := range m.Entries() {
		if err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("error: %v", err)}
		}
		total++
		info, err := os.Stat(cfg.ArchivePath(entry.Archive))
		if err != nil || info.IsDir() {
			missing = append(missing, entry.Archive)
		}
	}
	switch {
	case len(missing) == 0:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d of %d present", total, total)}
	case len(missing) == 1:
		return Result{Name: name, Detail: fmt.Sprintf("%d of %d present (missing %s)", total-1, total, missing[0])}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("%d of %d present (missing %s and %d more)", total-len(missing), total, missing[0], len(missing)-1)}
	}
}
