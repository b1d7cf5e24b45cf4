package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var syncFile = (*os.File).Sync

// WriteStream copies r into dst through a temp file in the same directory and
// renames it into place after an fsync, so dst either holds the whole stream or does not
// exist. When want is positive the byte count must match it. It returns the
// number of bytes written.
func WriteStream(dst string, r io.Reader, want int64) (int64, error) {
	return WriteStreamMode(dst, r, want, 0o644)
}

// WriteStreamMode is WriteStream with an explicit file mode for dst.
func WriteStreamMode(dst string, r io.Reader, want int64, mode os.FileMode) (int64, error) {
	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		return written, err
	}
	if want > 0 && written != want {
		return written, fmt.Errorf("write size mismatch: expected %d bytes, wrote %d bytes", want, written)
	}
	if err := tmp.Chmod(mode); err != nil {
		return written, err
	}
	if err := syncFile(tmp); err != nil {
		return written, err
	}
	if err := tmp.Close(); err != nil {
		return written, err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return written, err
	}
	committed = true
	return written, nil
}
