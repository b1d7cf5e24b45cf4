package archive

import (
	"errors"
	"fmt"
)

var (
	ErrFormat    = errors.New("zip: not a valid zip stream")
	ErrAlgorithm = errors.New("zip: unsupported compression method")
	ErrChecksum  = errors.New("zip: checksum error")
	ErrEncrypted = errors.New("zip: encrypted entries are not supported")
)

// OpenError reports an archive that is missing, unreadable, or corrupt.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open archive %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ErrorKind classifies the error for run logs.
func (e *OpenError) ErrorKind() string { return "archive_open" }
