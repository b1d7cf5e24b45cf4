package manifest

import (
	"errors"
	"fmt"
)

// ErrConsumed is yielded when Entries is iterated a second time.
var ErrConsumed = errors.New("manifest entries already consumed")

// ReadError reports a manifest file that could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read manifest %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ErrorKind classifies the error for run logs.
func (e *ReadError) ErrorKind() string { return "manifest_read" }

// ParseError reports malformed JSON or a document that does not have the
// system → game → archive shape. Offset is the byte offset where decoding
// stopped.
type ParseError struct {
	Path   string
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse manifest %s at offset %d: %v", e.Path, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrorKind classifies the error for run logs.
func (e *ParseError) ErrorKind() string { return "manifest_parse" }
