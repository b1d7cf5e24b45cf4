package importer

import (
	"context"
	"errors"
)

// ErrImportRunning is returned when another process holds the import lock.
var ErrImportRunning = errors.New("another import is already running")

// ErrorClassifier is implemented by errors that name their own kind.
type ErrorClassifier interface {
	ErrorKind() string
}

// ErrorKind returns the classified kind of err for logs and summaries. The
// manifest, archive, and track-name errors report their own kinds.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	switch {
	case errors.Is(err, ErrImportRunning):
		return "import_running"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
