package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"vgmimport/internal/logging"
	"vgmimport/internal/trackname"
)

// Track is a track entry handed to a TrackFunc. Body must be read before the
// callback returns; whatever is left unread is discarded.
type Track struct {
	Path    string
	Ordinal string
	Name    string
	// Size is the uncompressed size from the local header, or 0 when the
	// entry only records it in a trailing data descriptor.
	Size uint64
	Body io.Reader
}

// TrackFunc receives each track entry in archive order.
type TrackFunc func(ctx context.Context, track Track) error

// Stats summarizes one extraction.
type Stats struct {
	Entries int
	Tracks  int
	Drained int
	Bytes   int64
}

// Progress reports how far into an archive extraction has read.
type Progress struct {
	Archive string
	Read    int64
	Total   int64
	Entries int
}

// Percent returns the read percentage, or -1 when the total is unknown.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return -1
	}
	return float64(p.Read) / float64(p.Total) * 100
}

// Extractor streams archives and routes their entries.
type Extractor struct {
	classifier *trackname.Classifier
	logger     *slog.Logger
	progress   func(Progress)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for per-entry debug lines.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProgress registers a callback invoked after every entry.
func WithProgress(fn func(Progress)) Option {
	return func(e *Extractor) { e.progress = fn }
}

// NewExtractor builds an Extractor that classifies entries with classifier.
func NewExtractor(classifier *trackname.Classifier, opts ...Option) *Extractor {
	if classifier == nil {
		classifier = trackname.New("")
	}
	e := &Extractor{classifier: classifier, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract streams the archive at path, calling onTrack for every track entry
// in storage order and draining the rest. A missing, unreadable, or corrupt
// archive is an *OpenError. A track entry with a malformed name aborts with
// the classifier's *trackname.PatternError. Errors returned by onTrack are
// passed through unless they were caused by reading the archive.
func (e *Extractor) Extract(ctx context.Context, path, game string, onTrack TrackFunc) (Stats, error) {
	var stats Stats

	file, err := os.Open(path)
	if err != nil {
		return stats, &OpenError{Path: path, Err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return stats, &OpenError{Path: path, Err: err}
	}
	if info.IsDir() {
		return stats, &OpenError{Path: path, Err: errors.New("is a directory")}
	}

	zr := NewReader(file)
	report := func() {
		if e.progress != nil {
			e.progress(Progress{Archive: path, Read: zr.Offset(), Total: info.Size(), Entries: stats.Entries})
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		hdr, err := zr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, &OpenError{Path: path, Err: err}
		}
		stats.Entries++

		match, ok, err := e.classifier.Classify(hdr.Name, game)
		if err != nil {
			return stats, err
		}
		if !ok {
			stats.Drained++
			e.logger.Debug("draining entry",
				logging.String("entry", hdr.Name),
				logging.Bool("directory", hdr.IsDir()),
			)
			report()
			continue
		}

		body := &trackBody{r: zr}
		track := Track{
			Path:    hdr.Name,
			Ordinal: match.Ordinal,
			Name:    match.Name,
			Body:    body,
		}
		if !hdr.hasDataDescriptor() {
			track.Size = hdr.UncompressedSize
		}
		if err := onTrack(ctx, track); err != nil {
			if body.err != nil {
				return stats, &OpenError{Path: path, Err: body.err}
			}
			return stats, fmt.Errorf("track %s: %w", hdr.Name, err)
		}
		stats.Tracks++
		report()
	}

	stats.Bytes = zr.Offset()
	report()
	return stats, nil
}

// trackBody remembers read failures so they can be reported as archive
// errors rather than as errors of the consumer.
type trackBody struct {
	r   io.Reader
	err error
}

func (b *trackBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF && b.err == nil {
		b.err = err
	}
	return n, err
}
