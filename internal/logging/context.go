package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID correlates every line written by one import run.
	FieldRunID = "run_id"
	// FieldSystem is the system (console) currently being imported.
	FieldSystem = "system"
	// FieldGame is the game currently being imported.
	FieldGame = "game"
	// FieldArchive is the archive file name of the current game.
	FieldArchive = "archive"
	// FieldErrorKind carries the classified kind of a failure.
	FieldErrorKind = "error_kind"
)

type contextKey int

const (
	runIDKey contextKey = iota
	systemKey
	gameKey
	archiveKey
)

// WithRunID returns a derived context carrying the import run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// WithSystem returns a derived context carrying the system name.
func WithSystem(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, systemKey, name)
}

// WithGame returns a derived context carrying the game name and archive.
func WithGame(ctx context.Context, name, archive string) context.Context {
	ctx = context.WithValue(ctx, gameKey, name)
	return context.WithValue(ctx, archiveKey, archive)
}

// RunIDFromContext returns the run identifier stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringFromContext(ctx, runIDKey)
}

func stringFromContext(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(key).(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := stringFromContext(ctx, runIDKey); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if system, ok := stringFromContext(ctx, systemKey); ok {
		fields = append(fields, slog.String(FieldSystem, system))
	}
	if game, ok := stringFromContext(ctx, gameKey); ok {
		fields = append(fields, slog.String(FieldGame, game))
	}
	if archive, ok := stringFromContext(ctx, archiveKey); ok {
		fields = append(fields, slog.String(FieldArchive, archive))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		args = append(args, field)
	}
	return logger.With(args...)
}
