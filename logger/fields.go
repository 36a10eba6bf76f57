package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for structured logging.
// Use these constants instead of raw strings to keep keys consistent.
const (
	// Identity
	FieldRunID     = "run_id"
	FieldComponent = "component"

	// Library
	FieldClass    = "class"
	FieldCategory = "category"
	FieldSource   = "source"
	FieldRevision = "revision"
	FieldVersion  = "version"

	// Files and paths
	FieldFile = "file"
	FieldLine = "line"
	FieldPath = "path"
	FieldDir  = "dir"

	// Counts and sizes
	FieldCount    = "count"
	FieldOldCount = "old_count"
	FieldNewCount = "new_count"
	FieldSize     = "size"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError  = "error"
	FieldReason = "reason"

	// Network
	FieldAddress = "address"
)

type contextKey string

const runIDKey contextKey = "logger_run_id"

// WithRunID adds a generation run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext returns the run ID stored by WithRunID, or "".
func RunIDFromContext(ctx context.Context) string {
	runID, _ := ctx.Value(runIDKey).(string)
	return runID
}

// LoggerFromContext returns a logger carrying the run ID from ctx, if any.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	if runID := RunIDFromContext(ctx); runID != "" {
		return Logger.With(FieldRunID, runID)
	}
	return Logger
}

// ComponentLogger returns a named logger for a specific component.
//
//	type Updater struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func NewUpdater() *Updater {
//	    return &Updater{logger: logger.ComponentLogger("nav")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
