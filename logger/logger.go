// Package logger holds the process-wide zap logger and the field names
// used across libref's structured logs.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is a no-op until Initialize runs, so packages can log from tests.
	Logger = zap.NewNop().Sugar()
	// JSONOutput records whether Initialize selected the JSON encoder.
	JSONOutput bool
)

// Initialize replaces the global logger. Output always goes to stderr;
// stdout carries command results (inspect, config, check diffs, MCP).
func Initialize(jsonOutput bool, verbosity int) error {
	level := zap.NewAtomicLevelAt(VerbosityToLevel(verbosity))

	var core zapcore.Core
	if jsonOutput {
		enc := zap.NewProductionEncoderConfig()
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		core = zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(os.Stderr), level)
	} else {
		core = zapcore.NewCore(newMinimalEncoder(), zapcore.Lock(os.Stderr), level)
	}

	JSONOutput = jsonOutput
	Logger = zap.New(core).Sugar()
	return nil
}

// Cleanup flushes buffered entries.
func Cleanup() {
	_ = Logger.Sync()
}
