package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
		wantLevel  zapcore.Level
	}{
		{name: "console default", jsonOutput: false, verbosity: 0, wantLevel: zapcore.WarnLevel},
		{name: "console -v", jsonOutput: false, verbosity: 1, wantLevel: zapcore.InfoLevel},
		{name: "json -vv", jsonOutput: true, verbosity: 2, wantLevel: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Initialize(tt.jsonOutput, tt.verbosity); err != nil {
				t.Fatalf("Initialize() error = %v", err)
			}
			if JSONOutput != tt.jsonOutput {
				t.Errorf("JSONOutput = %v, want %v", JSONOutput, tt.jsonOutput)
			}
			if !Logger.Desugar().Core().Enabled(tt.wantLevel) {
				t.Errorf("level %v should be enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && Logger.Desugar().Core().Enabled(tt.wantLevel-1) {
				t.Errorf("level %v should be disabled", tt.wantLevel-1)
			}
			Cleanup()
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	cases := map[int]zapcore.Level{
		-1: zapcore.WarnLevel,
		0:  zapcore.WarnLevel,
		1:  zapcore.InfoLevel,
		2:  zapcore.DebugLevel,
		5:  zapcore.DebugLevel,
	}
	for verbosity, want := range cases {
		if got := VerbosityToLevel(verbosity); got != want {
			t.Errorf("VerbosityToLevel(%d) = %v, want %v", verbosity, got, want)
		}
	}
}
