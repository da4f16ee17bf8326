package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level, format string
		want          zapcore.Level
	}{
		{"debug", "json", zapcore.DebugLevel},
		{"info", "text", zapcore.InfoLevel},
		{"warn", "json", zapcore.WarnLevel},
		{"error", "json", zapcore.ErrorLevel},
		{"", "", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger, err := New(tt.level, tt.format)
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if !logger.Core().Enabled(tt.want) {
				t.Errorf("level %s not enabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
				t.Errorf("level %s should be disabled", tt.want-1)
			}
		})
	}
}
