package telemetry

import (
	"log/slog"
	"testing"
)

func TestSetupLoggerLevels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			SetupLogger("text", tt.level)
			if !slog.Default().Enabled(nil, tt.want) {
				t.Errorf("level %s should be enabled after SetupLogger(%q)", tt.want, tt.level)
			}
			if tt.want > slog.LevelDebug && slog.Default().Enabled(nil, tt.want-4) {
				t.Errorf("level below %s should be disabled after SetupLogger(%q)", tt.want, tt.level)
			}
		})
	}
}

func TestSetupLoggerFormats(t *testing.T) {
	// Both formats must install a usable default logger without panicking.
	SetupLogger("json", "info")
	SetupLogger("text", "info")
	slog.Info("smoke")
}
