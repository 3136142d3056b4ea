package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"rankdelta/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug, "INFO": slog.LevelInfo, "warn": slog.LevelWarn,
		"warning": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo, "loud": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_FileLogging(t *testing.T) {
	dir := t.TempDir()
	logger, closer, err := New(config.LogConfig{Level: "info", Dir: dir, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1}, "test.log")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello")
	closer.Close()

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("Expected log file to have content")
	}
}

func TestNew_InvalidRotation(t *testing.T) {
	if _, _, err := New(config.LogConfig{Dir: t.TempDir()}, "x.log"); err == nil {
		t.Error("Expected error for zero rotation settings")
	}
}
