package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/chainflow-dev/chainflow/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   config.LogLevel
		want slog.Level
	}{
		{config.LogLevelDebug, slog.LevelDebug},
		{config.LogLevelInfo, slog.LevelInfo},
		{config.LogLevelWarn, slog.LevelWarn},
		{config.LogLevelError, slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewFromConfig_FileLogging(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Logging.File = "logs/run.log"

	logger, closer, err := NewFromConfig(cfg, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closer == nil {
		t.Fatal("expected a closer for file logging")
	}
	defer closer.Close()

	logger.Info("hello from test")

	data, err := os.ReadFile(filepath.Join(dir, "logs", "run.log"))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}

func TestNewFromConfig_NoFile(t *testing.T) {
	logger, closer, err := NewFromConfig(config.Default(), t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closer != nil {
		t.Error("no closer expected without a log file")
	}
	if logger == nil {
		t.Fatal("nil logger")
	}
}

func TestWithContext(t *testing.T) {
	base := NewForTest()
	logger := WithRun(WithStage(WithFlow(base, "recon"), "crawl"), "ab12cd34")
	if logger == nil {
		t.Fatal("nil logger")
	}
}
