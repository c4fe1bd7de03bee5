package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSlogLogger_Basic(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := NewSlogLogger(Config{Level: LevelDebug, Format: FormatText, Console: buf})
	if err != nil {
		t.Fatalf("NewSlogLogger() error = %v", err)
	}
	defer logger.Shutdown()

	logger.Info("walk finished", "root", "/data")

	output := buf.String()
	if !strings.Contains(output, "walk finished") {
		t.Errorf("log output missing message: %s", output)
	}
	if !strings.Contains(output, "root=/data") {
		t.Errorf("log output missing key-value: %s", output)
	}
}

func TestSlogLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		logFunc   func(*SlogLogger)
		shouldLog bool
	}{
		{"debug at debug level", LevelDebug, func(l *SlogLogger) { l.Debug("msg") }, true},
		{"debug at warn level", LevelWarn, func(l *SlogLogger) { l.Debug("msg") }, false},
		{"info at warn level", LevelWarn, func(l *SlogLogger) { l.Info("msg") }, false},
		{"warn at warn level", LevelWarn, func(l *SlogLogger) { l.Warn("msg") }, true},
		{"error at error level", LevelError, func(l *SlogLogger) { l.Error("msg") }, true},
		{"warn at error level", LevelError, func(l *SlogLogger) { l.Warn("msg") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger, err := NewSlogLogger(Config{Level: tt.level, Console: buf})
			if err != nil {
				t.Fatalf("NewSlogLogger() error = %v", err)
			}
			defer logger.Shutdown()

			tt.logFunc(logger)

			if got := buf.Len() > 0; got != tt.shouldLog {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.shouldLog, buf.String())
			}
		})
	}
}

func TestSlogLogger_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := NewSlogLogger(Config{Level: LevelInfo, Format: FormatJSON, Console: buf})
	if err != nil {
		t.Fatalf("NewSlogLogger() error = %v", err)
	}

	logger.Info("stats", "visited", 42)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["msg"] != "stats" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["visited"] != float64(42) {
		t.Errorf("visited = %v", record["visited"])
	}
}

func TestSlogLogger_SanitizesArgs(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := NewSlogLogger(Config{Level: LevelInfo, Console: buf})
	if err != nil {
		t.Fatalf("NewSlogLogger() error = %v", err)
	}

	logger.Info("s3 client", "secret_key", "wJalrXUtnFEMIK7MDENG")

	output := buf.String()
	if strings.Contains(output, "wJalrXUtnFEMIK7MDENG") {
		t.Errorf("secret leaked: %s", output)
	}
}

func TestSlogLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := NewSlogLogger(Config{Level: LevelInfo, Console: buf})
	if err != nil {
		t.Fatalf("NewSlogLogger() error = %v", err)
	}

	child := logger.With("backend", "hdfs")
	child.Info("listing")

	if !strings.Contains(buf.String(), "backend=hdfs") {
		t.Errorf("child output missing context: %s", buf.String())
	}

	// child does not own the file writer
	if err := child.Shutdown(); err != nil {
		t.Errorf("child Shutdown() error = %v", err)
	}
}

func TestSlogLogger_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "hfind.log")

	console := &bytes.Buffer{}
	logger, err := NewSlogLogger(Config{
		Level:   LevelInfo,
		Console: console,
		File:    FileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 1},
	})
	if err != nil {
		t.Fatalf("NewSlogLogger() error = %v", err)
	}

	logger.Warn("could not list", "path", "/a")
	if err := logger.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(content), "could not list") {
		t.Errorf("file missing message: %s", content)
	}
	if !strings.Contains(console.String(), "could not list") {
		t.Errorf("console missing message: %s", console.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelWarn},
		{"verbose", LevelWarn},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
