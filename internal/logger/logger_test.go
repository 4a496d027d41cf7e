package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	if err := Init(Config{Level: "info", Format: "json", OutputPaths: []string{path}}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	Named("engine").Info("swap submitted")
	Named("engine").Debug("hidden at info level")
	if err := Sync(); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(buf)
	if !strings.Contains(out, `"logger":"engine"`) || !strings.Contains(out, "swap submitted") {
		t.Fatalf("unexpected log output: %s", out)
	}
	if strings.Contains(out, "hidden at info level") {
		t.Fatalf("debug entry should be filtered: %s", out)
	}
}
