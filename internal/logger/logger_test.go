package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetup_JSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	l := setup(&buf, "warn", "json")
	l.Info("dropped")
	l.Warn("kept", "marker", 3)

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "dropped") {
		t.Errorf("info record written at warn level: %s", out)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("not JSON: %v: %s", err, out)
	}
	if rec["msg"] != "kept" || rec["marker"] != float64(3) {
		t.Errorf("record = %v", rec)
	}
	if L() != l {
		t.Error("L should return the configured logger")
	}
}

func TestOr(t *testing.T) {
	if Or(nil) != slog.Default() {
		t.Error("Or(nil) should fall back to slog.Default")
	}
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if Or(l) != l {
		t.Error("Or should keep a non-nil logger")
	}
}
