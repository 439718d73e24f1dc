package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"", zapcore.InfoLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "udemy-dl.log")

	if err := Init("debug", "json", path); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	L().Debug("staging course", zap.String("course", "python-bootcamp"))
	_ = Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"course":"python-bootcamp"`) {
		t.Errorf("log file missing field: %s", data)
	}
}

func TestInit_InvalidLevel(t *testing.T) {
	if err := Init("loud", "text"); err == nil {
		t.Error("Init() with invalid level should fail")
	}
}
