package logger

import (
	"testing"

	"sad/backend/config"
)

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger(&config.LogConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("format %s: %v", format, err)
		}
		l.Debug("ok")
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewLogger_BadFormat(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "info", Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
