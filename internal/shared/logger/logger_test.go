package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	l, err := New("insights-service", "prod", "warn")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug must be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatal("error must be enabled at warn level")
	}

	if _, err := New("insights-service", "local", "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
