package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	for level, want := range map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	} {
		log, err := New(level)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", level, err)
		}
		if got := log.Level(); got != want {
			t.Errorf("New(%q).Level() = %v, want %v", level, got, want)
		}
	}
}
