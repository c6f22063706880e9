package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewFallsBackOnUnknownLevel(t *testing.T) {
	log, err := New("development", "chatty")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !log.SugaredLogger.Desugar().Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("expected info level to be enabled")
	}
	if log.SugaredLogger.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level to be disabled by the fallback")
	}
}

func TestWithKeepsFields(t *testing.T) {
	log := NewNop().With("service", "FoodLogService")
	log.Info("noop", "user_id", 1)
	if log.SugaredLogger == nil {
		t.Fatal("expected derived logger")
	}
}
