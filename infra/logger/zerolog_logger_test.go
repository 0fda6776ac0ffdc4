package logger

import (
	"testing"
)

func TestNewZerologLoggerDevEnv(t *testing.T) {
	t.Setenv("FQ_ENV", "dev")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatal("expected logger")
	}
	l.Infof("hello %s", "world")
	l.Debugw("fields", map[string]any{"a": 1})
}

func TestNewZerologLoggerLevelOverride(t *testing.T) {
	t.Setenv("FQ_ENV", "prod")
	t.Setenv("FQ_LOG_LEVEL", "warn")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatal("expected logger")
	}
	l.Debugf("suppressed")
	l.Warnf("visible")
}
