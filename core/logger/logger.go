package logger

// Logger is the logging surface core packages depend on. Adapters live in
// infra/logger so the core stays free of logging-library imports.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a debug message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
