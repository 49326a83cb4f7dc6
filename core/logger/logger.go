package logger

// Logger exposes logging methods for common severity levels.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// StructuredLogger can log structured debug information. It is implemented by
// ZerologLogger and other adapters.
type StructuredLogger interface {
	Debugw(msg string, fields map[string]any)
}

// Fields builds the structured fields describing a computation scope.
func Fields(scope, cycle string, extra map[string]any) map[string]any {
	f := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		f[k] = v
	}
	if scope != "" {
		f["scope"] = scope
	}
	if cycle != "" {
		f["cycle"] = cycle
	}
	return f
}
