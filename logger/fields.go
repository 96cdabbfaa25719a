package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across devize.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Components
	FieldComponent = "component"
	FieldSymbol    = "symbol" // stage glyph from package sym

	// Resolution
	FieldType         = "type"
	FieldProperty     = "property"
	FieldDepth        = "depth"
	FieldTrail        = "trail"
	FieldPlaceholder  = "placeholder"
	FieldTemplatePath = "template_path"
	FieldExtends      = "extends"
	FieldImpl         = "implementation"
	FieldBag          = "bag"
	FieldNode         = "node"
	FieldID           = "id"

	// Counts and sizes
	FieldCount = "count"
	FieldNodes = "nodes"

	// Files
	FieldFile    = "file"
	FieldLibrary = "library"

	// Errors
	FieldError = "error"

	// Timing
	FieldDurationMS = "duration_ms"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Engine struct {
//	    log *zap.SugaredLogger
//	}
//
//	func New() *Engine {
//	    return &Engine{log: logger.ComponentLogger("engine")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	typeLogger := logger.ChildLogger(baseLogger, logger.FieldType, "axis")
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}

// OrDefault returns l, or the named global component logger when l is nil.
func OrDefault(l *zap.SugaredLogger, component string) *zap.SugaredLogger {
	if l != nil {
		return l
	}
	return ComponentLogger(component)
}
