package logger

import (
	"github.com/teranos/devize/sym"
	"go.uber.org/zap"
)

// Symbol-aware logging helpers.
// These log with the stage glyph as a structured field, not in the message,
// which keeps messages clean and logs filterable by stage.

// WithSymbol returns l with the given symbol as a field.
//
// Example:
//
//	log := logger.WithSymbol(e.log, sym.Decompose)
//	log.Debugw("Decomposing", logger.FieldType, name)
func WithSymbol(l *zap.SugaredLogger, symbol string) *zap.SugaredLogger {
	return l.With(FieldSymbol, symbol)
}

// AMInfow logs an info message with the configuration symbol (≡)
func AMInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, sym.AM}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}

// DefineInfow logs an info message with the define symbol (≔)
func DefineInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, sym.Define}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}
