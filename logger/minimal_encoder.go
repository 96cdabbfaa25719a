package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

type palette struct {
	fg     string
	time   string
	name   string
	symbol string
	id     string
	number string
	warn   string
	warnBg string
	err    string
	errBg  string
}

// Everforest Dark (default) and Gruvbox Dark
var palettes = map[string]palette{
	"everforest": {
		fg:     "\x1b[38;5;223m",
		time:   "\x1b[38;5;107m",
		name:   "\x1b[38;5;208m",
		symbol: "\x1b[38;5;108m",
		id:     "\x1b[38;5;109m",
		number: "\x1b[38;5;108m",
		warn:   "\x1b[38;5;179m",
		warnBg: "\x1b[48;5;58m",
		err:    "\x1b[38;5;167m",
		errBg:  "\x1b[48;5;52m",
	},
	"gruvbox": {
		fg:     "\x1b[38;5;223m",
		time:   "\x1b[38;5;108m",
		name:   "\x1b[38;5;214m",
		symbol: "\x1b[38;5;142m",
		id:     "\x1b[38;5;109m",
		number: "\x1b[38;5;175m",
		warn:   "\x1b[38;5;214m",
		warnBg: "\x1b[48;5;58m",
		err:    "\x1b[38;5;167m",
		errBg:  "\x1b[48;5;88m",
	},
}

var currentTheme = "everforest"

// SetTheme configures the color scheme for console log output.
// Unknown themes are ignored.
func SetTheme(theme string) {
	if _, ok := palettes[theme]; ok {
		currentTheme = theme
	}
}

func colors() palette {
	return palettes[currentTheme]
}

// minimalEncoder implements a calm, compact console encoder.
// Format: "13:04:35  engine  ⤵ Decomposing  axis depth=2"
type minimalEncoder struct {
	zapcore.Encoder // base encoder for With() field accumulation
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{Encoder: enc.Encoder.Clone()}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	c := colors()
	final := buffer.NewPool().Get()

	final.AppendString(c.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: only shown for WARN and above
	if ent.Level >= zapcore.WarnLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(c.name)
		final.AppendString(ent.LoggerName)
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	if s := symbolField(fields); s != "" {
		final.AppendString(c.symbol + s + colorReset + " ")
	}
	final.AppendString(c.fg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	if rest := formatFields(fields); rest != "" {
		final.AppendString("  ")
		final.AppendString(rest)
	}

	final.AppendString("\n")
	return final, nil
}

func levelColorString(level zapcore.Level) string {
	c := colors()
	switch level {
	case zapcore.WarnLevel:
		return colorBold + c.warnBg + c.warn + "WARN" + colorReset
	default:
		return colorBold + c.errBg + c.err + level.CapitalString() + colorReset
	}
}

func symbolField(fields []zapcore.Field) string {
	for _, f := range fields {
		if f.Key == FieldSymbol {
			return fieldValue(f)
		}
	}
	return ""
}

// fieldValue extracts the value from a zap field, handling the common field types
func fieldValue(field zapcore.Field) string {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer)
	case zapcore.BoolType:
		return fmt.Sprintf("%t", field.Integer == 1)
	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok {
			return err.Error()
		}
	}
	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}
	return ""
}

// formatFields renders type names as IDs, numbers in the number color and
// everything else as key=value.
// Input: {"type": "axis", "depth": 2, "placeholder": "{{w}}"}
// Output: "axis depth=2 placeholder={{w}}"
func formatFields(fields []zapcore.Field) string {
	c := colors()
	var values []string
	for _, f := range fields {
		val := fieldValue(f)
		if val == "" {
			continue
		}
		switch f.Key {
		case FieldSymbol:
			continue
		case FieldType:
			values = append(values, c.id+val+colorReset)
		case FieldDepth, FieldCount, FieldNodes, FieldDurationMS:
			values = append(values, f.Key+"="+c.number+val+colorReset)
		default:
			values = append(values, f.Key+"="+val)
		}
	}
	return strings.Join(values, " ")
}
