package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// NewZerolog builds the JSON pipeline logger shared by the batch runner and
// the database and influx managers. Unknown levels mean info.
func NewZerolog(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// ZerologAdapter lets code written against the slog-style Debug/Info/Warn/
// Error(msg, kv...) methods log to a zerolog.Logger. Odd trailing values and
// non-string keys are dropped.
type ZerologAdapter struct {
	logger zerolog.Logger
}

func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

func (l *ZerologAdapter) Debug(msg string, kv ...any) { emit(l.logger.Debug(), msg, kv) }
func (l *ZerologAdapter) Info(msg string, kv ...any) { emit(l.logger.Info(), msg, kv) }
func (l *ZerologAdapter) Warn(msg string, kv ...any) { emit(l.logger.Warn(), msg, kv) }
func (l *ZerologAdapter) Error(msg string, kv ...any) { emit(l.logger.Error(), msg, kv) }

// emit is a no-op for a nil event, which zerolog returns below the level.
func emit(ev *zerolog.Event, msg string, kv []any) {
	if ev == nil {
		return
	}
	ev.Fields(toFields(kv)).Msg(msg)
}

func toFields(kv []any) map[string]any {
	fields := make(map[string]any, len(kv)/2)
	for i := 1; i < len(kv); i += 2 {
		if key, ok := kv[i-1].(string); ok {
			fields[key] = kv[i]
		}
	}
	return fields
}
