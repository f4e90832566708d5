package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// osStdout receives console output when no log file is configured.
var osStdout io.Writer = os.Stdout

// SlogManager owns the application logger. Setup may be called again to
// rebuild it, for example once the config has been read.
type SlogManager struct {
	logger      *slog.Logger
	logProvider *sdklog.LoggerProvider // flushed by Flush
	context     ContextProvider
}

func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel accepts the slog level names in any case. Anything else is info.
func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// HandlerOptions returns the options shared by every handler: the given
// level and RFC3339 UTC timestamps.
func HandlerOptions(level string) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level:       parseLevel(level),
		ReplaceAttr: utcTime,
	}
}

func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.TimeKey {
		return a
	}
	if t, ok := a.Value.Any().(time.Time); ok {
		a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
	}
	return a
}

// SetContextProvider attaches attributes computed per record. It applies
// from the next Setup on.
func (m *SlogManager) SetContextProvider(p ContextProvider) {
	m.context = p
}

// Setup builds the logger. Text records go to file, or stdout when file is
// nil. A non-nil provider adds the OTel bridge; extra handlers such as the
// GELF sink are appended as given.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider, extra ...slog.Handler) {
	if file == nil {
		file = osStdout
	}
	sinks := []slog.Handler{slog.NewTextHandler(file, HandlerOptions(level))}
	if provider != nil {
		sinks = append(sinks, otelslog.NewHandler("genie-dat", otelslog.WithLoggerProvider(provider)))
	}
	sinks = append(sinks, extra...)

	var h slog.Handler = NewMultiHandler(sinks...)
	if m.context != nil {
		h = NewContextHandler(h, m.context)
	}

	m.logProvider = provider
	m.logger = slog.New(h)
	m.logger.Debug("Logging initialized", "level", parseLevel(level).String(), "sinks", len(sinks))
}

// Logger returns the configured logger, or slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush forces buffered OTel records out.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider == nil {
		return nil
	}
	return m.logProvider.ForceFlush(ctx)
}
