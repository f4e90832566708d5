package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantWarn  bool
	}{
		{level: "debug", wantDebug: true, wantWarn: true},
		{level: "info", wantWarn: true},
		{level: "error"},
		{level: "bogus", wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var out bytes.Buffer
			m := NewSlogManager()
			m.Setup(&out, tt.level, nil)

			m.Logger().Debug("section offsets", "pos", 4096)
			m.Logger().Warn("archive truncated", "section", "civs")

			assert.Equal(t, tt.wantDebug, bytes.Contains(out.Bytes(), []byte("section offsets")))
			assert.Equal(t, tt.wantWarn, bytes.Contains(out.Bytes(), []byte("archive truncated")))
		})
	}
}

func TestSetup_ConsoleFallback(t *testing.T) {
	t.Run("file given", func(t *testing.T) {
		var file bytes.Buffer
		console := redirectConsole(t)

		m := NewSlogManager()
		m.Setup(&file, "info", nil)
		m.Logger().Info("decoded empires2.dat")

		assert.Contains(t, file.String(), "decoded empires2.dat")
		assert.Empty(t, console())
	})

	t.Run("no file", func(t *testing.T) {
		console := redirectConsole(t)

		m := NewSlogManager()
		m.Setup(nil, "info", nil)
		m.Logger().Info("decoded empires2.dat")

		assert.Contains(t, console(), "decoded empires2.dat")
	})
}

func TestSetup_RebuildSwitchesFile(t *testing.T) {
	var early, late bytes.Buffer
	m := NewSlogManager()

	m.Setup(&early, "info", nil)
	m.Logger().Info("before config")
	m.Setup(&late, "info", nil)
	m.Logger().Info("after config")

	assert.NotContains(t, early.String(), "after config")
	assert.Contains(t, late.String(), "after config")
}

func TestSlogManager_ZeroValue(t *testing.T) {
	m := NewSlogManager()
	assert.Same(t, slog.Default(), m.Logger())
	assert.NoError(t, m.Flush(context.Background()))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"Info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestSetup_OTelBridge(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	var file bytes.Buffer
	m := NewSlogManager()
	m.Setup(&file, "info", provider)
	m.Logger().Info("bridged")

	assert.Contains(t, file.String(), "bridged")
	assert.NoError(t, m.Flush(context.Background()))
}

func TestSetup_ExtraHandlerAndContext(t *testing.T) {
	var file, extra bytes.Buffer
	m := NewSlogManager()
	m.SetContextProvider(func(context.Context) []slog.Attr {
		return []slog.Attr{slog.String("run", "r-1")}
	})
	m.Setup(&file, "info", nil, slog.NewJSONHandler(&extra, HandlerOptions("warn")))

	m.Logger().Info("decoded")
	m.Logger().Warn("truncated", "section", "civs")

	assert.Contains(t, file.String(), "run=r-1")
	assert.NotContains(t, extra.String(), "decoded")
	assert.Contains(t, extra.String(), `"section":"civs"`)
	assert.Contains(t, extra.String(), `"run":"r-1"`)
}

func TestHandlerOptions_UTCTimestamps(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, HandlerOptions("info")))
	logger.Info("stamped")
	assert.Regexp(t, `time=\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z`, buf.String())
}

// redirectConsole points the console sink at a pipe. The returned func
// restores it and returns everything written.
func redirectConsole(t *testing.T) func() string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	prev := osStdout
	osStdout = w
	t.Cleanup(func() { osStdout = prev })

	return func() string {
		w.Close()
		osStdout = prev
		data, _ := io.ReadAll(r)
		r.Close()
		return string(data)
	}
}
