package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/genietools/genie-dat/internal/config"
	"github.com/genietools/genie-dat/internal/logging"
	intOtel "github.com/genietools/genie-dat/internal/otel"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "genie_dat"
)

// exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// session holds everything set up for one invocation.
type session struct {
	stdout io.Writer
	stderr io.Writer

	start       time.Time
	command     string
	logsDir     string
	slogManager *logging.SlogManager
	logger      *slog.Logger
	pipelineLog zerolog.Logger
	otel        *intOtel.Provider

	upload bool
	units  int

	closers []io.Closer
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configDir := fs.String("config-dir", defaultConfigDir(), "directory holding "+config.FileName)
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("storage", "memory", "storage backend for export (memory, sqlite, postgres, pebble)")
	fs.Int("workers", 4, "number of files decoded concurrently")
	fs.String("encoding", "utf-8", "text encoding of names (utf-8, windows-1252)")
	upload := fs.Bool("upload", false, "upload exported documents to the API server")
	units := fs.Int("units", 5, "units listed per civ by inspect")
	fs.Usage = func() { usage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		// ContinueOnError leaves reporting to the caller.
		fmt.Fprintln(stderr, err)
		usage(stderr, fs)
		return exitUsage
	}

	rest := fs.Args()
	if len(rest) == 0 {
		usage(stderr, fs)
		return exitUsage
	}
	command, cmdArgs := strings.ToLower(rest[0]), rest[1:]

	if command == "version" {
		fmt.Fprintf(stdout, "%s %s (built %s)\n", AppName, CurrentVersion, BuildDate)
		return exitOK
	}
	if _, ok := commands[command]; !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", command)
		usage(stderr, fs)
		return exitUsage
	}

	configErr := config.Load(*configDir)
	for key, flag := range map[string]string{
		"logLevel":            "log-level",
		"storage.type":        "storage",
		"decode.workers":      "workers",
		"decode.textEncoding": "encoding",
	} {
		_ = viper.BindPFlag(key, fs.Lookup(flag))
	}

	s := &session{
		stdout:  stdout,
		stderr:  stderr,
		start:   time.Now(),
		command: command,
		upload:  *upload,
		units:   *units,
	}
	defer s.close()
	if err := s.setup(); err != nil {
		fmt.Fprintf(stderr, "setup failed: %v\n", err)
		return exitFailure
	}

	if configErr != nil {
		s.logger.Warn("No config file loaded, using defaults", "configDir", *configDir, "error", configErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return commands[command](ctx, s, cmdArgs)
}

func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s [flags] <command> [args]\n\n", AppName)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  decode <glob...>   decode archives and print a summary table")
	fmt.Fprintln(w, "  export <glob...>   decode archives and store them in the configured backend")
	fmt.Fprintln(w, "  inspect <file>     print version, truncation and units of one archive")
	fmt.Fprintln(w, "  version            print the version")
	fmt.Fprintln(w, "\nFlags:")
	fmt.Fprint(w, fs.FlagUsages())
}

// defaultConfigDir is the directory of the executable, falling back to the
// working directory.
func defaultConfigDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// setup opens the log files and starts logging and telemetry.
func (s *session) setup() error {
	s.logsDir = viper.GetString("logsDir")
	if err := os.MkdirAll(s.logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	level := viper.GetString("logLevel")

	logFile, err := s.openLog(AppName)
	if err != nil {
		return err
	}
	pipelineFile, err := s.openLog(AppName + ".pipeline")
	if err != nil {
		return err
	}
	s.pipelineLog = logging.NewZerolog(pipelineFile, level)

	otelCfg := config.GetOTelConfig()
	providerCfg := intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	}
	if otelCfg.Enabled {
		otelFile, err := s.openLog(AppName + ".otel")
		if err != nil {
			return err
		}
		metricFile, err := s.openLog(AppName + ".metrics")
		if err != nil {
			return err
		}
		providerCfg.LogWriter = otelFile
		providerCfg.MetricWriter = metricFile
	}
	s.otel, err = intOtel.New(providerCfg)
	if err != nil {
		return fmt.Errorf("failed to start telemetry: %w", err)
	}

	var extra []slog.Handler
	var gelfWriter *gelf.Writer
	if gc := config.GetGraylogConfig(); gc.Enabled {
		var h slog.Handler
		h, gelfWriter, err = logging.NewGELFHandler(gc.Address, level)
		if err != nil {
			return fmt.Errorf("failed to connect to graylog: %w", err)
		}
		extra = append(extra, h)
		s.closers = append(s.closers, gelfWriter)
	}

	s.slogManager = logging.NewSlogManager()
	s.slogManager.SetContextProvider(func(ctx context.Context) []slog.Attr {
		return []slog.Attr{slog.String("command", s.command)}
	})
	s.slogManager.Setup(logFile, level, s.otel.LoggerProvider(), extra...)
	s.logger = s.slogManager.Logger()

	s.logger.Info("Session started",
		"version", CurrentVersion,
		"buildDate", BuildDate,
		"logsDir", s.logsDir,
		"otel", otelCfg.Enabled,
		"graylog", gelfWriter != nil,
	)
	return nil
}

func (s *session) openLog(name string) (*os.File, error) {
	path := logging.LogFilePath(s.logsDir, name, s.start)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	s.closers = append(s.closers, f)
	return f, nil
}

// close flushes telemetry and closes the log files in reverse order.
func (s *session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.logger != nil {
		s.logger.Info("Session finished", "took", time.Since(s.start).String())
	}
	if s.slogManager != nil {
		_ = s.slogManager.Flush(ctx)
	}
	if s.otel != nil {
		if err := s.otel.Shutdown(ctx); err != nil {
			fmt.Fprintf(s.stderr, "telemetry shutdown: %v\n", err)
		}
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i].Close()
	}
}
