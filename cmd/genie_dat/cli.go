package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/genietools/genie-dat/internal/api"
	"github.com/genietools/genie-dat/internal/batch"
	"github.com/genietools/genie-dat/internal/cache"
	"github.com/genietools/genie-dat/internal/config"
	"github.com/genietools/genie-dat/internal/influx"
	"github.com/genietools/genie-dat/internal/loader"
	"github.com/genietools/genie-dat/internal/logging"
	"github.com/genietools/genie-dat/internal/parser"
	"github.com/genietools/genie-dat/internal/storage"
	"github.com/genietools/genie-dat/pkg/core"
)

type commandFunc func(ctx context.Context, s *session, args []string) int

var commands = map[string]commandFunc{
	"decode":  cmdDecode,
	"export":  cmdExport,
	"inspect": cmdInspect,
}

func cmdDecode(ctx context.Context, s *session, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(s.stderr, "decode: no files given")
		return exitUsage
	}
	results, err := s.decodeFiles(ctx, args)
	if err != nil {
		fmt.Fprintf(s.stderr, "decode: %v\n", err)
		return exitFailure
	}

	fmt.Fprintln(s.stdout, renderSummary(results))
	s.reportStats(ctx, results)
	return exitCode(results)
}

func cmdExport(ctx context.Context, s *session, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(s.stderr, "export: no files given")
		return exitUsage
	}
	results, err := s.decodeFiles(ctx, args)
	if err != nil {
		fmt.Fprintf(s.stderr, "export: %v\n", err)
		return exitFailure
	}

	backend, err := s.openBackend()
	if err != nil {
		fmt.Fprintf(s.stderr, "export: %v\n", err)
		return exitFailure
	}
	defer func() {
		if err := backend.Close(); err != nil {
			s.logger.Error("Failed to close storage backend", "error", err)
		}
	}()

	var client *api.Client
	uploader, canUpload := backend.(storage.Uploadable)
	if s.upload {
		if !canUpload {
			fmt.Fprintf(s.stderr, "export: storage %q writes no export files, --upload ignored\n", config.GetStorageConfig().Type)
		} else {
			ac := config.GetAPIConfig()
			client = api.New(ac.ServerURL, ac.APIKey)
		}
	}

	code := exitCode(results)
	if client != nil {
		if err := client.Healthcheck(ctx); err != nil {
			fmt.Fprintf(s.stderr, "export: upload server unavailable, exports kept locally: %v\n", err)
			s.logger.Error("Upload server failed healthcheck", "error", err)
			client = nil
			code = exitFailure
		}
	}
	verifier, canVerify := backend.(storage.Verifier)
	stored := 0
	for i, r := range results {
		if r.Err != nil {
			continue
		}
		meta := resultMeta(r)
		if err := backend.StoreArchive(ctx, meta, r.Archive); err != nil {
			s.logger.Error("Failed to store archive", "path", r.Path, "error", err)
			results[i].Err = fmt.Errorf("storing: %w", err)
			code = exitFailure
			continue
		}
		if canVerify {
			if err := verifier.Verify(meta, r.Archive); err != nil {
				s.logger.Error("Stored archive failed verification", "path", r.Path, "error", err)
				results[i].Err = fmt.Errorf("verifying: %w", err)
				code = exitFailure
				continue
			}
		}
		stored++

		if client == nil {
			continue
		}
		path := uploader.ExportedFilePath()
		if err := client.Upload(ctx, path, uploader.ExportMetadata()); err != nil {
			s.logger.Error("Failed to upload export", "path", path, "error", err)
			results[i].Err = fmt.Errorf("uploading: %w", err)
			code = exitFailure
			continue
		}
		s.logger.Info("Uploaded export", "path", path)
	}

	fmt.Fprintln(s.stdout, renderSummary(results))
	fmt.Fprintf(s.stdout, "%d of %d archives stored\n", stored, len(results))
	s.reportStats(ctx, results)
	return code
}

func cmdInspect(ctx context.Context, s *session, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(s.stderr, "inspect: exactly one file required")
		return exitUsage
	}
	results, err := s.decodeFiles(ctx, args)
	if err != nil {
		fmt.Fprintf(s.stderr, "inspect: %v\n", err)
		return exitFailure
	}
	r := results[0]
	if r.Err != nil {
		fmt.Fprintf(s.stderr, "inspect: %v\n", r.Err)
		return exitFailure
	}

	fmt.Fprintln(s.stdout, renderInspect(resultMeta(r), r.Archive, s.units))
	return exitOK
}

// decodeFiles expands patterns and decodes the matching files with the
// configured parser, cache and worker count.
func (s *session) decodeFiles(ctx context.Context, patterns []string) ([]batch.Result, error) {
	paths, err := loader.Expand(patterns)
	if err != nil {
		return nil, err
	}

	dc := config.GetDecodeConfig()
	p, err := parser.NewParser(s.logger,
		parser.WithTextEncoding(dc.TextEncoding),
		parser.WithChunkSize(dc.ChunkSize),
	)
	if err != nil {
		return nil, err
	}
	archives := cache.NewArchiveCache(dc.CacheSize)
	runner, err := batch.New(p, archives,
		logging.NewZerologAdapter(s.pipelineLog),
		batch.Workers(dc.Workers),
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			s.logger.Warn("Unregistering batch metrics failed", "error", err)
		}
	}()

	s.logger.Info("Decoding archives", "files", len(paths), "workers", dc.Workers, "encoding", dc.TextEncoding)
	results := runner.Run(ctx, paths)
	hits, misses := archives.Stats()
	s.logger.Info("Decoded archives", "files", len(results), "cacheHits", hits, "cacheMisses", misses)
	if err := s.otel.Flush(ctx); err != nil {
		s.logger.Warn("Failed to flush telemetry", "error", err)
	}
	return results, nil
}

// reportStats writes one decode_stats point per decoded archive when influx
// is enabled. Failures are logged, never fatal.
func (s *session) reportStats(ctx context.Context, results []batch.Result) {
	ic := config.GetInfluxConfig()
	if !ic.Enabled {
		return
	}
	backup := filepath.Join(s.logsDir, AppName+".influx.lp.gz")
	m := influx.NewManager(ic, s.pipelineLog, backup)
	if err := m.Connect(ctx); err != nil {
		s.logger.Error("Failed to connect to influx", "error", err)
		return
	}
	defer func() {
		if err := m.Close(); err != nil {
			s.logger.Error("Failed to close influx", "error", err)
		}
	}()

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if err := m.WriteDecodeStats(resultMeta(r), r.Archive.Summary(), r.Duration); err != nil {
			s.logger.Error("Failed to write decode stats", "path", r.Path, "error", err)
		}
	}
}

func resultMeta(r batch.Result) core.ArchiveMeta {
	return core.ArchiveMeta{
		SourcePath:  r.Path,
		Fingerprint: r.Fingerprint,
		DecodedAt:   time.Now(),
	}
}

func exitCode(results []batch.Result) int {
	for _, r := range results {
		if r.Err != nil {
			return exitFailure
		}
	}
	return exitOK
}
