// Package batch decodes many archive files concurrently.
package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/genietools/genie-dat/internal/cache"
	"github.com/genietools/genie-dat/internal/loader"
	"github.com/genietools/genie-dat/pkg/genie"
)

// Logger is the logging interface used by the runner. *slog.Logger and
// logging.ZerologAdapter both satisfy it.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Decoder turns compressed archive bytes into an archive.
type Decoder interface {
	Decode(compressed []byte) (*genie.Archive, error)
}

// LoadFunc reads a file into memory.
type LoadFunc func(path string) ([]byte, error)

// Result is the outcome for one input file.
type Result struct {
	Path        string
	Archive     *genie.Archive
	Fingerprint uint64
	Duration    time.Duration
	Err         error
}

// Option configures a Runner.
type Option func(*config)

type config struct {
	workers  int
	buffered int
	load     LoadFunc
}

// Workers sets the number of concurrent decodes. Values below 1 mean 1.
func Workers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// Buffered sets how many paths may wait for a free worker.
func Buffered(n int) Option {
	return func(c *config) {
		c.buffered = n
	}
}

// WithLoader replaces the file loader.
func WithLoader(fn LoadFunc) Option {
	return func(c *config) {
		c.load = fn
	}
}

// Runner fans files out to a fixed set of workers.
type Runner struct {
	decoder Decoder
	cache   *cache.ArchiveCache
	logger  Logger
	cfg     config

	pending atomic.Int64

	// OTEL metrics
	queueSize metric.Int64ObservableGauge
	queueReg  metric.Registration
	decoded   metric.Int64Counter
	failed    metric.Int64Counter
	truncated metric.Int64Counter
	duration  metric.Float64Histogram
}

// New creates a Runner. The cache may be nil. Uses the global OTel meter for
// metrics (no-op if not configured).
func New(dec Decoder, c *cache.ArchiveCache, logger Logger, opts ...Option) (*Runner, error) {
	cfg := config{workers: 1, load: loader.Load}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}
	if cfg.buffered < 0 {
		cfg.buffered = 0
	}

	r := &Runner{
		decoder: dec,
		cache:   c,
		logger:  logger,
		cfg:     cfg,
	}

	m := meter()
	var err error

	r.queueSize, err = m.Int64ObservableGauge(
		"batch.queue.size",
		metric.WithDescription("Files waiting for or being decoded"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}
	r.queueReg, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(r.queueSize, r.pending.Load())
			return nil
		},
		r.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	r.decoded, err = m.Int64Counter(
		"batch.files.decoded",
		metric.WithDescription("Files that produced an archive"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating decoded counter: %w", err)
	}

	r.failed, err = m.Int64Counter(
		"batch.files.failed",
		metric.WithDescription("Files that could not be loaded or decoded"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	r.truncated, err = m.Int64Counter(
		"batch.files.truncated",
		metric.WithDescription("Files whose archive stopped before the last section"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating truncated counter: %w", err)
	}

	r.duration, err = m.Float64Histogram(
		"batch.decode.duration",
		metric.WithDescription("Load and decode time per file"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return r, nil
}

// Close unregisters the queue size callback. The runner must not be used
// afterwards.
func (r *Runner) Close() error {
	if r.queueReg == nil {
		return nil
	}
	err := r.queueReg.Unregister()
	r.queueReg = nil
	return err
}

type job struct {
	index int
	path  string
}

// Run decodes every path and returns one Result per path, in input order.
// Paths not started when ctx is cancelled get ctx.Err() as their error.
func (r *Runner) Run(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))
	for i, p := range paths {
		results[i].Path = p
	}

	jobs := make(chan job, r.cfg.buffered)
	var wg sync.WaitGroup
	for w := 0; w < min(r.cfg.workers, max(len(paths), 1)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results[j.index].Err = err
				} else {
					results[j.index] = r.process(ctx, j.path)
				}
				r.pending.Add(-1)
			}
		}()
	}

	r.pending.Add(int64(len(paths)))
	sent := 0
feed:
	for i, p := range paths {
		select {
		case jobs <- job{index: i, path: p}:
			sent++
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	for i := sent; i < len(paths); i++ {
		results[i].Err = ctx.Err()
		r.pending.Add(-1)
	}
	wg.Wait()

	r.logSummary(results)
	return results
}

func (r *Runner) process(ctx context.Context, path string) Result {
	start := time.Now()
	res := Result{Path: path}

	data, err := r.cfg.load(path)
	if err == nil {
		res.Fingerprint = cache.Fingerprint(data)
		res.Archive, err = r.cache.GetOrDecode(data, r.decoder.Decode)
	}
	res.Duration = time.Since(start)
	r.duration.Record(ctx, res.Duration.Seconds())

	if err != nil {
		res.Err = fmt.Errorf("decoding %s: %w", path, err)
		r.failed.Add(ctx, 1)
		r.logger.Error("file failed", "path", path, "duration", res.Duration, "error", err)
		return res
	}

	attrs := metric.WithAttributes(attribute.String("version", res.Archive.Version))
	r.decoded.Add(ctx, 1, attrs)
	if t := res.Archive.Truncation; t != nil {
		r.truncated.Add(ctx, 1, metric.WithAttributes(
			attribute.String("version", res.Archive.Version),
			attribute.String("section", t.Section),
		))
	}
	r.logger.Debug("file decoded",
		"path", path,
		"version", res.Archive.Version,
		"fingerprint", fmt.Sprintf("%016x", res.Fingerprint),
		"duration", res.Duration,
	)
	return res
}

func (r *Runner) logSummary(results []Result) {
	var failed, truncated int
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
		case res.Archive.Truncation != nil:
			truncated++
		}
	}
	r.logger.Info("batch complete",
		"files", len(results),
		"failed", failed,
		"truncated", truncated,
		"workers", r.cfg.workers,
	)
}
