// Package parser decodes a Genie data archive into a genie.Archive.
//
// A decode never fails on malformed archive data. The first failing section
// ends the walk and is recorded on the result, and everything decoded before
// it is kept.
package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/genietools/genie-dat/internal/cursor"
	"github.com/genietools/genie-dat/internal/inflate"
	"github.com/genietools/genie-dat/pkg/genie"
)

// ErrEmptyInput is returned by Decode when there is nothing to decompress.
var ErrEmptyInput = errors.New("empty archive input")

// Parser turns archive bytes into a genie.Archive. It holds only
// configuration, a logger and metric instruments, so one Parser can be shared
// by concurrent decodes.
type Parser struct {
	logger    *slog.Logger
	encoding  string
	chunkSize int

	decoded   metric.Int64Counter
	truncated metric.Int64Counter
	inputSize metric.Int64Histogram
}

// Option configures a Parser.
type Option func(*Parser)

// WithTextEncoding sets the legacy code page used for debug strings.
func WithTextEncoding(name string) Option {
	return func(p *Parser) {
		p.encoding = name
	}
}

// WithChunkSize sets the decompression scratch size.
func WithChunkSize(n int) Option {
	return func(p *Parser) {
		p.chunkSize = n
	}
}

// NewParser creates a parser. Uses the global OTel meter for metrics (no-op
// if not configured).
func NewParser(logger *slog.Logger, opts ...Option) (*Parser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Parser{
		logger:    logger,
		chunkSize: inflate.DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	if _, err := cursor.DecoderFor(p.encoding); err != nil {
		return nil, err
	}

	m := meter()
	var err error
	p.decoded, err = m.Int64Counter(
		"genie.archives.decoded",
		metric.WithDescription("Archives walked to the end or to a truncation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating decoded counter: %w", err)
	}
	p.truncated, err = m.Int64Counter(
		"genie.archives.truncated",
		metric.WithDescription("Archives whose walk stopped before the time slice"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating truncated counter: %w", err)
	}
	p.inputSize, err = m.Int64Histogram(
		"genie.archive.bytes",
		metric.WithDescription("Decompressed archive size"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating size histogram: %w", err)
	}
	return p, nil
}

// Decode decompresses and walks an archive. The only error is ErrEmptyInput;
// decompression and layout problems produce a partial archive.
func (p *Parser) Decode(compressed []byte) (*genie.Archive, error) {
	if len(compressed) == 0 {
		return nil, ErrEmptyInput
	}
	res := inflate.Decompress(compressed, inflate.WithChunkSize(p.chunkSize))
	if !res.Complete() {
		p.logger.Warn("decompression stopped early",
			"reason", res.Reason.String(),
			"consumed", res.Consumed,
			"produced", len(res.Data),
			"error", res.Err,
		)
	} else {
		p.logger.Debug("decompressed archive",
			"compressed", len(compressed),
			"decompressed", len(res.Data),
		)
	}
	return p.DecodeRaw(res.Data), nil
}

// DecodeRaw walks an already decompressed archive.
func (p *Parser) DecodeRaw(data []byte) *genie.Archive {
	// text decoders keep state, so each walk gets its own
	dec, _ := cursor.DecoderFor(p.encoding)
	var opts []cursor.Option
	if dec != nil {
		opts = append(opts, cursor.WithDecoder(dec))
	}
	r := cursor.New(data, opts...)

	w := newWalk(r)
	section, err := w.run()
	a := w.a
	a.DebugPos = r.Pos()

	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("version", a.Version))
	p.decoded.Add(ctx, 1, attrs)
	p.inputSize.Record(ctx, int64(len(data)), attrs)

	if err != nil {
		a.Truncation = &genie.Truncation{Section: section, Err: err.Error()}
		p.truncated.Add(ctx, 1, metric.WithAttributes(
			attribute.String("version", a.Version),
			attribute.String("section", section),
		))
		p.logger.Warn("archive truncated",
			"version", a.Version,
			"section", section,
			"pos", a.DebugPos,
			"error", err,
		)
		return a
	}
	p.logger.Debug("archive decoded",
		"version", a.Version,
		"civs", len(a.Civs),
		"techs", len(a.Techs),
		"pos", a.DebugPos,
	)
	return a
}
