// Package inflate decompresses the headerless deflate stream that wraps a
// Genie data archive.
package inflate

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// DefaultChunkSize is the scratch buffer handed to the codec on each pass.
const DefaultChunkSize = 64 * 1024

// Termination describes why the decompression loop stopped.
type Termination int

const (
	// StreamEnd means the codec reported the final block.
	StreamEnd Termination = iota
	// InputExhausted means the compressed input ran out before the final block.
	InputExhausted
	// CodecFailure means the codec rejected the compressed data.
	CodecFailure
)

func (t Termination) String() string {
	switch t {
	case StreamEnd:
		return "stream-end"
	case InputExhausted:
		return "input-exhausted"
	case CodecFailure:
		return "codec-failure"
	default:
		return fmt.Sprintf("termination(%d)", int(t))
	}
}

// CodecError reports malformed compressed data. It never aborts a
// decompression; the bytes produced before it are still returned.
type CodecError struct {
	Offset int // compressed bytes consumed when the codec gave up
	Err    error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("deflate codec error after %d input bytes: %v", e.Offset, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// Result is the outcome of a decompression pass.
type Result struct {
	Data     []byte
	Consumed int
	Reason   Termination
	Err      error // *CodecError when Reason is CodecFailure
}

// Complete reports whether the stream ended cleanly.
func (r Result) Complete() bool {
	return r.Reason == StreamEnd
}

// Option configures Decompress.
type Option func(*options)

type options struct {
	chunkSize int
}

// WithChunkSize overrides the scratch chunk size. Values below 1 are ignored.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// Decompress inflates a raw deflate stream chunk by chunk. Output produced
// before the input runs out or the codec fails is kept.
func Decompress(compressed []byte, opts ...Option) Result {
	o := options{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(&o)
	}

	// bytes.Reader is an io.ByteReader, so the codec never reads ahead and
	// Len tells exactly how much input it has consumed.
	src := bytes.NewReader(compressed)
	fr := flate.NewReader(src)
	defer fr.Close()

	chunk := make([]byte, o.chunkSize)
	out := make([]byte, 0, len(compressed)*4)

	res := Result{}
	for {
		n, err := fr.Read(chunk)
		out = append(out, chunk[:n]...)

		if err == nil {
			continue
		}
		switch {
		case errors.Is(err, io.EOF):
			res.Reason = StreamEnd
		case errors.Is(err, io.ErrUnexpectedEOF):
			res.Reason = InputExhausted
		default:
			res.Reason = CodecFailure
			res.Err = &CodecError{Offset: len(compressed) - src.Len(), Err: err}
		}
		break
	}

	res.Data = out
	res.Consumed = len(compressed) - src.Len()
	return res
}
