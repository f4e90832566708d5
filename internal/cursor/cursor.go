// Package cursor reads little-endian primitives from an in-memory buffer.
//
// Every read either succeeds completely or fails with an *UnderrunError and
// leaves the position untouched.
package cursor

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// UnderrunError is returned when fewer bytes remain than a read needs.
type UnderrunError struct {
	Pos  int64
	Need int64
	Have int64
}

func (e *UnderrunError) Error() string {
	return fmt.Sprintf("underrun at offset %d: need %d bytes, have %d", e.Pos, e.Need, e.Have)
}

// Reader is a forward cursor over a decompressed archive.
type Reader struct {
	buf     []byte
	pos     int64
	decoder *encoding.Decoder
}

// Option configures a Reader.
type Option func(*Reader)

// WithDecoder decodes debug strings with the given text decoder instead of
// treating them as UTF-8.
func WithDecoder(d *encoding.Decoder) Option {
	return func(r *Reader) {
		r.decoder = d
	}
}

// DecoderFor maps a configured encoding name to a text decoder. An empty name
// or "utf-8" returns nil, meaning UTF-8 with invalid sequences replaced.
func DecoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "windows-1250", "cp1250":
		return charmap.Windows1250.NewDecoder(), nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported text encoding: %s", name)
	}
}

// New returns a Reader positioned at the start of buf.
func New(buf []byte, opts ...Option) *Reader {
	r := &Reader{buf: buf}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pos returns the current offset.
func (r *Reader) Pos() int64 { return r.pos }

// Len returns the number of unread bytes.
func (r *Reader) Len() int64 { return int64(len(r.buf)) - r.pos }

func (r *Reader) take(n int64) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, &UnderrunError{Pos: r.pos, Need: n, Have: r.Len()}
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Skip moves the cursor by n bytes, which may be negative.
func (r *Reader) Skip(n int64) error {
	next := r.pos + n
	if next < 0 || next > int64(len(r.buf)) {
		return &UnderrunError{Pos: r.pos, Need: n, Have: r.Len()}
	}
	r.pos = next
	return nil
}

// Bytes returns a copy of the next n bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	b, err := r.take(int64(n))
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

func (r *Reader) Uint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) Int8() (int8, error) {
	v, err := r.Uint8()
	return int8(v), err
}

func (r *Reader) Uint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) Int16() (int16, error) {
	v, err := r.Uint16()
	return int16(v), err
}

func (r *Reader) Uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

func (r *Reader) Float32() (float32, error) {
	v, err := r.Uint32()
	return math.Float32frombits(v), err
}

// DebugString reads a tagged, length-prefixed string: a u16 tag that is
// ignored, a u16 length, then the text. Trailing NULs are trimmed.
func (r *Reader) DebugString() (string, error) {
	start := r.pos
	if _, err := r.Uint16(); err != nil {
		return "", err
	}
	n, err := r.Uint16()
	if err != nil {
		r.pos = start
		return "", err
	}
	raw, err := r.take(int64(n))
	if err != nil {
		r.pos = start
		return "", err
	}
	return r.text(bytes.TrimRight(raw, "\x00")), nil
}

// FixedString reads n bytes and trims trailing NULs, as used by the
// version header.
func (r *Reader) FixedString(n int) (string, error) {
	raw, err := r.take(int64(n))
	if err != nil {
		return "", err
	}
	return r.text(bytes.TrimRight(raw, "\x00")), nil
}

func (r *Reader) text(raw []byte) string {
	if r.decoder != nil {
		if out, err := r.decoder.Bytes(raw); err == nil {
			return string(out)
		}
	}
	return strings.ToValidUTF8(string(raw), "�")
}
