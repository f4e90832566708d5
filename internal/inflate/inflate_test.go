package inflate

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func sample(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i*7 + i/13)
	}
	return out
}

func TestDecompress(t *testing.T) {
	payload := append([]byte("VER 8.8\x00"), sample(200_000)...)
	compressed := deflate(t, payload)

	tests := []struct {
		name string
		opts []Option
	}{
		{name: "default chunk"},
		{name: "small chunk", opts: []Option{WithChunkSize(17)}},
		{name: "ignored chunk size", opts: []Option{WithChunkSize(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Decompress(compressed, tt.opts...)
			assert.Equal(t, StreamEnd, res.Reason)
			assert.True(t, res.Complete())
			assert.NoError(t, res.Err)
			assert.LessOrEqual(t, res.Consumed, len(compressed))
			assert.Greater(t, res.Consumed, len(compressed)-4)
			assert.Equal(t, payload, res.Data)
		})
	}
}

func TestDecompress_IgnoresTrailingBytesAfterStreamEnd(t *testing.T) {
	payload := []byte("VER 7.7\x00short archive body")
	compressed := deflate(t, payload)
	input := append(append([]byte{}, compressed...), bytes.Repeat([]byte{0xAB}, 64)...)

	res := Decompress(input)

	assert.Equal(t, StreamEnd, res.Reason)
	assert.Equal(t, payload, res.Data)
	assert.Less(t, res.Consumed, len(input))
}

func TestDecompress_KeepsOutputWhenInputRunsOut(t *testing.T) {
	payload := sample(300_000)
	compressed := deflate(t, payload)
	truncated := compressed[:len(compressed)/2]

	res := Decompress(truncated, WithChunkSize(4096))

	assert.Equal(t, InputExhausted, res.Reason)
	assert.False(t, res.Complete())
	assert.NoError(t, res.Err)
	require.NotEmpty(t, res.Data)
	assert.Equal(t, payload[:len(res.Data)], res.Data)
}

func TestDecompress_CodecErrorIsNotFatal(t *testing.T) {
	// final block with the reserved block type
	res := Decompress([]byte{0x07, 0x00, 0x00, 0x00})

	assert.Equal(t, CodecFailure, res.Reason)
	assert.Empty(t, res.Data)

	var codecErr *CodecError
	require.True(t, errors.As(res.Err, &codecErr))
	assert.NotNil(t, codecErr.Unwrap())
	assert.Contains(t, codecErr.Error(), "deflate codec error")
}

func TestDecompress_CodecErrorKeepsEarlierOutput(t *testing.T) {
	tag := []byte("VER 8.8\x00")
	// non-final stored block holding the tag, then a final block with the
	// reserved type
	input := []byte{0x00, byte(len(tag)), 0x00, ^byte(len(tag)), 0xFF}
	input = append(input, tag...)
	input = append(input, 0x07, 0x00, 0x00, 0x00)

	for _, chunk := range []int{DefaultChunkSize, 3} {
		res := Decompress(input, WithChunkSize(chunk))

		assert.Equal(t, CodecFailure, res.Reason, "chunk %d", chunk)
		assert.Equal(t, tag, res.Data, "chunk %d", chunk)
		assert.False(t, res.Complete())

		var codecErr *CodecError
		require.True(t, errors.As(res.Err, &codecErr))
		assert.GreaterOrEqual(t, codecErr.Offset, 5+len(tag))
	}
}

func TestDecompress_EmptyInput(t *testing.T) {
	res := Decompress(nil)

	assert.Equal(t, InputExhausted, res.Reason)
	assert.Empty(t, res.Data)
	assert.Equal(t, 0, res.Consumed)
}

func TestTermination_String(t *testing.T) {
	assert.Equal(t, "stream-end", StreamEnd.String())
	assert.Equal(t, "input-exhausted", InputExhausted.String())
	assert.Equal(t, "codec-failure", CodecFailure.String())
	assert.Equal(t, "termination(9)", Termination(9).String())
}
