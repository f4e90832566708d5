// Package jsoncodec encodes decoded archive records as JSON. It behaves like
// encoding/json, except that non-finite floats are written as the strings
// "NaN", "+Inf" and "-Inf" and read back from them. Best-effort decodes of
// damaged archives produce such values, and plain JSON has no number for
// them.
package jsoncodec

import (
	"io"
	"math"
	"strconv"
	"unsafe"

	jsoniter "github.com/json-iterator/go"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

func init() {
	jsoniter.RegisterTypeEncoderFunc("float32", func(ptr unsafe.Pointer, s *jsoniter.Stream) {
		writeFloat(s, float64(*(*float32)(ptr)), 32)
	}, func(ptr unsafe.Pointer) bool { return *(*float32)(ptr) == 0 })
	jsoniter.RegisterTypeEncoderFunc("float64", func(ptr unsafe.Pointer, s *jsoniter.Stream) {
		writeFloat(s, *(*float64)(ptr), 64)
	}, func(ptr unsafe.Pointer) bool { return *(*float64)(ptr) == 0 })

	jsoniter.RegisterTypeDecoderFunc("float32", func(ptr unsafe.Pointer, it *jsoniter.Iterator) {
		*(*float32)(ptr) = float32(readFloat(it, 32))
	})
	jsoniter.RegisterTypeDecoderFunc("float64", func(ptr unsafe.Pointer, it *jsoniter.Iterator) {
		*(*float64)(ptr) = readFloat(it, 64)
	})
}

func writeFloat(s *jsoniter.Stream, v float64, bits int) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		s.WriteString(strconv.FormatFloat(v, 'g', -1, bits))
	case bits == 32:
		s.WriteFloat32(float32(v))
	default:
		s.WriteFloat64(v)
	}
}

func readFloat(it *jsoniter.Iterator, bits int) float64 {
	switch it.WhatIsNext() {
	case jsoniter.StringValue:
		str := it.ReadString()
		v, err := strconv.ParseFloat(str, bits)
		if err != nil {
			it.ReportError("decode float", "invalid float string "+strconv.Quote(str))
		}
		return v
	case jsoniter.NilValue:
		it.ReadNil()
		return 0
	default:
		if bits == 32 {
			return float64(it.ReadFloat32())
		}
		return it.ReadFloat64()
	}
}

func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// NewEncoder returns a stream encoder writing one document per Encode call.
func NewEncoder(w io.Writer) *jsoniter.Encoder {
	return api.NewEncoder(w)
}
