package parser

import (
	"github.com/genietools/genie-dat/internal/cursor"
)

// fields wraps a cursor with a sticky error. After the first failed read
// every accessor returns the zero value, so a record decoder can read its
// whole layout and check err once.
type fields struct {
	r   *cursor.Reader
	err error
}

func newFields(r *cursor.Reader) *fields {
	return &fields{r: r}
}

func (f *fields) ok() bool { return f.err == nil }

func (f *fields) i8() int8 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.Int8()
	f.err = err
	return v
}

func (f *fields) u8() uint8 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.Uint8()
	f.err = err
	return v
}

func (f *fields) i16() int16 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.Int16()
	f.err = err
	return v
}

func (f *fields) u16() uint16 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.Uint16()
	f.err = err
	return v
}

func (f *fields) i32() int32 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.Int32()
	f.err = err
	return v
}

func (f *fields) u32() uint32 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.Uint32()
	f.err = err
	return v
}

func (f *fields) f32() float32 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.Float32()
	f.err = err
	return v
}

func (f *fields) f32x3() [3]float32 {
	return [3]float32{f.f32(), f.f32(), f.f32()}
}

func (f *fields) str() string {
	if f.err != nil {
		return ""
	}
	v, err := f.r.DebugString()
	f.err = err
	return v
}

func (f *fields) skip(n int64) {
	if f.err != nil {
		return
	}
	f.err = f.r.Skip(n)
}

// count converts a signed on-disk count to a loop bound. Negative counts
// are treated as empty.
func count[T int16 | uint16 | int32 | uint32 | uint8](n T) int {
	if n < 0 {
		return 0
	}
	return int(n)
}
