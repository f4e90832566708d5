package version

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/genietools/genie-dat/internal/cursor"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    Tag
		wantPos int64
	}{
		{name: "nul padded", input: []byte("VER 8.8\x00\x01\x02"), want: V88, wantPos: 8},
		{name: "full width", input: []byte("VER 10.0rest"), want: "VER 10.0", wantPos: 8},
		{name: "short stream", input: []byte("VER"), want: "", wantPos: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := cursor.New(tt.input)
			assert.Equal(t, tt.want, Read(r))
			assert.Equal(t, tt.wantPos, r.Pos())
		})
	}
}

func TestTag_Comparisons(t *testing.T) {
	tests := []struct {
		tag       Tag
		threshold Tag
		atLeast   bool
		after     bool
	}{
		{tag: "VER 7.7", threshold: V77, atLeast: true, after: false},
		{tag: "VER 7.8", threshold: V77, atLeast: true, after: true},
		{tag: "VER 8.3", threshold: V84, atLeast: false, after: false},
		{tag: "VER 8.4", threshold: V84, atLeast: true, after: false},
		{tag: "VER 8.8", threshold: V84, atLeast: true, after: true},
		{tag: "VER 8.7", threshold: V88, atLeast: false, after: false},
		{tag: "", threshold: V77, atLeast: false, after: false},
		// lexicographic, not numeric
		{tag: "VER 10.0", threshold: V88, atLeast: false, after: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.tag)+" vs "+string(tt.threshold), func(t *testing.T) {
			assert.Equal(t, tt.atLeast, tt.tag.AtLeast(tt.threshold))
			assert.Equal(t, !tt.atLeast, tt.tag.Below(tt.threshold))
			assert.Equal(t, tt.after, tt.tag.After(tt.threshold))
		})
	}
}
