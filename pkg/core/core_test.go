package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArchiveMeta_FingerprintHex(t *testing.T) {
	tests := []struct {
		fp   uint64
		want string
	}{
		{0, "0000000000000000"},
		{0xef46db3751d8e999, "ef46db3751d8e999"},
		{0xff, "00000000000000ff"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ArchiveMeta{Fingerprint: tt.fp}.FingerprintHex())
		})
	}
}
