package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		file    string
		want    string
	}{
		{
			name:    "basic path",
			logsDir: "genielogs",
			file:    "genie_dat",
			want:    filepath.Join("genielogs", "genie_dat.20260212_213836.log"),
		},
		{
			name:    "relative path with dot",
			logsDir: "./genielogs",
			file:    "genie_dat",
			want:    filepath.Join(".", "genielogs", "genie_dat.20260212_213836.log"),
		},
		{
			name:    "absolute path",
			logsDir: filepath.Join("/var", "log", "genie"),
			file:    "genie_dat",
			want:    filepath.Join("/var", "log", "genie", "genie_dat.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.file, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}
