package logging

import (
	"path/filepath"
	"time"
)

// sessionStamp orders log files of the same name by start time.
const sessionStamp = "20060102_150405"

// LogFilePath returns <logsDir>/<name>.<start>.log.
func LogFilePath(logsDir, name string, start time.Time) string {
	return filepath.Join(logsDir, name+"."+start.Format(sessionStamp)+".log")
}
