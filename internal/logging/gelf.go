package logging

import (
	"fmt"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGELFHandler returns a JSON handler that ships records to a Graylog
// input. Each record becomes one GELF message; the returned writer must be
// closed on shutdown.
func NewGELFHandler(address, level string) (slog.Handler, *gelf.Writer, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to graylog at %s: %w", address, err)
	}
	w.Facility = "genie-dat"
	return slog.NewJSONHandler(w, HandlerOptions(level)), w, nil
}
