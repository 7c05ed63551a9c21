package schedule

import (
	"log"

	"garden-guide/internal/variety"
)

// Logger receives warnings about varieties skipped during derivation.
// *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// Deriver computes weekly and daily garden tasks for one request.
// It keeps no state besides a count of skipped checks, so a fresh Deriver
// is created per request.
type Deriver struct {
	requestID string
	logger    Logger
	skipped   int
}

// NewDeriver creates a Deriver whose warnings carry requestID.
// A nil logger writes to the standard logger.
func NewDeriver(requestID string, logger Logger) *Deriver {
	if logger == nil {
		logger = log.Default()
	}
	return &Deriver{requestID: requestID, logger: logger}
}

// Skipped returns how many per-variety checks were skipped because of
// unresolved calendar facts.
func (d *Deriver) Skipped() int {
	return d.skipped
}

// usable reports whether every listed field of v resolved, logging the
// first fault found as a warning.
func (d *Deriver) usable(v variety.Facts, task string, fields ...variety.Field) bool {
	for _, field := range fields {
		if err := v.Fault(field); err != nil {
			d.skipped++
			d.logger.Printf("Warning: [request %s] skipping %s for variety %d (%s): %s: %v",
				d.requestID, task, v.ID, v.Name, field, err)
			return false
		}
	}
	return true
}
