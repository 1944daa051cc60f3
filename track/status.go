// Package track is the run-tracking core: it persists batch/job execution
// state to the run-results database, computes derived status across job
// groups, and drives sequential pipeline execution with per-member logging
// and failure propagation.
package track

// Status is the tri-state execution outcome recorded for a job run.
type Status int

const (
	// StatusIncomplete marks a run that has started and not reached a
	// terminal state.
	StatusIncomplete Status = -1
	// StatusFailed marks a run that ended in an unhandled error.
	StatusFailed Status = 0
	// StatusComplete marks a run whose every procedure succeeded.
	StatusComplete Status = 1
)

// Valid reports whether s is one of the three recognized status codes.
func (s Status) Valid() bool {
	switch s {
	case StatusIncomplete, StatusFailed, StatusComplete:
		return true
	}
	return false
}

// Terminal reports whether s ends a run (failed or complete).
func (s Status) Terminal() bool {
	return s == StatusFailed || s == StatusComplete
}

// Description returns the human status description used in logs and
// notification subjects.
func (s Status) Description() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusFailed:
		return "failed"
	case StatusIncomplete:
		return "incomplete"
	}
	return "unknown"
}
