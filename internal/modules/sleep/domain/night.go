package domain

import (
	"fmt"
	"time"

	apperrors "sleeptrack/internal/platform/errors"
)

const (
	// NoQuality marks a night that has not been rated yet.
	NoQuality  = -1
	MinQuality = 0
	MaxQuality = 5

	SchemaVersion = 1
)

// Night is one tracked sleep interval. EndTime equals StartTime while the night is in progress.
type Night struct {
	ID        int64
	StartTime time.Time
	EndTime   time.Time
	Quality   int
}

// Begin opens a night at the given instant.
func Begin(at time.Time) Night {
	return Night{StartTime: at, EndTime: at, Quality: NoQuality}
}

func (n Night) Open() bool {
	return n.EndTime.Equal(n.StartTime)
}

func (n Night) Rated() bool {
	return n.Quality != NoQuality
}

func (n Night) Duration() time.Duration {
	if n.Open() {
		return 0
	}
	return n.EndTime.Sub(n.StartTime)
}

// Finish closes the night. An end instant that does not fall strictly after the
// start is bumped by a millisecond so the night can never read as open again.
func (n Night) Finish(at time.Time) Night {
	if !at.After(n.StartTime) {
		at = n.StartTime.Add(time.Millisecond)
	}
	n.EndTime = at
	return n
}

func ValidateQuality(q int) error {
	if q < MinQuality || q > MaxQuality {
		return fmt.Errorf("%w: quality %d outside %d..%d", apperrors.ErrInvalidInput, q, MinQuality, MaxQuality)
	}
	return nil
}
