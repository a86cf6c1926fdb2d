package domain_test

import (
	"errors"
	"testing"
	"time"

	"sleeptrack/internal/modules/sleep/domain"
	apperrors "sleeptrack/internal/platform/errors"
)

func TestBeginProducesOpenUnratedNight(t *testing.T) {
	t.Parallel()
	at := time.UnixMilli(100)
	n := domain.Begin(at)
	if !n.Open() || n.Rated() {
		t.Fatalf("expected open unrated night, got %+v", n)
	}
	if n.Duration() != 0 {
		t.Fatalf("open night must have zero duration, got %s", n.Duration())
	}
}

func TestFinishNeverReopens(t *testing.T) {
	t.Parallel()
	start := time.UnixMilli(100)
	n := domain.Begin(start)

	same := n.Finish(start)
	if same.Open() || !same.EndTime.After(start) {
		t.Fatalf("finishing at start must still close the night, got %+v", same)
	}
	earlier := n.Finish(start.Add(-time.Hour))
	if earlier.EndTime.Before(earlier.StartTime) {
		t.Fatalf("end before start after clock skew: %+v", earlier)
	}
	later := n.Finish(time.UnixMilli(200))
	if later.Duration() != 100*time.Millisecond {
		t.Fatalf("unexpected duration %s", later.Duration())
	}
}

func TestValidateQuality(t *testing.T) {
	t.Parallel()
	for q := domain.MinQuality; q <= domain.MaxQuality; q++ {
		if err := domain.ValidateQuality(q); err != nil {
			t.Fatalf("quality %d should be valid: %v", q, err)
		}
	}
	for _, q := range []int{domain.NoQuality, 6, 100} {
		if err := domain.ValidateQuality(q); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("quality %d should be invalid, got %v", q, err)
		}
	}
}
