package tracker_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	sleepout "sleeptrack/internal/modules/sleep/adapter/out"
	"sleeptrack/internal/modules/sleep/domain"
	"sleeptrack/internal/modules/sleep/dto"
	sleepin "sleeptrack/internal/modules/sleep/port/in"
	"sleeptrack/internal/modules/sleep/service"
	"sleeptrack/internal/modules/sleep/usecase"
	apperrors "sleeptrack/internal/platform/errors"
	"sleeptrack/internal/platform/metrics"
	"sleeptrack/internal/viewmodel/tracker"
)

type fakeClock struct {
	values []time.Time
	idx    int
}

func (f *fakeClock) Now() time.Time {
	if f.idx >= len(f.values) {
		return f.values[len(f.values)-1]
	}
	v := f.values[f.idx]
	f.idx++
	return v
}

func newUsecase(t *testing.T, times ...time.Time) sleepin.Usecase {
	t.Helper()
	store, err := sleepout.NewSQLiteNightStore(filepath.Join(t.TempDir(), "sleeptrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return usecase.NewInteractor(service.NewNightService(&fakeClock{values: times}, store, nil, ""))
}

func TestStartStopScenario(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc := newUsecase(t, time.UnixMilli(100), time.UnixMilli(200))
	c := tracker.New(uc)
	defer c.Close()

	require.NoError(t, c.Initialize(ctx))
	s := c.Snapshot()
	require.Nil(t, s.Tonight)
	require.True(t, s.StartVisible)
	require.False(t, s.StopVisible)
	require.False(t, s.ClearVisible)

	require.NoError(t, c.StartTracking(ctx))
	s = c.Snapshot()
	require.NotNil(t, s.Tonight)
	require.Equal(t, int64(1), s.Tonight.ID)
	require.True(t, s.Tonight.StartTime.Equal(time.UnixMilli(100)))
	require.True(t, s.Tonight.EndTime.Equal(time.UnixMilli(100)))
	require.Equal(t, domain.NoQuality, s.Tonight.Quality)
	require.False(t, s.StartVisible)
	require.True(t, s.StopVisible)
	require.True(t, s.ClearVisible)
	require.Contains(t, s.History, "in progress")

	require.NoError(t, c.StopTracking(ctx))
	s = c.Snapshot()
	require.NotNil(t, s.NavigateToRating)
	require.Equal(t, int64(1), s.NavigateToRating.ID)
	require.True(t, s.NavigateToRating.EndTime.Equal(time.UnixMilli(200)))
	require.False(t, s.NavigateToRating.EndTime.Before(s.NavigateToRating.StartTime))
	require.Equal(t, domain.NoQuality, s.NavigateToRating.Quality)
	require.True(t, s.StartVisible)
	require.False(t, s.StopVisible)

	stored, err := uc.GetNight(ctx, 1)
	require.NoError(t, err)
	require.True(t, stored.EndTime.Equal(time.UnixMilli(200)))

	c.AcknowledgeNavigation()
	s = c.Snapshot()
	require.Nil(t, s.NavigateToRating)
	require.Nil(t, s.Tonight)
	require.True(t, s.StartVisible)
	require.True(t, s.ClearVisible)
}

func TestStopWithoutOpenNightIsNoop(t *testing.T) {
	t.Parallel()
	c := tracker.New(newUsecase(t, time.UnixMilli(100)))
	defer c.Close()

	require.NoError(t, c.Initialize(context.Background()))
	require.NoError(t, c.StopTracking(context.Background()))
	require.Nil(t, c.Snapshot().NavigateToRating)
}

func TestStartWhileOpenIsRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc := newUsecase(t, time.UnixMilli(100), time.UnixMilli(150))
	c := tracker.New(uc)
	defer c.Close()

	require.NoError(t, c.StartTracking(ctx))
	before := c.Snapshot()
	err := c.StartTracking(ctx)
	require.ErrorIs(t, err, apperrors.ErrActiveSessionExists)
	require.Equal(t, before, c.Snapshot())

	nights, err := uc.ListNights(ctx)
	require.NoError(t, err)
	require.Len(t, nights, 1)
}

func TestInitializeRecoversNightInProgress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc := newUsecase(t, time.UnixMilli(100))
	_, err := uc.Start(ctx)
	require.NoError(t, err)

	c := tracker.New(uc)
	defer c.Close()
	require.NoError(t, c.Initialize(ctx))
	s := c.Snapshot()
	require.NotNil(t, s.Tonight)
	require.True(t, s.StopVisible)
}

func TestClearAllThenInitialize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := tracker.New(newUsecase(t, time.UnixMilli(100), time.UnixMilli(200)))
	defer c.Close()

	require.NoError(t, c.StartTracking(ctx))
	require.NoError(t, c.ClearAll(ctx))
	s := c.Snapshot()
	require.True(t, s.TransientNotice)
	require.Nil(t, s.Tonight)
	require.False(t, s.ClearVisible)

	c.AcknowledgeNotice()
	c.AcknowledgeNotice()
	require.False(t, c.Snapshot().TransientNotice)

	require.NoError(t, c.Initialize(ctx))
	s = c.Snapshot()
	require.Nil(t, s.Tonight)
	require.False(t, s.ClearVisible)
	require.Empty(t, s.History)
}

func TestSubscribersSeeOrderedSnapshots(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := tracker.New(newUsecase(t, time.UnixMilli(100), time.UnixMilli(200)))
	defer c.Close()

	ch, unsubscribe := c.Subscribe(8)
	defer unsubscribe()
	require.True(t, (<-ch).StartVisible)

	require.NoError(t, c.StartTracking(ctx))
	require.True(t, (<-ch).StopVisible)
	require.NoError(t, c.StopTracking(ctx))
	require.NotNil(t, (<-ch).NavigateToRating)
}

type failingPort struct {
	tonight dto.NightOutput
	started dto.NightOutput
	stopped dto.NightOutput
	stopErr error
	listErr error
	block   chan struct{}
}

func (f *failingPort) Tonight(context.Context) (dto.NightOutput, error) {
	if f.tonight.ID == 0 {
		return dto.NightOutput{}, apperrors.ErrNoActiveSession
	}
	return f.tonight, nil
}

func (f *failingPort) Start(context.Context) (dto.NightOutput, error) {
	f.tonight = f.started
	return f.started, nil
}

func (f *failingPort) Stop(ctx context.Context, _ dto.StopInput) (dto.NightOutput, error) {
	if f.block != nil {
		<-f.block
	}
	if f.stopErr != nil {
		return dto.NightOutput{}, f.stopErr
	}
	f.tonight = f.stopped
	return f.stopped, nil
}

func (f *failingPort) Clear(context.Context) error { return nil }

func (f *failingPort) ListNights(context.Context) ([]dto.NightOutput, error) {
	if f.tonight.ID == 0 {
		return nil, f.listErr
	}
	return []dto.NightOutput{f.tonight}, f.listErr
}

func TestFailedStopLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	port := &failingPort{
		tonight: dto.NightOutput{ID: 4, Open: true},
		stopErr: apperrors.ErrNotFound,
	}
	rec := metrics.NewRecorder()
	c := tracker.New(port, tracker.WithMetrics(rec))
	defer c.Close()

	require.NoError(t, c.Initialize(ctx))
	before := c.Snapshot()
	require.ErrorIs(t, c.StopTracking(ctx), apperrors.ErrNotFound)
	require.Equal(t, before, c.Snapshot())
	require.Nil(t, c.Snapshot().NavigateToRating)
	require.Equal(t, 1.0, testutil.ToFloat64(rec.Commands().WithLabelValues("stop", metrics.ResultError)))
}

func TestStorageFailurePropagates(t *testing.T) {
	t.Parallel()
	boom := errors.New("io error")
	c := tracker.New(&failingPort{listErr: boom})
	defer c.Close()
	require.ErrorIs(t, c.Initialize(context.Background()), boom)
}

func TestCloseDropsLateResults(t *testing.T) {
	t.Parallel()
	port := &failingPort{tonight: dto.NightOutput{ID: 2, Open: true}, block: make(chan struct{})}
	c := tracker.New(port)
	require.NoError(t, c.Initialize(context.Background()))

	done := make(chan error, 1)
	go func() { done <- c.StopTracking(context.Background()) }()
	c.Close()
	close(port.block)

	require.ErrorIs(t, <-done, apperrors.ErrClosed)
	require.Nil(t, c.Snapshot().NavigateToRating)
	require.ErrorIs(t, c.StartTracking(context.Background()), apperrors.ErrClosed)
}

func TestStoredStopReachesRatingWhenHistoryReadFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	port := &failingPort{
		tonight: dto.NightOutput{ID: 5, Open: true},
		stopped: dto.NightOutput{ID: 5, Open: false},
	}
	c := tracker.New(port)
	defer c.Close()
	require.NoError(t, c.Initialize(ctx))

	boom := errors.New("list io error")
	port.listErr = boom
	require.ErrorIs(t, c.StopTracking(ctx), boom)

	s := c.Snapshot()
	require.NotNil(t, s.NavigateToRating)
	require.Equal(t, int64(5), s.NavigateToRating.ID)
	require.False(t, s.StopVisible)
	require.True(t, s.StartVisible)
	require.Len(t, s.Nights, 1)
	require.False(t, s.Nights[0].Open)
}

func TestStoredStartShowsWhenHistoryReadFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	port := &failingPort{started: dto.NightOutput{ID: 9, Open: true}}
	c := tracker.New(port)
	defer c.Close()
	require.NoError(t, c.Initialize(ctx))

	boom := errors.New("list io error")
	port.listErr = boom
	require.ErrorIs(t, c.StartTracking(ctx), boom)

	s := c.Snapshot()
	require.NotNil(t, s.Tonight)
	require.Equal(t, int64(9), s.Tonight.ID)
	require.True(t, s.StopVisible)
	require.False(t, s.StartVisible)
	require.True(t, s.ClearVisible)
}
