package in_test

import (
	"context"
	"errors"
	"testing"

	sleepin "sleeptrack/internal/modules/sleep/adapter/in"
	"sleeptrack/internal/modules/sleep/dto"
	apperrors "sleeptrack/internal/platform/errors"
)

type fakeUsecase struct {
	tonight    dto.NightOutput
	tonightErr error
	latest     dto.NightOutput
	latestErr  error
	stopped    int64
	rated      dto.RateInput
}

func (f *fakeUsecase) Tonight(context.Context) (dto.NightOutput, error) { return f.tonight, f.tonightErr }
func (f *fakeUsecase) Start(context.Context) (dto.NightOutput, error)   { return dto.NightOutput{}, nil }
func (f *fakeUsecase) Stop(_ context.Context, in dto.StopInput) (dto.NightOutput, error) {
	f.stopped = in.NightID
	return dto.NightOutput{ID: in.NightID}, nil
}
func (f *fakeUsecase) Rate(_ context.Context, in dto.RateInput) (dto.NightOutput, error) {
	f.rated = in
	return dto.NightOutput{ID: in.NightID, Quality: in.Quality}, nil
}
func (f *fakeUsecase) Clear(context.Context) error { return nil }
func (f *fakeUsecase) GetNight(context.Context, int64) (dto.NightOutput, error) {
	return dto.NightOutput{}, nil
}
func (f *fakeUsecase) Latest(context.Context) (dto.NightOutput, error) { return f.latest, f.latestErr }
func (f *fakeUsecase) ListNights(context.Context) ([]dto.NightOutput, error) {
	return nil, nil
}
func (f *fakeUsecase) Export(context.Context, dto.ExportInput) (dto.ExportOutput, error) {
	return dto.ExportOutput{}, nil
}

func TestStopUsesTonight(t *testing.T) {
	t.Parallel()
	uc := &fakeUsecase{tonight: dto.NightOutput{ID: 3, Open: true}}
	if _, err := sleepin.NewCLIHandler(uc).Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if uc.stopped != 3 {
		t.Fatalf("expected night 3 stopped, got %d", uc.stopped)
	}

	idle := &fakeUsecase{tonightErr: apperrors.ErrNoActiveSession}
	if _, err := sleepin.NewCLIHandler(idle).Stop(context.Background()); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session, got %v", err)
	}
}

func TestRateDefaultsToLatest(t *testing.T) {
	t.Parallel()
	uc := &fakeUsecase{latest: dto.NightOutput{ID: 8}}
	h := sleepin.NewCLIHandler(uc)
	if _, err := h.Rate(context.Background(), 0, 2); err != nil {
		t.Fatalf("rate: %v", err)
	}
	if uc.rated.NightID != 8 || uc.rated.Quality != 2 {
		t.Fatalf("unexpected rate input %+v", uc.rated)
	}
	if _, err := h.Rate(context.Background(), 5, 1); err != nil || uc.rated.NightID != 5 {
		t.Fatalf("explicit id must win, got %+v err=%v", uc.rated, err)
	}

	empty := &fakeUsecase{latestErr: apperrors.ErrNotFound}
	if _, err := sleepin.NewCLIHandler(empty).Rate(context.Background(), 0, 2); err == nil {
		t.Fatalf("expected failure when nothing recorded")
	}
}
