package usecase

import (
	"context"

	"sleeptrack/internal/modules/sleep/domain"
	"sleeptrack/internal/modules/sleep/dto"
	sleepin "sleeptrack/internal/modules/sleep/port/in"
	"sleeptrack/internal/modules/sleep/service"
)

type Interactor struct {
	svc *service.NightService
}

func NewInteractor(svc *service.NightService) sleepin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Tonight(ctx context.Context) (dto.NightOutput, error) {
	return toOutput(i.svc.Tonight(ctx))
}

func (i *Interactor) Start(ctx context.Context) (dto.NightOutput, error) {
	return toOutput(i.svc.Start(ctx))
}

func (i *Interactor) Stop(ctx context.Context, input dto.StopInput) (dto.NightOutput, error) {
	return toOutput(i.svc.Stop(ctx, input.NightID))
}

func (i *Interactor) Rate(ctx context.Context, input dto.RateInput) (dto.NightOutput, error) {
	return toOutput(i.svc.Rate(ctx, input.NightID, input.Quality))
}

func (i *Interactor) Clear(ctx context.Context) error {
	return i.svc.Clear(ctx)
}

func (i *Interactor) GetNight(ctx context.Context, id int64) (dto.NightOutput, error) {
	return toOutput(i.svc.Get(ctx, id))
}

func (i *Interactor) Latest(ctx context.Context) (dto.NightOutput, error) {
	return toOutput(i.svc.Latest(ctx))
}

func (i *Interactor) ListNights(ctx context.Context) ([]dto.NightOutput, error) {
	nights, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NightOutput, 0, len(nights))
	for _, night := range nights {
		out = append(out, mapNight(night))
	}
	return out, nil
}

func (i *Interactor) Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error) {
	paths, err := i.svc.Export(ctx, input.Dir)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	return dto.ExportOutput{Paths: paths}, nil
}

func toOutput(night domain.Night, err error) (dto.NightOutput, error) {
	if err != nil {
		return dto.NightOutput{}, err
	}
	return mapNight(night), nil
}

func mapNight(night domain.Night) dto.NightOutput {
	return dto.NightOutput{
		ID:        night.ID,
		StartTime: night.StartTime,
		EndTime:   night.EndTime,
		Quality:   night.Quality,
		Open:      night.Open(),
		Rated:     night.Rated(),
	}
}
