package in

import (
	"context"

	"sleeptrack/internal/modules/sleep/dto"
)

type Usecase interface {
	Tonight(ctx context.Context) (dto.NightOutput, error)
	Start(ctx context.Context) (dto.NightOutput, error)
	Stop(ctx context.Context, input dto.StopInput) (dto.NightOutput, error)
	Rate(ctx context.Context, input dto.RateInput) (dto.NightOutput, error)
	Clear(ctx context.Context) error
	GetNight(ctx context.Context, id int64) (dto.NightOutput, error)
	Latest(ctx context.Context) (dto.NightOutput, error)
	ListNights(ctx context.Context) ([]dto.NightOutput, error)
	Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
}
