package in

import (
	"context"
	"errors"

	"sleeptrack/internal/modules/sleep/dto"
	sleepin "sleeptrack/internal/modules/sleep/port/in"
	apperrors "sleeptrack/internal/platform/errors"
)

type CLIHandler struct {
	usecase sleepin.Usecase
}

func NewCLIHandler(usecase sleepin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Tonight(ctx context.Context) (dto.NightOutput, error) {
	return h.usecase.Tonight(ctx)
}

func (h CLIHandler) Start(ctx context.Context) (dto.NightOutput, error) {
	return h.usecase.Start(ctx)
}

// Stop closes the night in progress, if any.
func (h CLIHandler) Stop(ctx context.Context) (dto.NightOutput, error) {
	tonight, err := h.usecase.Tonight(ctx)
	if err != nil {
		return dto.NightOutput{}, err
	}
	return h.usecase.Stop(ctx, dto.StopInput{NightID: tonight.ID})
}

// Rate rates nightID, or the most recent night when nightID is zero.
func (h CLIHandler) Rate(ctx context.Context, nightID int64, quality int) (dto.NightOutput, error) {
	if nightID == 0 {
		latest, err := h.usecase.Latest(ctx)
		if errors.Is(err, apperrors.ErrNotFound) {
			return dto.NightOutput{}, errors.New("no nights recorded yet")
		}
		if err != nil {
			return dto.NightOutput{}, err
		}
		nightID = latest.ID
	}
	return h.usecase.Rate(ctx, dto.RateInput{NightID: nightID, Quality: quality})
}

func (h CLIHandler) Clear(ctx context.Context) error {
	return h.usecase.Clear(ctx)
}

func (h CLIHandler) List(ctx context.Context) ([]dto.NightOutput, error) {
	return h.usecase.ListNights(ctx)
}

func (h CLIHandler) Export(ctx context.Context, dir string) (dto.ExportOutput, error) {
	return h.usecase.Export(ctx, dto.ExportInput{Dir: dir})
}
