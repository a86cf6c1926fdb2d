package out

import (
	"context"

	"sleeptrack/internal/modules/sleep/domain"
)

// NightStore is the durable owner of every night. Lookups of missing rows return apperrors.ErrNotFound.
type NightStore interface {
	Latest(ctx context.Context) (domain.Night, error)
	FindByID(ctx context.Context, id int64) (domain.Night, error)
	List(ctx context.Context) ([]domain.Night, error)
	Insert(ctx context.Context, night domain.Night) (int64, error)
	Update(ctx context.Context, night domain.Night) error
	DeleteAll(ctx context.Context) error
}

type JournalWriter interface {
	Write(ctx context.Context, dir string, night domain.Night) (string, error)
}
