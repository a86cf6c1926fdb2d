package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sleeptrack/internal/modules/sleep/domain"
	sleepout "sleeptrack/internal/modules/sleep/port/out"
	"sleeptrack/internal/platform/clock"
	apperrors "sleeptrack/internal/platform/errors"
)

type NightService struct {
	clock      clock.Clock
	store      sleepout.NightStore
	journal    sleepout.JournalWriter
	journalDir string
}

func NewNightService(clock clock.Clock, store sleepout.NightStore, journal sleepout.JournalWriter, journalDir string) *NightService {
	return &NightService{clock: clock, store: store, journal: journal, journalDir: journalDir}
}

// Tonight returns the most recent night only while it is still in progress.
func (s *NightService) Tonight(ctx context.Context) (domain.Night, error) {
	night, err := s.store.Latest(ctx)
	if errors.Is(err, apperrors.ErrNotFound) {
		return domain.Night{}, apperrors.ErrNoActiveSession
	}
	if err != nil {
		return domain.Night{}, err
	}
	if !night.Open() {
		return domain.Night{}, apperrors.ErrNoActiveSession
	}
	return night, nil
}

func (s *NightService) Start(ctx context.Context) (domain.Night, error) {
	_, err := s.Tonight(ctx)
	if err == nil {
		return domain.Night{}, apperrors.ErrActiveSessionExists
	}
	if !errors.Is(err, apperrors.ErrNoActiveSession) {
		return domain.Night{}, err
	}
	night := domain.Begin(s.clock.Now())
	id, err := s.store.Insert(ctx, night)
	if err != nil {
		return domain.Night{}, err
	}
	night.ID = id
	return night, nil
}

func (s *NightService) Stop(ctx context.Context, id int64) (domain.Night, error) {
	night, err := s.store.FindByID(ctx, id)
	if err != nil {
		return domain.Night{}, err
	}
	if !night.Open() {
		return domain.Night{}, fmt.Errorf("night %d: %w", id, apperrors.ErrNoActiveSession)
	}
	night = night.Finish(s.clock.Now())
	if err := s.store.Update(ctx, night); err != nil {
		return domain.Night{}, err
	}
	return night, nil
}

func (s *NightService) Rate(ctx context.Context, id int64, quality int) (domain.Night, error) {
	if err := domain.ValidateQuality(quality); err != nil {
		return domain.Night{}, err
	}
	night, err := s.store.FindByID(ctx, id)
	if err != nil {
		return domain.Night{}, err
	}
	night.Quality = quality
	if err := s.store.Update(ctx, night); err != nil {
		return domain.Night{}, err
	}
	return night, nil
}

func (s *NightService) Clear(ctx context.Context) error {
	return s.store.DeleteAll(ctx)
}

func (s *NightService) Get(ctx context.Context, id int64) (domain.Night, error) {
	return s.store.FindByID(ctx, id)
}

func (s *NightService) Latest(ctx context.Context) (domain.Night, error) {
	return s.store.Latest(ctx)
}

func (s *NightService) List(ctx context.Context) ([]domain.Night, error) {
	return s.store.List(ctx)
}

// Export writes one journal note per finished night. Nights still in progress are skipped.
func (s *NightService) Export(ctx context.Context, dir string) ([]string, error) {
	if s.journal == nil {
		return nil, fmt.Errorf("journal writer is not configured")
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = s.journalDir
	}
	if dir == "" {
		return nil, fmt.Errorf("%w: journal dir is required", apperrors.ErrInvalidInput)
	}
	nights, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(nights))
	for _, night := range nights {
		if night.Open() {
			continue
		}
		path, err := s.journal.Write(ctx, dir, night)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
