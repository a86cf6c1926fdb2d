// Package quality holds the view state of the rating screen for one finished night.
package quality

import (
	"context"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"sleeptrack/internal/modules/sleep/domain"
	"sleeptrack/internal/modules/sleep/dto"
	apperrors "sleeptrack/internal/platform/errors"
	"sleeptrack/internal/platform/logging"
	"sleeptrack/internal/platform/metrics"
	"sleeptrack/internal/platform/observe"
	"sleeptrack/internal/viewmodel/scope"
)

type Port interface {
	Rate(ctx context.Context, input dto.RateInput) (dto.NightOutput, error)
}

type State struct {
	NightID       int64
	Quality       int
	ReadyToReturn bool
}

type Option func(*Recorder)

func WithLogger(log hclog.Logger) Option {
	return func(r *Recorder) { r.log = log.Named("quality") }
}

func WithMetrics(rec *metrics.Recorder) Option {
	return func(r *Recorder) { r.metrics = rec }
}

// Recorder is meant for a single rating; discard it once the UI has returned.
type Recorder struct {
	port    Port
	nightID int64
	log     hclog.Logger
	metrics *metrics.Recorder
	scope   *scope.Scope

	mu    sync.Mutex
	state State
	value *observe.Value[State]
}

func New(port Port, nightID int64, opts ...Option) *Recorder {
	r := &Recorder{
		port:    port,
		nightID: nightID,
		log:     logging.Discard(),
		scope:   scope.New(),
		state:   State{NightID: nightID, Quality: domain.NoQuality},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.value = observe.NewValue(r.state)
	return r
}

func (r *Recorder) NightID() int64 {
	return r.nightID
}

// RecordQuality persists the rating and raises ReadyToReturn. A night that no
// longer exists fails with ErrNotFound and leaves the state untouched.
func (r *Recorder) RecordQuality(ctx context.Context, quality int) (err error) {
	opCtx, release, err := r.scope.Bind(ctx)
	if err != nil {
		return err
	}
	defer release()

	started := time.Now()
	defer func() {
		r.metrics.Observe("rate", started, err)
		if err != nil {
			r.log.Warn("rating failed", "night_id", r.nightID, "quality", quality, "error", err)
			return
		}
		r.log.Debug("night rated", "night_id", r.nightID, "quality", quality)
	}()

	rated, err := r.port.Rate(opCtx, dto.RateInput{NightID: r.nightID, Quality: quality})
	if r.scope.Closed() {
		return apperrors.ErrClosed
	}
	if err != nil {
		return err
	}
	if !r.update(func(s *State) {
		s.Quality = rated.Quality
		s.ReadyToReturn = true
	}) {
		return apperrors.ErrClosed
	}
	return nil
}

func (r *Recorder) AcknowledgeReturn() {
	r.update(func(s *State) { s.ReadyToReturn = false })
}

func (r *Recorder) Snapshot() State {
	return r.value.Load()
}

func (r *Recorder) Subscribe(buffer int) (<-chan State, func()) {
	return r.value.Subscribe(buffer)
}

func (r *Recorder) Close() {
	r.scope.Close()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value.Close()
}

func (r *Recorder) update(apply func(*State)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scope.Closed() {
		return false
	}
	apply(&r.state)
	return r.value.Publish(r.state)
}
