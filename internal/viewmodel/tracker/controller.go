// Package tracker holds the view state of the tracking screen: whether a night
// is in progress, which actions are offered, and the one-shot signals that tell
// the UI to move to the rating screen or show a "cleared" notice.
package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"sleeptrack/internal/modules/sleep/dto"
	apperrors "sleeptrack/internal/platform/errors"
	"sleeptrack/internal/platform/logging"
	"sleeptrack/internal/platform/metrics"
	"sleeptrack/internal/platform/observe"
	"sleeptrack/internal/viewmodel/scope"
)

// Port is the slice of the sleep usecase the tracking screen needs.
type Port interface {
	Tonight(ctx context.Context) (dto.NightOutput, error)
	Start(ctx context.Context) (dto.NightOutput, error)
	Stop(ctx context.Context, input dto.StopInput) (dto.NightOutput, error)
	Clear(ctx context.Context) error
	ListNights(ctx context.Context) ([]dto.NightOutput, error)
}

// State is an immutable snapshot handed to subscribers.
type State struct {
	Tonight          *dto.NightOutput
	StartVisible     bool
	StopVisible      bool
	ClearVisible     bool
	NavigateToRating *dto.NightOutput
	TransientNotice  bool
	History          string
	Nights           []dto.NightOutput
}

type Option func(*Controller)

func WithLogger(log hclog.Logger) Option {
	return func(c *Controller) { c.log = log.Named("tracker") }
}

func WithMetrics(rec *metrics.Recorder) Option {
	return func(c *Controller) { c.metrics = rec }
}

func WithHistoryFormatter(format HistoryFormatter) Option {
	return func(c *Controller) { c.format = format }
}

type Controller struct {
	port    Port
	log     hclog.Logger
	metrics *metrics.Recorder
	format  HistoryFormatter
	scope   *scope.Scope

	mu       sync.Mutex
	tonight  *dto.NightOutput
	navigate *dto.NightOutput
	notice   bool
	nights   []dto.NightOutput
	value    *observe.Value[State]
}

func New(port Port, opts ...Option) *Controller {
	c := &Controller{
		port:   port,
		log:    logging.Discard(),
		format: FormatHistory,
		scope:  scope.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.value = observe.NewValue(c.stateLocked())
	return c
}

// Initialize loads the night in progress, if any, and the history.
func (c *Controller) Initialize(ctx context.Context) error {
	return c.run(ctx, "initialize", func(ctx context.Context) (func(), error) {
		tonight, nights, err := c.refresh(ctx)
		if err != nil {
			return nil, err
		}
		return func() {
			c.tonight = tonight
			c.nights = nights
		}, nil
	})
}

// StartTracking opens a new night. It fails with ErrActiveSessionExists while one is open.
func (c *Controller) StartTracking(ctx context.Context) error {
	return c.run(ctx, "start", func(ctx context.Context) (func(), error) {
		started, err := c.port.Start(ctx)
		if err != nil {
			return nil, err
		}
		tonight, nights, err := c.refresh(ctx)
		if err != nil {
			// The night is stored; show it even though the history is stale.
			return func() {
				c.tonight = &started
				c.nights = append([]dto.NightOutput{started}, c.nights...)
			}, err
		}
		return func() {
			c.tonight = tonight
			c.nights = nights
		}, nil
	})
}

// StopTracking closes the cached night and offers it for rating. Without an
// open night it does nothing and reports no error.
func (c *Controller) StopTracking(ctx context.Context) error {
	return c.run(ctx, "stop", func(ctx context.Context) (func(), error) {
		c.mu.Lock()
		current := c.tonight
		c.mu.Unlock()
		if current == nil || !current.Open {
			c.log.Debug("stop ignored, no night in progress")
			return nil, nil
		}

		stopped, err := c.port.Stop(ctx, dto.StopInput{NightID: current.ID})
		if err != nil {
			return nil, err
		}
		nights, err := c.port.ListNights(ctx)
		if err != nil {
			// The stop is stored; still hand the night to the rating screen.
			return func() {
				c.tonight = &stopped
				c.navigate = &stopped
				c.nights = replaceNight(c.nights, stopped)
			}, err
		}
		return func() {
			c.tonight = &stopped
			c.navigate = &stopped
			c.nights = nights
		}, nil
	})
}

// ClearAll erases every night and raises the transient notice.
func (c *Controller) ClearAll(ctx context.Context) error {
	return c.run(ctx, "clear", func(ctx context.Context) (func(), error) {
		if err := c.port.Clear(ctx); err != nil {
			return nil, err
		}
		return func() {
			c.tonight = nil
			c.navigate = nil
			c.nights = nil
			c.notice = true
		}, nil
	})
}

// AcknowledgeNavigation marks the hand-off to the rating screen as done.
func (c *Controller) AcknowledgeNavigation() {
	c.update(func() {
		c.navigate = nil
		c.tonight = nil
	})
}

func (c *Controller) AcknowledgeNotice() {
	c.update(func() { c.notice = false })
}

func (c *Controller) Snapshot() State {
	return c.value.Load()
}

func (c *Controller) Subscribe(buffer int) (<-chan State, func()) {
	return c.value.Subscribe(buffer)
}

// Close cancels pending work. Results of storage calls that finish afterwards are dropped.
func (c *Controller) Close() {
	c.scope.Close()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value.Close()
}

func (c *Controller) refresh(ctx context.Context) (*dto.NightOutput, []dto.NightOutput, error) {
	var tonight *dto.NightOutput
	night, err := c.port.Tonight(ctx)
	switch {
	case err == nil:
		tonight = &night
	case !errors.Is(err, apperrors.ErrNoActiveSession):
		return nil, nil, err
	}
	nights, err := c.port.ListNights(ctx)
	if err != nil {
		return nil, nil, err
	}
	return tonight, nights, nil
}

// run executes op outside the lock and applies the mutation it returns while the
// controller is still alive. A mutation returned together with an error records
// storage writes that did succeed; the error is still reported.
func (c *Controller) run(ctx context.Context, command string, op func(context.Context) (func(), error)) (err error) {
	opCtx, release, err := c.scope.Bind(ctx)
	if err != nil {
		return err
	}
	defer release()

	started := time.Now()
	defer func() {
		c.metrics.Observe(command, started, err)
		if err != nil {
			c.log.Warn("command failed", "command", command, "error", err)
			return
		}
		c.log.Debug("command finished", "command", command, "elapsed", time.Since(started))
	}()

	apply, err := op(opCtx)
	if c.scope.Closed() {
		return apperrors.ErrClosed
	}
	if apply != nil && !c.update(apply) {
		return apperrors.ErrClosed
	}
	return err
}

func (c *Controller) update(apply func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scope.Closed() {
		return false
	}
	apply()
	return c.value.Publish(c.stateLocked())
}

func (c *Controller) stateLocked() State {
	state := State{
		Tonight:          clone(c.tonight),
		NavigateToRating: clone(c.navigate),
		TransientNotice:  c.notice,
		Nights:           append([]dto.NightOutput(nil), c.nights...),
		History:          c.format(c.nights),
	}
	state.StartVisible = c.tonight == nil || !c.tonight.Open
	state.StopVisible = !state.StartVisible
	state.ClearVisible = len(c.nights) > 0
	return state
}

func replaceNight(nights []dto.NightOutput, n dto.NightOutput) []dto.NightOutput {
	out := append([]dto.NightOutput(nil), nights...)
	for i := range out {
		if out[i].ID == n.ID {
			out[i] = n
		}
	}
	return out
}

func clone(n *dto.NightOutput) *dto.NightOutput {
	if n == nil {
		return nil
	}
	cp := *n
	return &cp
}
