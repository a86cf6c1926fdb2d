// Package scope ties pending controller work to the lifetime of the screen that owns it.
package scope

import (
	"context"

	apperrors "sleeptrack/internal/platform/errors"
)

type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func New() *Scope {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scope{ctx: ctx, cancel: cancel}
}

// Bind derives an operation context that is cancelled when either ctx or the scope ends.
// The returned release func must be called once the operation finishes.
func (s *Scope) Bind(ctx context.Context) (context.Context, func(), error) {
	if s.Closed() {
		return nil, nil, apperrors.ErrClosed
	}
	opCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}, nil
}

func (s *Scope) Closed() bool {
	return s.ctx.Err() != nil
}

func (s *Scope) Close() {
	s.cancel()
}
