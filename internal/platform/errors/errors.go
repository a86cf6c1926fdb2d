package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no sleep session in progress")
	ErrActiveSessionExists = errors.New("sleep session already in progress")
	// ErrClosed is returned by controllers once their lifecycle scope has been torn down.
	ErrClosed = errors.New("controller closed")
)
