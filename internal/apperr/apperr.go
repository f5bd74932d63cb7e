// Package apperr defines the error taxonomy shared by the lifecycle,
// renderer, and HTTP layer. Every guard failure carries a distinct sentinel
// so callers can tell "already decided by someone else" apart from "you lack
// permission".
package apperr

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalid marks malformed input, e.g. a missing format id.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound marks an absent format, submission, validation, or user.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks a failed capability or ownership check.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition marks a lifecycle guard violation, e.g. deciding
	// a submission that is not pending.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrAlreadyDecided marks the loser of a concurrent decide race.
	ErrAlreadyDecided = errors.New("already decided")
	// ErrRender marks a failure in the external PDF renderer.
	ErrRender = errors.New("render failure")
	// ErrTimeout marks an external call that exceeded its deadline.
	ErrTimeout = errors.New("timeout")
)

func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrForbidden}, args...)...)
}

func InvalidTransitionf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidTransition}, args...)...)
}

// Renderf wraps an external renderer error into the taxonomy while keeping
// the cause reachable via errors.Is/As.
func Renderf(err error, msg string) error {
	return fmt.Errorf("%w: %s: %v", ErrRender, msg, err)
}

// FromContext converts context cancellation errors into ErrTimeout so
// callers see a bounded external call, not a raw deadline error.
func FromContext(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
