package session

import "errors"

var (
	// ErrPreconditionFailed is returned when an operation is rejected client-side
	// (invalid bet, insufficient balance, no active round, wrong state). No
	// request reaches the authority.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrStateConflict is returned by Start while a round is still in progress.
	ErrStateConflict = errors.New("a round is already in progress")

	// ErrBusy is returned when an action is attempted while another is in flight.
	// The attempt is dropped and the error slot is left untouched.
	ErrBusy = errors.New("another action is in flight")

	// ErrStaleAdvice is returned when an advice response arrives for a round or
	// configuration that has since been superseded. The response is discarded.
	ErrStaleAdvice = errors.New("advice response is stale")
)
