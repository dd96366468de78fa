// Package command implements the named-operation dispatcher: a
// line-oriented command loop over the DFPN solver and book builder.
package command

import "errors"

// The five error kinds of the command layer. Sentinel errors,
// wrapped with fmt.Errorf("%w", ...) at the point of detection so
// callers can errors.Is against them without string matching.
// ErrMissingState and ErrBudgetExhausted are declared, but no
// operation in this package returns them.
var (
	// ErrOpenFailure: cannot open DB, or DB type tag mismatch. Fatal
	// to the requesting operation.
	ErrOpenFailure = errors.New("command: open failure")

	// ErrMissingState: expected store entry absent. Fatal: indicates
	// a logic error, surfaced as an internal error.
	ErrMissingState = errors.New("command: missing state")

	// ErrProtocol: unknown command, bad argument, no open book.
	ErrProtocol = errors.New("command: protocol error")

	// ErrAborted: user or deadline cancellation. Non-fatal; the
	// engine returns partial results alongside this error.
	ErrAborted = errors.New("command: aborted")

	// ErrBudgetExhausted: DFPN reached maxBounds without proving.
	// Non-fatal; encoded in the returned bounds.
	ErrBudgetExhausted = errors.New("command: budget exhausted")
)
