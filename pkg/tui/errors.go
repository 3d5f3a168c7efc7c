package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrCancelled is returned by Run when the operator leaves without saving.
	ErrCancelled = errors.New("tui: cancelled")
)
