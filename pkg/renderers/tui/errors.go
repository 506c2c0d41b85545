package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoWizard is returned by New when no wizard is supplied.
	ErrNoWizard = errors.New("tui: wizard is required")
)
