package source

import "errors"

var (
	// ErrStarted is returned when Start is called twice.
	ErrStarted = errors.New("source already started")
	// ErrEmptyCommand is returned for a blank command line.
	ErrEmptyCommand = errors.New("empty command")
)
