package tui

import "errors"

// ErrMissingProgressService is returned when the progress service is not provided.
var ErrMissingProgressService = errors.New("tui: progress service is required")

// ErrMissingUser is returned when no user is selected.
var ErrMissingUser = errors.New("tui: user id is required")

// ErrMissingLocation is returned when no timezone is given.
var ErrMissingLocation = errors.New("tui: location is required")
