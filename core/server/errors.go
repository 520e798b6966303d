package server

import "errors"

var (
	// ErrInvalidArgument is returned when a setting cannot be interpreted.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrBindFailure is returned when the listen socket cannot be bound.
	ErrBindFailure = errors.New("bind failure")
)
