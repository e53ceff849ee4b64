package engine

import "errors"

// Expected placement outcomes. None of them change engine state.
var (
	// ErrNoSpaceAvailable means no free block exists within the search radius.
	ErrNoSpaceAvailable = errors.New("no space available")
	// ErrOutOfBounds means the footprint would leave the tank.
	ErrOutOfBounds = errors.New("out of bounds")
	// ErrBlocked means another object owns a target tile.
	ErrBlocked = errors.New("position occupied")
	// ErrPreconditionViolation means the caller used an id that is not in
	// the Placed state. It indicates caller misuse, not bad user input.
	ErrPreconditionViolation = errors.New("object is not placed")
)
