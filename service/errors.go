package service

import "errors"

var (
	// ErrActivityNotOpen rejects a draw while the activity is waiting or closed
	ErrActivityNotOpen = errors.New("activity is not open")

	// ErrNoIdentity indicates no participant identity could be resolved or created
	ErrNoIdentity = errors.New("no participant identity resolvable")

	// ErrInvalidChoice rejects a chosen tile index outside the arrangement
	ErrInvalidChoice = errors.New("chosen index out of range")

	// ErrInvalidWinSpec rejects a win spec that is neither a red count in 0..3
	// nor a probability in [0,1]
	ErrInvalidWinSpec = errors.New("win spec requires redCount 0..3 or probability 0..1")

	// ErrInvalidActivityState rejects an unknown lifecycle state
	ErrInvalidActivityState = errors.New("invalid activity state")
)
