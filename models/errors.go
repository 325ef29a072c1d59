package models

import (
	"errors"
	"fmt"
)

var (
	// ErrParticipantNotFound indicates the PID does not refer to a live participant
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrRoundNotFound indicates an unknown, expired or already-resolved round token
	ErrRoundNotFound = errors.New("round not found")
)

// AlreadyParticipatedError rejects a second draw for a participant. It carries
// the recorded outcome so callers can show the prior result instead of failing
// blindly.
type AlreadyParticipatedError struct {
	PID int
	Win bool
}

func (e *AlreadyParticipatedError) Error() string {
	return fmt.Sprintf("participant %d already participated (win=%t)", e.PID, e.Win)
}
