package models

import "time"

// ActivityState is the admin-controlled lifecycle state of the lottery
type ActivityState string

const (
	ActivityWaiting ActivityState = "waiting"
	ActivityOpen    ActivityState = "open"
	ActivityClosed  ActivityState = "closed"
)

// Valid reports whether s is one of the three known states
func (s ActivityState) Valid() bool {
	switch s {
	case ActivityWaiting, ActivityOpen, ActivityClosed:
		return true
	}
	return false
}

// ActivityWindow is an optional scheduled open period for the activity.
// A nil bound means unbounded on that side.
type ActivityWindow struct {
	StartAt *time.Time
	EndAt   *time.Time
}

// Configured reports whether any window bound is set
func (w ActivityWindow) Configured() bool {
	return w.StartAt != nil || w.EndAt != nil
}

// StateAt returns the state the window prescribes at time t
func (w ActivityWindow) StateAt(t time.Time) ActivityState {
	if w.StartAt != nil && t.Before(*w.StartAt) {
		return ActivityWaiting
	}
	if w.EndAt != nil && t.After(*w.EndAt) {
		return ActivityClosed
	}
	return ActivityOpen
}
