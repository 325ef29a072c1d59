package service

import (
	"sync"
	"time"

	"lottery/models"
)

// ActivityStatus holds the current lifecycle state and the optional scheduled
// window. It is shared by the draw coordinator, the admin surface and the
// window sweeper, so all reads and writes go through one lock.
type ActivityStatus struct {
	mu     sync.RWMutex
	state  models.ActivityState
	window models.ActivityWindow
}

// NewActivityStatus creates the shared activity status holder
func NewActivityStatus(initial models.ActivityState) *ActivityStatus {
	if !initial.Valid() {
		initial = models.ActivityWaiting
	}
	return &ActivityStatus{state: initial}
}

// State returns the current lifecycle state
func (a *ActivityStatus) State() models.ActivityState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// SetState transitions to the given state, returning the previous state and
// whether anything changed
func (a *ActivityStatus) SetState(state models.ActivityState) (models.ActivityState, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	old := a.state
	a.state = state
	return old, old != state
}

// Window returns the configured activity window
func (a *ActivityStatus) Window() models.ActivityWindow {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.window
}

// SetWindow replaces the configured activity window; nil bounds clear them
func (a *ActivityStatus) SetWindow(startAt, endAt *time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.window = models.ActivityWindow{StartAt: startAt, EndAt: endAt}
}
