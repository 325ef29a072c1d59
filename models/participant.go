package models

import "time"

// Participant represents one occupied slot in the participant store
type Participant struct {
	PID           int
	CorrelationID string // client-supplied id, empty when the client never sent one
	Participated  bool
	Win           *bool      // set exactly when Participated becomes true
	JoinedAt      time.Time
	DrawAt        *time.Time // set exactly when Participated becomes true
}

// Won reports the recorded outcome; false when the participant has not drawn yet.
func (p *Participant) Won() bool {
	return p.Win != nil && *p.Win
}

// Clone returns an independent copy so store snapshots cannot be mutated by callers.
func (p *Participant) Clone() *Participant {
	c := *p
	if p.Win != nil {
		w := *p.Win
		c.Win = &w
	}
	if p.DrawAt != nil {
		d := *p.DrawAt
		c.DrawAt = &d
	}
	return &c
}
