package models

// WinSpec is the configured win policy. RedCount is canonical; Probability is
// the fixed per-tile win chance derived from it.
type WinSpec struct {
	RedCount    int
	Probability float64
}

// JoinResult is returned to a client joining the activity
type JoinResult struct {
	PID          int
	Participated bool
	Win          bool
	IsNew        bool
}

// DrawResult is the outcome of a completed draw (returned to the user)
type DrawResult struct {
	PID         int
	Win         bool
	Face        Face
	Arrangement Arrangement
	WinIndex    int // winning tile position, -1 when the arrangement is all blank
}

// PickResult is the outcome of resolving a dealt round against a chosen index
type PickResult struct {
	Win         bool
	Face        Face
	Arrangement Arrangement
}
