package models

import "time"

// Round is a server-held, single-use, pre-dealt arrangement addressed by token.
// It supports the deal-then-pick two-phase flow and is deleted on resolution.
type Round struct {
	Token       string
	Arrangement Arrangement
	CreatedAt   time.Time
}
