// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package models

import (
	"time"
)

// InteractionAction is the kind of swipe/interaction a user performed.
type InteractionAction string

// Interaction actions recorded by the swipe surface.
const (
	ActionView InteractionAction = "view"
	ActionLike InteractionAction = "like"
	ActionSave InteractionAction = "save"
	ActionSkip InteractionAction = "skip"
)

// IsValid reports whether the action is one of the known values.
func (a InteractionAction) IsValid() bool {
	switch a {
	case ActionView, ActionLike, ActionSave, ActionSkip:
		return true
	}
	return false
}

// InteractionRecord is one append-only interaction event. Records are owned
// by the interaction store; the recommendation core only reads aggregates and
// never deletes records.
type InteractionRecord struct {
	UserID    string            `json:"user_id"`
	RepoID    int64             `json:"repo_id"`
	Action    InteractionAction `json:"action"`
	Timestamp time.Time         `json:"timestamp"`

	// Context of the interaction for later analysis.
	Source   string `json:"source,omitempty"`   // originating screen
	Position int    `json:"position,omitempty"` // card position in the feed
}

// InteractionSummary aggregates a user's interaction history for one topic
// tag. Pool refinement consumes these: tags with likes/saves boost matching
// candidates, tags with skips penalize them.
type InteractionSummary struct {
	Tag   string `json:"tag"`
	Likes int    `json:"likes"`
	Saves int    `json:"saves"`
	Skips int    `json:"skips"`
}
