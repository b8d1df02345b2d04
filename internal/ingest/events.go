// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package ingest

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/reposcout/internal/models"
)

// SchemaVersion is the current event schema version.
// Increment when making breaking changes to SwipeEvent.
const SchemaVersion = 1

// Topic constants. The stream captures everything under swipes.>; the
// poison topic lives in the same hierarchy so failed events stay durable.
const (
	// TopicSwipes is the subject swipe events are published to.
	TopicSwipes = "swipes.events"

	// StreamName is the JetStream stream capturing all swipe subjects.
	StreamName = "SWIPES"

	// StreamSubjects is the subject filter for the stream.
	StreamSubjects = "swipes.>"
)

// SwipeEvent is one user interaction with a repository card.
//
// The event carries the full repository snapshot from the card that was
// swiped, so the consumer can populate the snapshot cache without a remote
// round trip. EventID is the JetStream message ID and the persistence
// idempotency key: the same event replayed after a crash inserts nothing.
type SwipeEvent struct {
	// Schema version for forward/backward compatibility
	SchemaVersion int `json:"schema_version,omitempty"`

	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`

	Action models.InteractionAction `json:"action"`

	// Context of the interaction
	Source   string `json:"source,omitempty"`   // originating screen
	Position int    `json:"position,omitempty"` // card position in the feed

	// Snapshot of the repository card at swipe time
	Repository models.Repository `json:"repository"`
}

// NewSwipeEvent creates an event with a unique ID, timestamp and schema
// version.
func NewSwipeEvent(userID string, repo models.Repository, action models.InteractionAction) *SwipeEvent {
	return &SwipeEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		UserID:        userID,
		OccurredAt:    time.Now().UTC(),
		Action:        action,
		Repository:    repo,
	}
}

// GetSchemaVersion returns the schema version, defaulting to 1 for events
// serialized before the field existed.
func (e *SwipeEvent) GetSchemaVersion() int {
	if e.SchemaVersion == 0 {
		return 1
	}
	return e.SchemaVersion
}

// EnsureSchemaVersion sets the schema version if not already set.
func (e *SwipeEvent) EnsureSchemaVersion() {
	if e.SchemaVersion == 0 {
		e.SchemaVersion = SchemaVersion
	}
}

// Validate checks required fields.
func (e *SwipeEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if e.UserID == "" {
		return &ValidationError{Field: "user_id", Message: "required"}
	}
	if !e.Action.IsValid() {
		return &ValidationError{Field: "action", Message: "unknown action"}
	}
	if e.Repository.ID == 0 {
		return &ValidationError{Field: "repository.id", Message: "required"}
	}
	if e.OccurredAt.IsZero() {
		return &ValidationError{Field: "occurred_at", Message: "required"}
	}
	return nil
}

// Topic returns the NATS subject for this event.
func (e *SwipeEvent) Topic() string {
	return TopicSwipes
}

// Record converts the event into its persistence form.
func (e *SwipeEvent) Record() models.InteractionRecord {
	return models.InteractionRecord{
		UserID:    e.UserID,
		RepoID:    e.Repository.ID,
		Action:    e.Action,
		Timestamp: e.OccurredAt,
		Source:    e.Source,
		Position:  e.Position,
	}
}

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
