package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStageEnter         EventType = "stage_enter"
	EventStageLeave         EventType = "stage_leave"
	EventCollaboratorCall   EventType = "collaborator_call"
	EventCollaboratorReturn EventType = "collaborator_return"
	EventIntentResolved     EventType = "intent_resolved"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StageEvent represents entry into or exit from a stage node.
// On leave, Error carries the precondition or collaborator failure, if any,
// and Cached is true when the node answered from its idempotency cache.
type StageEvent struct {
	EventBase
	Stage  Stage  `json:"stage"`
	Error  string `json:"error,omitempty"`
	Cached bool   `json:"cached,omitempty"`
}

// CollaboratorEvent represents one call to an external generator.
type CollaboratorEvent struct {
	EventBase
	Stage        Stage         `json:"stage"`
	Collaborator string        `json:"collaborator"`
	Duration     time.Duration `json:"duration,omitempty"`
	IsError      bool          `json:"is_error,omitempty"`
}

// IntentEvent reports how a message was resolved.
type IntentEvent struct {
	EventBase
	From   Stage  `json:"from"`
	Intent Intent `json:"intent"`
	Target Stage  `json:"target,omitempty"`
	Source string `json:"source"` // rule that produced the intent
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStageEnter         func(context.Context, *StageEvent)
	OnStageLeave         func(context.Context, *StageEvent)
	OnCollaboratorCall   func(context.Context, *CollaboratorEvent)
	OnCollaboratorReturn func(context.Context, *CollaboratorEvent)
	OnIntentResolved     func(context.Context, *IntentEvent)
}

// NewEventBase stamps an event for the given session.
func NewEventBase(t EventType, sessionID string) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t, SessionID: sessionID}
}
