package domain

import (
	"bytes"
	"encoding/json"
)

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentStep      *Stage  `json:"current_step,omitempty"`
	NavigationIntent *Intent `json:"navigation_intent,omitempty"`

	// Fields contains only changed, added or removed state fields, keyed by
	// their JSON name. A removed field is present with a null value.
	Fields map[string]json.RawMessage `json:"fields,omitempty"`

	// Messages holds the conversation entries appended since the old state.
	Messages []Message `json:"messages,omitempty"`
}

var nullJSON = json.RawMessage("null")

// skipped fields are reported through dedicated StateDiff members.
var skipped = map[string]bool{
	"session_id":        true,
	"current_step":      true,
	"navigation_intent": true,
	"messages":          true,
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{SessionID: newState.SessionID}

	if oldState == nil || oldState.CurrentStep != newState.CurrentStep {
		step := newState.CurrentStep
		diff.CurrentStep = &step
	}
	if oldState == nil || oldState.NavigationIntent != newState.NavigationIntent {
		intent := newState.NavigationIntent
		diff.NavigationIntent = &intent
	}

	diff.Fields = diffFields(oldState, newState)
	diff.Messages = diffMessages(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffFields(old, new *State) map[string]json.RawMessage {
	newFields := flatten(new)
	oldFields := map[string]json.RawMessage{}
	if old != nil {
		oldFields = flatten(old)
	}

	delta := make(map[string]json.RawMessage)
	for k, v := range newFields {
		if ov, ok := oldFields[k]; !ok || !bytes.Equal(ov, v) {
			delta[k] = v
		}
	}
	for k := range oldFields {
		if _, ok := newFields[k]; !ok {
			delta[k] = nullJSON
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

func flatten(s *State) map[string]json.RawMessage {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	for k := range skipped {
		delete(fields, k)
	}
	return fields
}

// diffMessages assumes the conversation log is append-only.
func diffMessages(old, new *State) []Message {
	if old == nil {
		if len(new.Messages) == 0 {
			return nil
		}
		return new.Messages
	}
	if len(new.Messages) > len(old.Messages) {
		return new.Messages[len(old.Messages):]
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.CurrentStep == nil &&
		d.NavigationIntent == nil &&
		len(d.Fields) == 0 &&
		len(d.Messages) == 0
}
