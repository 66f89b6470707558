// Package workflow guards multi-level content creation. Creating a course
// hierarchy happens one level at a time: the parent is created first, its
// real generated ID is shown to the user, and children wait for an explicit
// confirmation carrying that ID.
package workflow

import "encoding/json"

// Stage tracks where a hierarchical creation sequence stands.
type Stage string

const (
	// StageNone means no creation sequence is in flight.
	StageNone Stage = ""
	// StageAwaitingConfirmation means a parent entity was created and the
	// user has not yet approved creating its children.
	StageAwaitingConfirmation Stage = "awaiting_confirmation"
	// StageConfirmed means the user approved the next level.
	StageConfirmed Stage = "confirmed"
)

// State is the serialized workflow position carried in action-button
// payloads between requests. It is never inferred from prose.
type State struct {
	Stage           Stage    `json:"stage"`
	ParentKind      string   `json:"parentKind,omitempty"`
	ParentID        string   `json:"parentId,omitempty"`
	ParentTitle     string   `json:"parentTitle,omitempty"`
	PendingChildren []string `json:"pendingChildren,omitempty"`
}

// Active reports whether a creation sequence is mid-flight.
func (s State) Active() bool {
	return s.Stage != StageNone
}

// StateFromButtonData decodes workflow state out of a clicked button's
// payload. Payloads without workflow state yield the zero State.
func StateFromButtonData(data map[string]any) State {
	raw, ok := data["workflow"]
	if !ok {
		return State{}
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return State{}
	}
	var state State
	if err := json.Unmarshal(encoded, &state); err != nil {
		return State{}
	}
	return state
}

// Confirm advances an awaiting state to confirmed. Any other stage is
// returned unchanged.
func (s State) Confirm() State {
	if s.Stage == StageAwaitingConfirmation {
		s.Stage = StageConfirmed
	}
	return s
}

// ButtonPayload renders the state for embedding in an action button.
func (s State) ButtonPayload() map[string]any {
	return map[string]any{
		"workflow": map[string]any{
			"stage":           string(s.Stage),
			"parentKind":      s.ParentKind,
			"parentId":        s.ParentID,
			"parentTitle":     s.ParentTitle,
			"pendingChildren": s.PendingChildren,
		},
	}
}
