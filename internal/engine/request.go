package engine

import (
	"fmt"

	"github.com/edukit/classpilot/internal/uistate"
)

// Request is the inbound assistant request body.
type Request struct {
	Message    string            `json:"message"`
	Context    *uistate.Snapshot `json:"context"`
	Messages   []Turn            `json:"messages,omitempty"`
	Persona    string            `json:"persona,omitempty"`
	ButtonData map[string]any    `json:"buttonData,omitempty"`
}

// Turn is one prior conversation turn supplied by the caller.
type Turn struct {
	Role             string `json:"role"`
	Content          string `json:"content"`
	ToolInvocationID string `json:"toolInvocationId,omitempty"`
}

// ValidationError marks a malformed request; it is rejected before any
// model call and maps to HTTP 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

var validRoles = map[string]bool{
	"user":      true,
	"assistant": true,
	"system":    true,
	"tool":      true,
}

// Validate checks the request shape.
func (r *Request) Validate() error {
	if r.Message == "" {
		return &ValidationError{Field: "message", Reason: "must be non-empty"}
	}
	if r.Context == nil {
		return &ValidationError{Field: "context", Reason: "is required"}
	}
	for i, turn := range r.Messages {
		if !validRoles[turn.Role] {
			return &ValidationError{
				Field:  fmt.Sprintf("messages[%d].role", i),
				Reason: fmt.Sprintf("unknown role %q", turn.Role),
			}
		}
		if turn.Content == "" {
			return &ValidationError{
				Field:  fmt.Sprintf("messages[%d].content", i),
				Reason: "must be non-empty",
			}
		}
	}
	return nil
}
