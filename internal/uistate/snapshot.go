// Package uistate models the UI-state snapshot sent with each assistant
// request and compresses it into prompt-sized text.
package uistate

// Snapshot captures what the user currently sees in the platform UI. The
// engine treats it as read-only; identifiers found here are the only
// trustworthy source of entity IDs for tool calls.
type Snapshot struct {
	Route              string      `json:"route"`
	FocusedComponentID string      `json:"focusedComponentId,omitempty"`
	LastUserAction     string      `json:"lastUserAction,omitempty"`
	Components         []Component `json:"components"`
}

// Component is one on-screen widget in the snapshot.
type Component struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Role     string         `json:"role,omitempty"`
	Visible  bool           `json:"visible"`
	Content  map[string]any `json:"content,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// idFields are the identifier keys lifted into the "Available IDs" section.
// Order matters: it fixes the emission order within a component.
var idFields = []string{
	"baseClassId",
	"courseId",
	"pathId",
	"lessonId",
	"sectionId",
	"itemId",
}

// nestedIDLists are list-valued fields whose entries carry their own "id".
// The compressor surfaces these entries in its summaries, so their IDs must
// also count as present in the snapshot.
var nestedIDLists = []string{"modules", "items"}

// AvailableIDs returns every known identifier present in the snapshot, in
// component order then field order. Duplicates are removed, first one wins.
func (s *Snapshot) AvailableIDs() []ID {
	var ids []ID
	seen := make(map[string]bool)
	add := func(field, value, componentID string) {
		key := field + ":" + value
		if value == "" || seen[key] {
			return
		}
		seen[key] = true
		ids = append(ids, ID{Field: field, Value: value, ComponentID: componentID})
	}
	for _, comp := range s.Components {
		for _, source := range []map[string]any{comp.Content, comp.Metadata} {
			for _, field := range idFields {
				if value, ok := source[field].(string); ok {
					add(field, value, comp.ID)
				}
			}
			for _, listField := range nestedIDLists {
				entries, ok := source[listField].([]any)
				if !ok {
					continue
				}
				for _, e := range entries {
					entry, ok := e.(map[string]any)
					if !ok {
						continue
					}
					if id, ok := entry["id"].(string); ok {
						add(listField+"[].id", id, comp.ID)
					}
				}
			}
		}
	}
	return ids
}

// ID is an identifier found in the snapshot, with the component it came from.
type ID struct {
	Field       string
	Value       string
	ComponentID string
}

// Contains reports whether value appears verbatim anywhere in the
// snapshot's identifier fields.
func (s *Snapshot) Contains(value string) bool {
	for _, id := range s.AvailableIDs() {
		if id.Value == value {
			return true
		}
	}
	return false
}
