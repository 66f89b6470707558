package workflow

import "fmt"

// Invocation is the slice of a tool call the guard inspects.
type Invocation struct {
	Name string
	Args map[string]any
}

// Decision is the guard's verdict for one invocation. Denied invocations
// become failure results, never aborting the rest of the batch.
type Decision struct {
	Approved bool
	Reason   string
}

// parentRefField maps each child-creation tool to the argument naming its
// parent entity. Tools absent from this map carry no parent reference.
var parentRefField = map[string]string{
	"create_path":    "baseClassId",
	"create_lesson":  "pathId",
	"create_section": "lessonId",
}

// parentTool maps each child-creation tool to the tool that creates its
// parent level.
var parentTool = map[string]string{
	"create_path":    "create_course",
	"create_lesson":  "create_path",
	"create_section": "create_lesson",
}

var creationTools = map[string]bool{
	"create_course":  true,
	"create_path":    true,
	"create_lesson":  true,
	"create_section": true,
}

// Guard reviews tool-call batches before dispatch. It is stateless and safe
// to share across requests; per-request workflow position comes in as State.
type Guard struct{}

func NewGuard() *Guard {
	return &Guard{}
}

// Review produces one decision per invocation, in input order. knownID
// reports whether an identifier is present verbatim in the UI snapshot or
// was produced by a tool earlier in the same orchestration pass.
//
// Two rules apply, both only to creation tools:
//
//  1. Hierarchy splitting: when a batch creates a parent and its children
//     together, only the parent may run. Children wait for the user to
//     confirm the parent's real generated ID in a later request.
//  2. ID provenance: a child creation must reference a parent ID the user
//     can actually see, or the confirmed parent from the workflow state.
//     Synthesized identifiers are rejected here and would fail at the
//     backend regardless.
func (g *Guard) Review(invocations []Invocation, knownID func(string) bool, state State) []Decision {
	inBatch := make(map[string]bool, len(invocations))
	for _, inv := range invocations {
		inBatch[inv.Name] = true
	}

	decisions := make([]Decision, len(invocations))
	for i, inv := range invocations {
		decisions[i] = g.review(inv, inBatch, knownID, state)
	}
	return decisions
}

func (g *Guard) review(inv Invocation, inBatch map[string]bool, knownID func(string) bool, state State) Decision {
	if !creationTools[inv.Name] {
		return Decision{Approved: true}
	}

	if parent, ok := parentTool[inv.Name]; ok && inBatch[parent] {
		return Decision{
			Approved: false,
			Reason: fmt.Sprintf("%s cannot run in the same pass as %s: the parent must be created first and its ID confirmed by the user before children are added", inv.Name, parent),
		}
	}

	field, ok := parentRefField[inv.Name]
	if !ok {
		// Top-level create, nothing to verify.
		return Decision{Approved: true}
	}

	parentID, _ := inv.Args[field].(string)
	if parentID == "" {
		// A missing parent ref is a schema problem, not a provenance one;
		// argument validation reports it with the right error kind.
		return Decision{Approved: true}
	}

	if knownID(parentID) {
		return Decision{Approved: true}
	}
	if state.Stage == StageConfirmed && state.ParentID == parentID {
		return Decision{Approved: true}
	}

	return Decision{
		Approved: false,
		Reason: fmt.Sprintf("%s %q is not present in the current UI context and was not produced by a confirmed workflow step; identifiers must never be invented", field, parentID),
	}
}

// ChildToolFor returns the creation tool one level below the given parent
// kind, for building continuation buttons.
func ChildToolFor(parentKind string) string {
	switch parentKind {
	case "course":
		return "create_path"
	case "path":
		return "create_lesson"
	case "lesson":
		return "create_section"
	}
	return ""
}

// KindForTool returns the entity kind a creation tool produces.
func KindForTool(toolName string) string {
	switch toolName {
	case "create_course":
		return "course"
	case "create_path":
		return "path"
	case "create_lesson":
		return "lesson"
	case "create_section":
		return "section"
	}
	return ""
}
