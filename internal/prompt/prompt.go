// Package prompt builds the system message for each assistant turn.
package prompt

import (
	"fmt"
	"strings"

	"github.com/edukit/classpilot/internal/persona"
	"github.com/edukit/classpilot/internal/workflow"
)

const preamble = `You are the classpilot assistant embedded in an educational platform.
You help instructors and students work with their courses, learning paths,
lessons, and sections. You can call tools to search the knowledge base,
generate outlines, and create content on the user's behalf. Answer in the
user's language, keep replies focused, and prefer tool results over general
knowledge when the question concerns the user's own material.`

const idRules = `ID rules (strict):
- Only use entity identifiers listed in the "Available IDs" section of the
  UI context, or IDs returned by a tool call in this conversation.
- Never invent, guess, or modify an identifier. IDs are opaque keys; an ID
  built by appending or changing characters will not exist.
- If a required ID is not available, say so and ask the user to open the
  relevant item instead of guessing.`

const hierarchyRules = `When the user asks to create a multi-level structure (for example a path
together with its lessons), create only the top-level entity now. Report the
created entity's real ID back to the user and wait for their confirmation
before creating anything beneath it.`

// Input carries everything the builder needs for one turn.
type Input struct {
	CompressedContext string
	Persona           persona.Persona
	Workflow          workflow.State
}

// Build renders the single system message. Output is deterministic given
// identical inputs and has no side effects.
func Build(in Input) string {
	var b strings.Builder

	b.WriteString(preamble)
	b.WriteString("\n\n")

	if in.Persona.Block != "" {
		fmt.Fprintf(&b, "Persona (%s):\n%s\n", in.Persona.Key, strings.TrimSpace(in.Persona.Block))
		b.WriteString("\n")
	}

	if in.CompressedContext != "" {
		b.WriteString("Current UI context:\n")
		b.WriteString(strings.TrimSpace(in.CompressedContext))
		b.WriteString("\n\n")
	}

	b.WriteString(idRules)
	b.WriteString("\n\n")
	b.WriteString(hierarchyRules)

	if step := renderWorkflowStep(in.Workflow); step != "" {
		b.WriteString("\n\n")
		b.WriteString(step)
	}

	return b.String()
}

// renderWorkflowStep describes a mid-flight creation sequence so the model
// continues from the confirmed parent instead of starting over.
func renderWorkflowStep(state workflow.State) string {
	if !state.Active() {
		return ""
	}

	var b strings.Builder
	switch state.Stage {
	case workflow.StageAwaitingConfirmation:
		fmt.Fprintf(&b, "Workflow in progress: a %s %q was already created with ID %s.\n",
			state.ParentKind, state.ParentTitle, state.ParentID)
		b.WriteString("The user has NOT yet confirmed the next step. Do not create any child entities. Ask whether to continue or stop.")
	case workflow.StageConfirmed:
		fmt.Fprintf(&b, "Workflow in progress: the user confirmed continuing under %s %q (ID %s).\n",
			state.ParentKind, state.ParentTitle, state.ParentID)
		fmt.Fprintf(&b, "Use exactly this ID as the parent when creating the next level.")
		if len(state.PendingChildren) > 0 {
			fmt.Fprintf(&b, " Requested children: %s.", strings.Join(state.PendingChildren, ", "))
		}
	}
	return b.String()
}

// FallbackNotice is appended as guidance when a search tool returned no
// entities: the reply must say it is answering from general knowledge.
const FallbackNotice = `The knowledge-base search returned no results for this question. State
clearly in your reply that nothing was found in the course material and that
you are answering from general knowledge.`
