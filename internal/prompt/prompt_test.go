package prompt

import (
	"strings"
	"testing"

	"github.com/edukit/classpilot/internal/persona"
	"github.com/edukit/classpilot/internal/workflow"
)

func TestBuildDeterministic(t *testing.T) {
	in := Input{
		CompressedContext: "Route: /courses/1\nAvailable IDs:\n  pathId: path-9",
		Persona:           persona.Persona{Key: "mentor", Block: "Teach patiently."},
	}
	first := Build(in)
	for i := 0; i < 10; i++ {
		if Build(in) != first {
			t.Fatal("prompt output not deterministic")
		}
	}
}

func TestBuildIncludesSections(t *testing.T) {
	out := Build(Input{
		CompressedContext: "Route: /dashboard",
		Persona:           persona.Persona{Key: "course-designer", Block: "Think in hierarchies."},
	})

	for _, want := range []string{
		"classpilot assistant",
		"Persona (course-designer)",
		"Think in hierarchies.",
		"Current UI context:",
		"Route: /dashboard",
		"Never invent, guess, or modify an identifier",
		"create only the top-level entity",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(out, "Workflow in progress") {
		t.Error("inactive workflow should not be rendered")
	}
}

func TestBuildWorkflowAwaiting(t *testing.T) {
	out := Build(Input{
		Persona: persona.Persona{Key: "mentor", Block: "x"},
		Workflow: workflow.State{
			Stage:       workflow.StageAwaitingConfirmation,
			ParentKind:  "path",
			ParentID:    "path-42",
			ParentTitle: "Fractions",
		},
	})
	if !strings.Contains(out, "path-42") {
		t.Error("parent ID missing from workflow rendering")
	}
	if !strings.Contains(out, "Do not create any child entities") {
		t.Error("awaiting stage must forbid child creation")
	}
}

func TestBuildWorkflowConfirmed(t *testing.T) {
	out := Build(Input{
		Persona: persona.Persona{Key: "mentor", Block: "x"},
		Workflow: workflow.State{
			Stage:           workflow.StageConfirmed,
			ParentKind:      "path",
			ParentID:        "path-42",
			ParentTitle:     "Fractions",
			PendingChildren: []string{"Adding", "Comparing"},
		},
	})
	if !strings.Contains(out, "Use exactly this ID") {
		t.Error("confirmed stage must instruct using the real parent ID")
	}
	if !strings.Contains(out, "Adding, Comparing") {
		t.Error("pending children missing")
	}
}
