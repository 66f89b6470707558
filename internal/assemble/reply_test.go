package assemble

import (
	"reflect"
	"testing"

	"github.com/edukit/classpilot/internal/tools"
	"github.com/edukit/classpilot/internal/workflow"
)

func TestExtractCitations(t *testing.T) {
	results := []tools.Result{
		{
			Name: "search_knowledge_base",
			Entities: []tools.Entity{
				{ID: "kb-1", Title: "Photosynthesis", URL: "/kb/kb-1"},
				{ID: "kb-2", Title: "Cell Biology"},
			},
		},
		{
			Name:     "create_path",
			Entities: []tools.Entity{{ID: "path-1", Title: "Intro"}},
			Created:  &tools.CreatedEntity{Kind: "path", ID: "path-1", Title: "Intro"},
		},
		{
			Name:    "search_knowledge_base",
			IsError: true,
			ErrKind: tools.KindDownstreamHTTP,
		},
	}

	citations := ExtractCitations(results)
	if len(citations) != 3 {
		t.Fatalf("got %d citations, want 3", len(citations))
	}
	if citations[0].ID != "kb-1" || citations[2].ID != "path-1" {
		t.Errorf("citations = %+v", citations)
	}
}

func TestExtractCitationsIdempotent(t *testing.T) {
	results := []tools.Result{
		{Name: "search_knowledge_base", Entities: []tools.Entity{{ID: "kb-1", Title: "A"}}},
	}
	first := ExtractCitations(results)
	second := ExtractCitations(results)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction not idempotent: %+v vs %+v", first, second)
	}
}

func TestExtractCitationsEmptySearch(t *testing.T) {
	results := []tools.Result{
		{Name: "search_knowledge_base", Content: `{"results":[],"message":"nothing found"}`},
	}
	citations := ExtractCitations(results)
	if len(citations) != 0 {
		t.Errorf("no-results search should contribute no citations: %+v", citations)
	}
}

func TestWorkflowButtonsSuppressGenericFallback(t *testing.T) {
	results := []tools.Result{
		{
			Name:    "create_path",
			Created: &tools.CreatedEntity{Kind: "path", ID: "path-9", Title: "Fractions"},
		},
	}
	// Text contains a generic cue, but the workflow pattern must win.
	reply := Build("Created the path. Would you like me to add lessons now?", results)

	if len(reply.ActionButtons) != 2 {
		t.Fatalf("got %d buttons: %+v", len(reply.ActionButtons), reply.ActionButtons)
	}
	if reply.ActionButtons[0].Action != "continue_workflow" {
		t.Errorf("first button = %+v", reply.ActionButtons[0])
	}
	if reply.ActionButtons[0].Label != "Yes, add lessons" {
		t.Errorf("label = %q", reply.ActionButtons[0].Label)
	}
	for _, b := range reply.ActionButtons {
		if b.ID == "generic-yes" {
			t.Error("generic fallback fired alongside specific pattern")
		}
	}

	state := workflow.StateFromButtonData(reply.ActionButtons[0].Data)
	if state.Stage != workflow.StageAwaitingConfirmation || state.ParentID != "path-9" {
		t.Errorf("button workflow state = %+v", state)
	}
}

func TestGenericYesNoFallback(t *testing.T) {
	reply := Build("I can set that up. Would you like me to proceed?", nil)
	if len(reply.ActionButtons) != 2 {
		t.Fatalf("buttons = %+v", reply.ActionButtons)
	}
	if reply.ActionButtons[0].Label != "Yes" || reply.ActionButtons[1].Label != "No" {
		t.Errorf("buttons = %+v", reply.ActionButtons)
	}
	if reply.HasToolResults {
		t.Error("hasToolResults should be false without results")
	}
}

func TestNoButtonsForPlainAnswer(t *testing.T) {
	reply := Build("Photosynthesis converts light into chemical energy.", nil)
	if len(reply.ActionButtons) != 0 {
		t.Errorf("plain answer should have no buttons: %+v", reply.ActionButtons)
	}
}

func TestButtonCap(t *testing.T) {
	var results []tools.Result
	for _, id := range []string{"p1", "p2", "p3"} {
		results = append(results, tools.Result{
			Name:    "create_path",
			Created: &tools.CreatedEntity{Kind: "path", ID: id, Title: id},
		})
	}
	reply := Build("Created three paths.", results)
	if len(reply.ActionButtons) > 5 {
		t.Errorf("button count %d exceeds cap", len(reply.ActionButtons))
	}
}

func TestOutlinePassThrough(t *testing.T) {
	outline := map[string]any{"topic": "Cells", "sections": []any{"Membrane", "Nucleus"}}
	reply := Build("Here is the outline.", []tools.Result{
		{Name: "generate_outline", Outline: outline},
	})
	if !reply.IsOutline {
		t.Error("isOutline not set")
	}
	if !reflect.DeepEqual(reply.OutlineData, outline) {
		t.Errorf("outline data = %+v", reply.OutlineData)
	}
}
