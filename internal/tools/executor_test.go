package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/edukit/classpilot/internal/backend"
	"github.com/edukit/classpilot/internal/llm"
	"github.com/edukit/classpilot/internal/workflow"
)

func allIDsKnown(string) bool { return true }

func newTestBackend(t *testing.T, handler http.HandlerFunc) *backend.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return backend.NewClient(server.URL, "session=test")
}

func TestExecuteBatchOrderAndIsolation(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/paths":
			json.NewEncoder(w).Encode(backend.Path{ID: "path-1", BaseClassID: "class-1", Title: "Intro"})
		case "/api/knowledge-base/search":
			http.Error(w, "search backend down", http.StatusBadGateway)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	executor := NewExecutor(NewRegistry(), workflow.NewGuard())
	calls := []llm.ToolCall{
		llm.Call("c1", "create_path", map[string]any{"baseClassId": "class-1", "title": "Intro"}),
		llm.Call("c2", "search_knowledge_base", map[string]any{"query": "fractions"}),
	}

	results := executor.Execute(context.Background(), client, calls, allIDsKnown, workflow.State{})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].CallID != "c1" || results[1].CallID != "c2" {
		t.Errorf("results out of order: %s, %s", results[0].CallID, results[1].CallID)
	}
	if results[0].IsError {
		t.Errorf("create_path should have succeeded: %s", results[0].Content)
	}
	if results[0].Created == nil || results[0].Created.ID != "path-1" {
		t.Errorf("created entity = %+v", results[0].Created)
	}
	if !results[1].IsError || results[1].ErrKind != KindDownstreamHTTP {
		t.Errorf("search failure = %+v", results[1])
	}
}

func TestExecuteSchemaValidation(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called for invalid args")
	})

	executor := NewExecutor(NewRegistry(), workflow.NewGuard())
	calls := []llm.ToolCall{
		llm.Call("c1", "create_lesson", map[string]any{"title": "Missing path"}),
		{ID: "c2", Name: "create_course", Arguments: json.RawMessage(`{"title": 42}`)},
	}

	results := executor.Execute(context.Background(), client, calls, allIDsKnown, workflow.State{})
	for i, r := range results {
		if !r.IsError || r.ErrKind != KindSchemaInvalid {
			t.Errorf("result %d = %+v, want schema_invalid failure", i, r)
		}
	}
	if !strings.Contains(results[0].Content, "pathId") {
		t.Errorf("missing-field message = %s", results[0].Content)
	}
}

func TestExecuteNotFound(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such path", http.StatusNotFound)
	})

	executor := NewExecutor(NewRegistry(), workflow.NewGuard())
	calls := []llm.ToolCall{
		llm.Call("c1", "create_lesson", map[string]any{"pathId": "path-x", "title": "L"}),
	}
	results := executor.Execute(context.Background(), client, calls, allIDsKnown, workflow.State{})
	if !results[0].IsError || results[0].ErrKind != KindNotFound {
		t.Errorf("result = %+v, want not_found failure", results[0])
	}
}

func TestExecuteGuardDenial(t *testing.T) {
	var lessonCalls int
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/paths":
			json.NewEncoder(w).Encode(backend.Path{ID: "path-real", Title: "Intro"})
		case "/api/lessons":
			lessonCalls++
			json.NewEncoder(w).Encode(backend.Lesson{ID: "lesson-1"})
		}
	})

	executor := NewExecutor(NewRegistry(), workflow.NewGuard())
	calls := []llm.ToolCall{
		llm.Call("c1", "create_path", map[string]any{"baseClassId": "class-1", "title": "Intro"}),
		llm.Call("c2", "create_lesson", map[string]any{"pathId": "whatever", "title": "L1"}),
	}
	knownID := func(id string) bool { return id == "class-1" }

	results := executor.Execute(context.Background(), client, calls, knownID, workflow.State{})
	if results[0].IsError {
		t.Errorf("parent create should run: %+v", results[0])
	}
	if !results[1].IsError || results[1].ErrKind != KindWorkflowDenied {
		t.Errorf("child create = %+v, want workflow_denied", results[1])
	}
	if lessonCalls != 0 {
		t.Errorf("denied lesson creation still hit the backend %d times", lessonCalls)
	}
}

func TestSearchNoResults(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	})

	executor := NewExecutor(NewRegistry(), workflow.NewGuard())
	calls := []llm.ToolCall{
		llm.Call("c1", "search_knowledge_base", map[string]any{"query": "photosynthesis"}),
	}
	results := executor.Execute(context.Background(), client, calls, allIDsKnown, workflow.State{})
	if results[0].IsError {
		t.Fatalf("empty search is not an error: %+v", results[0])
	}
	if len(results[0].Entities) != 0 {
		t.Errorf("no-results search must contribute no entities: %+v", results[0].Entities)
	}
	if !strings.Contains(results[0].Content, "nothing was found") {
		t.Errorf("content should instruct the fallback acknowledgment: %s", results[0].Content)
	}
}

func TestExecuteFillsMissingCallIDs(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	})
	executor := NewExecutor(NewRegistry(), workflow.NewGuard())
	calls := []llm.ToolCall{
		{Name: "search_knowledge_base", Arguments: json.RawMessage(`{"query":"x"}`)},
	}
	results := executor.Execute(context.Background(), client, calls, allIDsKnown, workflow.State{})
	if results[0].CallID == "" {
		t.Error("call ID should be generated when missing")
	}
}

func TestRegistrySpecsSorted(t *testing.T) {
	specs := NewRegistry().Specs()
	if len(specs) != 6 {
		t.Fatalf("got %d specs", len(specs))
	}
	for i := 1; i < len(specs); i++ {
		if specs[i-1].Name >= specs[i].Name {
			t.Errorf("specs not sorted: %s before %s", specs[i-1].Name, specs[i].Name)
		}
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("duplicate registration should panic")
		}
	}()
	r := NewRegistry()
	r.register(&createCourseTool{})
}
