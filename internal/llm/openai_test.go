package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIComplete(t *testing.T) {
	var captured oaiChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		resp := oaiChatResponse{
			Choices: []oaiChoice{{
				Message: &oaiMessage{
					Role: "assistant",
					ToolCalls: []oaiToolCall{{
						ID:   "call_1",
						Type: "function",
						Function: struct {
							Name      string `json:"name,omitempty"`
							Arguments string `json:"arguments,omitempty"`
						}{Name: "search_knowledge_base", Arguments: `{"query":"fractions"}`},
					}},
				},
				FinishReason: "tool_calls",
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := NewOpenAIProvider("test-key", server.URL, "gpt-4.1")
	completion, err := p.Complete(context.Background(), Request{
		Messages: []Message{
			SystemText("you are a helper"),
			UserText("find fractions material"),
		},
		Tools: []ToolSpec{{
			Name:        "search_knowledge_base",
			Description: "Search teaching material",
			Schema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{"query": map[string]interface{}{"type": "string"}},
				"required":   []string{"query"},
			},
		}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if completion.Kind != CompletionToolCalls {
		t.Errorf("kind = %q, want tool_calls", completion.Kind)
	}
	if len(completion.ToolCalls) != 1 || completion.ToolCalls[0].Name != "search_knowledge_base" {
		t.Fatalf("tool calls = %+v", completion.ToolCalls)
	}

	if len(captured.Messages) != 2 {
		t.Fatalf("sent %d messages, want 2", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" {
		t.Errorf("first message role = %q", captured.Messages[0].Role)
	}
	if len(captured.Tools) != 1 || captured.Tools[0].Function.Name != "search_knowledge_base" {
		t.Errorf("tools = %+v", captured.Tools)
	}
}

func TestOpenAICompleteUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider("test-key", server.URL, "")
	_, err := p.Complete(context.Background(), Request{Messages: []Message{UserText("hi")}})
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestBuildOpenAIMessagesToolRound(t *testing.T) {
	messages := []Message{
		UserText("create a course"),
		AssistantToolCalls("", []ToolCall{Call("c1", "create_course", map[string]any{"title": "Algebra"})}),
		ToolResultMessage("c1", "create_course", `{"id":"abc"}`),
	}
	out := buildOpenAIMessages(messages)
	if len(out) != 3 {
		t.Fatalf("got %d messages, want 3", len(out))
	}
	if len(out[1].ToolCalls) != 1 {
		t.Errorf("assistant message missing tool calls: %+v", out[1])
	}
	if out[2].Role != "tool" || out[2].ToolCallID != "c1" {
		t.Errorf("tool message = %+v", out[2])
	}
}
