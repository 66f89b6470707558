// Package engine runs the two-phase orchestration loop: build the prompt,
// complete once with tools attached, execute any requested tools, complete
// again tool-free, and assemble the reply.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edukit/classpilot/internal/assemble"
	"github.com/edukit/classpilot/internal/backend"
	"github.com/edukit/classpilot/internal/llm"
	"github.com/edukit/classpilot/internal/persona"
	"github.com/edukit/classpilot/internal/prompt"
	"github.com/edukit/classpilot/internal/tools"
	"github.com/edukit/classpilot/internal/transcript"
	"github.com/edukit/classpilot/internal/uistate"
	"github.com/edukit/classpilot/internal/workflow"
)

// Engine holds the read-only collaborators shared across requests. One
// Engine serves all requests; per-request state lives on the stack.
type Engine struct {
	provider    llm.Provider
	registry    *tools.Registry
	executor    *tools.Executor
	personas    *persona.Registry
	compressor  *uistate.Compressor
	transcripts transcript.Store
}

func New(provider llm.Provider, registry *tools.Registry, personas *persona.Registry, transcripts transcript.Store) *Engine {
	return &Engine{
		provider:    provider,
		registry:    registry,
		executor:    tools.NewExecutor(registry, workflow.NewGuard()),
		personas:    personas,
		compressor:  uistate.NewCompressor(),
		transcripts: transcripts,
	}
}

// Handle serves one assistant request end to end. The backend client is
// per-request because its base URL and session cookie are.
func (e *Engine) Handle(ctx context.Context, req *Request, client *backend.Client) (*assemble.Reply, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if e.provider == nil {
		return nil, llm.ErrNotConfigured
	}

	requestID := uuid.NewString()
	log := zerolog.Ctx(ctx).With().Str("request_id", requestID).Logger()
	ctx = log.WithContext(ctx)

	state := resolveWorkflowState(req)
	pers := e.personas.Get(req.Persona)

	system := prompt.Build(prompt.Input{
		CompressedContext: e.compressor.Compress(req.Context),
		Persona:           pers,
		Workflow:          state,
	})

	messages := []llm.Message{llm.SystemText(system)}
	messages = append(messages, historyMessages(req.Messages)...)
	messages = append(messages, llm.UserText(req.Message))

	log.Info().Str("persona", pers.Key).Str("workflow_stage", string(state.Stage)).
		Int("history_turns", len(req.Messages)).Msg("handling request")

	start := time.Now()
	first, err := e.provider.Complete(ctx, llm.Request{
		Messages: messages,
		Tools:    e.registry.Specs(),
	})
	if err != nil {
		return nil, fmt.Errorf("first completion: %w", err)
	}
	log.Info().Dur("duration", time.Since(start)).Msg("first completion")

	if first.Kind != llm.CompletionToolCalls || len(first.ToolCalls) == 0 {
		reply := assemble.Build(first.Text, nil)
		log.Info().Dur("elapsed", time.Since(start)).Msg("reply assembled")
		e.record(ctx, requestID, req, pers.Key, reply, nil)
		return &reply, nil
	}

	knownID := func(id string) bool { return req.Context.Contains(id) }
	results := e.executor.Execute(ctx, client, first.ToolCalls, knownID, state)

	// The second completion sees the full tool round and must answer in
	// prose: no tools are attached.
	messages = append(messages, llm.AssistantToolCalls(first.Text, first.ToolCalls))
	for _, r := range results {
		if r.IsError {
			messages = append(messages, llm.ToolErrorMessage(r.CallID, r.Name, r.Content))
		} else {
			messages = append(messages, llm.ToolResultMessage(r.CallID, r.Name, r.Content))
		}
	}
	if searchCameBackEmpty(results) {
		messages = append(messages, llm.SystemText(prompt.FallbackNotice))
	}

	secondStart := time.Now()
	second, err := e.provider.Complete(ctx, llm.Request{Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("second completion: %w", err)
	}
	log.Info().Int("tool_calls", len(results)).Dur("duration", time.Since(secondStart)).Msg("second completion")

	reply := assemble.Build(second.Text, results)
	log.Info().Dur("elapsed", time.Since(start)).Msg("reply assembled")
	e.record(ctx, requestID, req, pers.Key, reply, results)
	return &reply, nil
}

// resolveWorkflowState reads the serialized workflow position from the
// clicked button payload. A confirming button click, or an affirmative
// free-text answer while a confirmation is pending, advances the state; a
// dismissal drops it.
func resolveWorkflowState(req *Request) workflow.State {
	state := workflow.StateFromButtonData(req.ButtonData)
	if !state.Active() {
		return state
	}

	action, _ := req.ButtonData["buttonAction"].(string)
	switch action {
	case "continue_workflow", "confirm":
		return state.Confirm()
	case "dismiss":
		return workflow.State{}
	}

	if state.Stage == workflow.StageAwaitingConfirmation && isAffirmative(req.Message) {
		return state.Confirm()
	}
	return state
}

var affirmatives = []string{"yes", "yep", "sure", "ok", "okay", "go ahead", "please do", "continue", "do it"}

func isAffirmative(message string) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	normalized = strings.Trim(normalized, ".!")
	for _, a := range affirmatives {
		if normalized == a {
			return true
		}
	}
	return false
}

func historyMessages(turns []Turn) []llm.Message {
	var out []llm.Message
	for _, turn := range turns {
		switch turn.Role {
		case "user":
			out = append(out, llm.UserText(turn.Content))
		case "assistant":
			out = append(out, llm.AssistantText(turn.Content))
		case "system":
			out = append(out, llm.SystemText(turn.Content))
		case "tool":
			out = append(out, llm.ToolResultMessage(turn.ToolInvocationID, "", turn.Content))
		}
	}
	return out
}

func searchCameBackEmpty(results []tools.Result) bool {
	for _, r := range results {
		if r.Name == "search_knowledge_base" && !r.IsError && len(r.Entities) == 0 {
			return true
		}
	}
	return false
}

func (e *Engine) record(ctx context.Context, requestID string, req *Request, personaKey string, reply assemble.Reply, results []tools.Result) {
	turn := &transcript.Turn{
		RequestID: requestID,
		Persona:   personaKey,
		UserText:  req.Message,
		ReplyText: reply.Text,
	}
	for _, r := range results {
		turn.ToolsUsed = append(turn.ToolsUsed, r.Name)
		if r.IsError {
			turn.HadFailure = true
		}
	}
	if err := e.transcripts.Record(ctx, turn); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to record transcript")
	}
}
