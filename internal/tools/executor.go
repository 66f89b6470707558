package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edukit/classpilot/internal/backend"
	"github.com/edukit/classpilot/internal/llm"
	"github.com/edukit/classpilot/internal/workflow"
)

// ErrorKind classifies a failed invocation for the model and for logging.
type ErrorKind string

const (
	KindSchemaInvalid  ErrorKind = "schema_invalid"
	KindNotFound       ErrorKind = "not_found"
	KindDownstreamHTTP ErrorKind = "downstream_http"
	KindHandlerError   ErrorKind = "handler_error"
	KindWorkflowDenied ErrorKind = "workflow_denied"
)

// Result is the outcome of one invocation. Failures carry ErrKind and a
// message in Content; they are fed to the model like any other result.
type Result struct {
	CallID   string
	Name     string
	Content  string
	IsError  bool
	ErrKind  ErrorKind
	Entities []Entity
	Created  *CreatedEntity
	Outline  map[string]any
}

// Executor runs tool-call batches. One failed invocation never aborts its
// siblings; the caller always gets one result per call, in call order.
type Executor struct {
	registry *Registry
	guard    *workflow.Guard
}

func NewExecutor(registry *Registry, guard *workflow.Guard) *Executor {
	return &Executor{registry: registry, guard: guard}
}

// Execute runs the batch concurrently and returns results in input order.
// knownID and state feed the workflow guard's review of each invocation.
func (e *Executor) Execute(ctx context.Context, client *backend.Client, calls []llm.ToolCall, knownID func(string) bool, state workflow.State) []Result {
	calls = ensureCallIDs(calls)
	log := zerolog.Ctx(ctx)

	invocations := make([]workflow.Invocation, len(calls))
	for i, call := range calls {
		invocations[i] = workflow.Invocation{Name: call.Name, Args: looseArgs(call.Arguments)}
	}
	decisions := e.guard.Review(invocations, knownID, state)

	results := make([]Result, len(calls))
	var g errgroup.Group
	for i, call := range calls {
		i, call := i, call
		if !decisions[i].Approved {
			log.Warn().Str("tool", call.Name).Str("reason", decisions[i].Reason).Msg("tool call denied by workflow guard")
			results[i] = failure(call, KindWorkflowDenied, decisions[i].Reason)
			continue
		}
		g.Go(func() error {
			results[i] = e.executeOne(ctx, client, call)
			return nil
		})
	}
	g.Wait()

	for _, r := range results {
		event := log.Debug().Str("tool", r.Name).Str("call_id", r.CallID)
		if r.IsError {
			event = log.Warn().Str("tool", r.Name).Str("call_id", r.CallID).Str("error_kind", string(r.ErrKind))
		}
		event.Msg("tool call finished")
	}

	return results
}

func (e *Executor) executeOne(ctx context.Context, client *backend.Client, call llm.ToolCall) Result {
	tool, ok := e.registry.Get(call.Name)
	if !ok {
		return failure(call, KindSchemaInvalid, fmt.Sprintf("unknown tool %q", call.Name))
	}

	args, err := validateArgs(tool.Spec().Schema, call.Arguments)
	if err != nil {
		return failure(call, KindSchemaInvalid, err.Error())
	}

	output, err := tool.Execute(ctx, client, args)
	if err != nil {
		return failure(call, classify(err), err.Error())
	}

	return Result{
		CallID:   call.ID,
		Name:     call.Name,
		Content:  output.Content,
		Entities: output.Entities,
		Created:  output.Created,
		Outline:  output.Outline,
	}
}

func classify(err error) ErrorKind {
	if errors.Is(err, backend.ErrNotFound) {
		return KindNotFound
	}
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) {
		return KindDownstreamHTTP
	}
	return KindHandlerError
}

func failure(call llm.ToolCall, kind ErrorKind, message string) Result {
	content, _ := json.Marshal(map[string]string{
		"error": message,
		"kind":  string(kind),
	})
	return Result{
		CallID:  call.ID,
		Name:    call.Name,
		Content: string(content),
		IsError: true,
		ErrKind: kind,
	}
}

// ensureCallIDs fills in missing invocation IDs; some providers omit them.
func ensureCallIDs(calls []llm.ToolCall) []llm.ToolCall {
	out := make([]llm.ToolCall, len(calls))
	copy(out, calls)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = "call_" + uuid.NewString()
		}
	}
	return out
}

// looseArgs parses arguments without schema enforcement, for guard review.
func looseArgs(raw json.RawMessage) map[string]any {
	var args map[string]any
	if len(raw) > 0 {
		json.Unmarshal(raw, &args)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args
}
