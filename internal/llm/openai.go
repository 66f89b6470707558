package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultOpenAIModel   = "gpt-4.1"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
)

// defaultHTTPClient is a shared HTTP client with generous timeouts for
// long model turns.
var defaultHTTPClient = &http.Client{
	Timeout: 10 * time.Minute,
}

// OpenAIProvider implements Provider against the OpenAI chat completions
// API. Requests go over plain HTTP so any compatible endpoint works via
// baseURL; the SDK client only serves ListModels.
type OpenAIProvider struct {
	client  *openai.Client
	apiKey  string
	baseURL string
	model   string
}

func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	if model == "" {
		model = defaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != defaultOpenAIBaseURL {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		client:  &client,
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

// ListModels returns the models available behind the configured endpoint.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]string, error) {
	page, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

type oaiChatRequest struct {
	Model       string       `json:"model"`
	Messages    []oaiMessage `json:"messages"`
	Tools       []oaiTool    `json:"tools,omitempty"`
	Temperature *float64     `json:"temperature,omitempty"`
	MaxTokens   *int         `json:"max_tokens,omitempty"`
}

type oaiMessage struct {
	Role       string        `json:"role"`
	Content    string        `json:"content,omitempty"`
	ToolCalls  []oaiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
}

type oaiTool struct {
	Type     string      `json:"type"`
	Function oaiFunction `json:"function"`
}

type oaiFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type oaiToolCall struct {
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function,omitempty"`
}

type oaiChatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []oaiChoice  `json:"choices"`
	Error   *oaiAPIError `json:"error,omitempty"`
}

type oaiChoice struct {
	Index        int         `json:"index"`
	Message      *oaiMessage `json:"message,omitempty"`
	FinishReason string      `json:"finish_reason"`
}

type oaiAPIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (Completion, error) {
	chatReq := oaiChatRequest{
		Model:    chooseModel(req.Model, p.model),
		Messages: buildOpenAIMessages(req.Messages),
	}
	if len(req.Tools) > 0 {
		tools, err := buildOpenAITools(req.Tools)
		if err != nil {
			return Completion{}, err
		}
		chatReq.Tools = tools
	}
	if req.Temperature > 0 {
		temp := float64(req.Temperature)
		chatReq.Temperature = &temp
	}
	if req.MaxOutputTokens > 0 {
		max := req.MaxOutputTokens
		chatReq.MaxTokens = &max
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return Completion{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Completion{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := defaultHTTPClient.Do(httpReq)
	if err != nil {
		return Completion{}, upstreamError("openai", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, upstreamError("openai", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Completion{}, upstreamStatusError("openai", resp.StatusCode, string(respBody))
	}

	var chatResp oaiChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return Completion{}, upstreamError("openai", err)
	}
	if chatResp.Error != nil {
		return Completion{}, upstreamStatusError("openai", resp.StatusCode, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message == nil {
		return Completion{}, upstreamError("openai", fmt.Errorf("empty response"))
	}

	msg := chatResp.Choices[0].Message
	completion := Completion{Kind: CompletionText, Text: msg.Content}
	for _, call := range msg.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: json.RawMessage(call.Function.Arguments),
		})
	}
	if len(completion.ToolCalls) > 0 {
		completion.Kind = CompletionToolCalls
	}
	return completion, nil
}

func buildOpenAIMessages(messages []Message) []oaiMessage {
	var result []oaiMessage
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem, RoleUser, RoleAssistant:
			text, toolCalls := splitOpenAIParts(msg.Parts)
			if msg.Role == RoleAssistant && len(toolCalls) > 0 {
				result = append(result, oaiMessage{
					Role:      "assistant",
					Content:   text,
					ToolCalls: toolCalls,
				})
				continue
			}
			if text == "" {
				continue
			}
			result = append(result, oaiMessage{Role: string(msg.Role), Content: text})
		case RoleTool:
			for _, part := range msg.Parts {
				if part.Type != PartToolResult || part.ToolResult == nil {
					continue
				}
				result = append(result, oaiMessage{
					Role:       "tool",
					Content:    part.ToolResult.Content,
					ToolCallID: part.ToolResult.ID,
				})
			}
		}
	}
	return result
}

func splitOpenAIParts(parts []Part) (string, []oaiToolCall) {
	var textParts []string
	var toolCalls []oaiToolCall
	for _, part := range parts {
		switch part.Type {
		case PartText:
			if part.Text != "" {
				textParts = append(textParts, part.Text)
			}
		case PartToolCall:
			if part.ToolCall == nil {
				continue
			}
			toolCalls = append(toolCalls, oaiToolCall{
				ID:   part.ToolCall.ID,
				Type: "function",
				Function: struct {
					Name      string `json:"name,omitempty"`
					Arguments string `json:"arguments,omitempty"`
				}{
					Name:      part.ToolCall.Name,
					Arguments: string(part.ToolCall.Arguments),
				},
			})
		}
	}
	return strings.Join(textParts, ""), toolCalls
}

func buildOpenAITools(specs []ToolSpec) ([]oaiTool, error) {
	tools := make([]oaiTool, 0, len(specs))
	for _, spec := range specs {
		schema, err := json.Marshal(spec.Schema)
		if err != nil {
			return nil, fmt.Errorf("marshal tool schema %s: %w", spec.Name, err)
		}
		tools = append(tools, oaiTool{
			Type: "function",
			Function: oaiFunction{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  schema,
			},
		})
	}
	return tools, nil
}
