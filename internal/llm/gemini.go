package llm

import (
	"context"
	"encoding/json"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider implements Provider using the Google Gemini API.
type GeminiProvider struct {
	apiKey string
	model  string
}

func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{apiKey: apiKey, model: model}
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) Complete(ctx context.Context, req Request) (Completion, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: p.apiKey})
	if err != nil {
		return Completion{}, upstreamError("gemini", err)
	}

	system, contents := buildGeminiContents(req.Messages)
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		config.Tools = buildGeminiTools(req.Tools)
	}
	if req.Temperature > 0 {
		temp := req.Temperature
		config.Temperature = &temp
	}
	if req.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxOutputTokens)
	}

	resp, err := client.Models.GenerateContent(ctx, chooseModel(req.Model, p.model), contents, config)
	if err != nil {
		return Completion{}, upstreamError("gemini", err)
	}

	var completion Completion
	var textParts []string
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" && !part.Thought {
				textParts = append(textParts, part.Text)
			}
			if part.FunctionCall != nil {
				args, _ := json.Marshal(part.FunctionCall.Args)
				completion.ToolCalls = append(completion.ToolCalls, ToolCall{
					ID:        part.FunctionCall.ID,
					Name:      part.FunctionCall.Name,
					Arguments: json.RawMessage(args),
				})
			}
		}
	}
	completion.Text = strings.Join(textParts, "")
	completion.Kind = CompletionText
	if len(completion.ToolCalls) > 0 {
		completion.Kind = CompletionToolCalls
	}
	return completion, nil
}

func buildGeminiContents(messages []Message) (string, []*genai.Content) {
	var systemParts []string
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			if text := collectTextParts(msg.Parts); text != "" {
				systemParts = append(systemParts, text)
			}
		case RoleUser:
			if content := buildGeminiContent(genai.RoleUser, msg.Parts); content != nil {
				contents = append(contents, content)
			}
		case RoleAssistant:
			if content := buildGeminiContent(genai.RoleModel, msg.Parts); content != nil {
				contents = append(contents, content)
			}
		case RoleTool:
			if content := buildGeminiToolResultContent(msg.Parts); content != nil {
				contents = append(contents, content)
			}
		}
	}

	return strings.Join(systemParts, "\n\n"), contents
}

func buildGeminiContent(role string, parts []Part) *genai.Content {
	content := &genai.Content{Role: role}
	for _, part := range parts {
		switch part.Type {
		case PartText:
			if part.Text != "" {
				content.Parts = append(content.Parts, &genai.Part{Text: part.Text})
			}
		case PartToolCall:
			if part.ToolCall == nil {
				continue
			}
			content.Parts = append(content.Parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					ID:   part.ToolCall.ID,
					Name: part.ToolCall.Name,
					Args: toolArgsToMap(part.ToolCall.Arguments),
				},
			})
		}
	}
	if len(content.Parts) == 0 {
		return nil
	}
	return content
}

func buildGeminiToolResultContent(parts []Part) *genai.Content {
	content := &genai.Content{Role: genai.RoleUser}
	for _, part := range parts {
		if part.Type != PartToolResult || part.ToolResult == nil {
			continue
		}
		content.Parts = append(content.Parts, &genai.Part{
			FunctionResponse: &genai.FunctionResponse{
				ID:       part.ToolResult.ID,
				Name:     part.ToolResult.Name,
				Response: map[string]any{"output": part.ToolResult.Content},
			},
		})
	}
	if len(content.Parts) == 0 {
		return nil
	}
	return content
}

func toolArgsToMap(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err == nil {
		return args
	}
	return map[string]any{"_raw": string(raw)}
}

func buildGeminiTools(specs []ToolSpec) []*genai.Tool {
	if len(specs) == 0 {
		return nil
	}
	tools := make([]*genai.Tool, 0, len(specs))
	for _, spec := range specs {
		schema := normalizeSchemaForGemini(spec.Schema)
		tools = append(tools, &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        spec.Name,
					Description: spec.Description,
					Parameters:  schemaToGenai(schema),
				},
			},
		})
	}
	return tools
}

// normalizeSchemaForGemini strips schema fields Gemini rejects and marks
// every property required, which its function calling expects.
func normalizeSchemaForGemini(schema map[string]interface{}) map[string]interface{} {
	if schema == nil {
		return schema
	}
	return normalizeGeminiSchema(geminiDeepCopy(schema))
}

func geminiDeepCopy(m map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case map[string]interface{}:
			result[k] = geminiDeepCopy(val)
		case []interface{}:
			copied := make([]interface{}, len(val))
			for i, item := range val {
				if itemMap, ok := item.(map[string]interface{}); ok {
					copied[i] = geminiDeepCopy(itemMap)
				} else {
					copied[i] = item
				}
			}
			result[k] = copied
		default:
			result[k] = v
		}
	}
	return result
}

var geminiUnsupportedFields = []string{
	"$schema", "format", "minLength", "maxLength", "minItems", "maxItems",
	"minimum", "maximum", "pattern", "default", "examples", "const",
	"additionalProperties", "title",
}

func normalizeGeminiSchema(schema map[string]interface{}) map[string]interface{} {
	for _, field := range geminiUnsupportedFields {
		delete(schema, field)
	}

	if props, ok := schema["properties"].(map[string]interface{}); ok && len(props) > 0 {
		for key, val := range props {
			if propSchema, ok := val.(map[string]interface{}); ok {
				props[key] = normalizeGeminiSchema(propSchema)
			}
		}
		required := make([]string, 0, len(props))
		for key := range props {
			required = append(required, key)
		}
		schema["required"] = required
	}

	if items, ok := schema["items"].(map[string]interface{}); ok {
		schema["items"] = normalizeGeminiSchema(items)
	}

	return schema
}

func schemaToGenai(schema map[string]interface{}) *genai.Schema {
	if schema == nil {
		return &genai.Schema{Type: genai.TypeString}
	}

	genSchema := &genai.Schema{
		Type:     genaiSchemaType(schema),
		Required: schemaRequired(schema),
	}
	if desc, ok := schema["description"].(string); ok {
		genSchema.Description = desc
	}

	if props, ok := schema["properties"].(map[string]interface{}); ok {
		genSchema.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if propMap, ok := prop.(map[string]interface{}); ok {
				genSchema.Properties[name] = schemaToGenai(propMap)
			}
		}
	}

	if items, ok := schema["items"].(map[string]interface{}); ok {
		genSchema.Items = schemaToGenai(items)
	}

	return genSchema
}

func genaiSchemaType(schema map[string]interface{}) genai.Type {
	if t, ok := schema["type"].(string); ok {
		switch t {
		case "string":
			return genai.TypeString
		case "integer":
			return genai.TypeInteger
		case "number":
			return genai.TypeNumber
		case "boolean":
			return genai.TypeBoolean
		case "array":
			return genai.TypeArray
		case "object":
			return genai.TypeObject
		}
	}
	return genai.TypeString
}
