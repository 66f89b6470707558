package tools

import (
	"context"

	"github.com/edukit/classpilot/internal/backend"
	"github.com/edukit/classpilot/internal/llm"
)

type generateOutlineTool struct{}

func (t *generateOutlineTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        "generate_outline",
		Description: "Generate a structured course outline for a topic. Use when the user asks to plan or outline a course before creating content.",
		Schema: objectSchema(map[string]any{
			"topic": stringProp("Topic to outline"),
			"levels": map[string]any{
				"type":        "integer",
				"description": "How many hierarchy levels to include (1-3)",
			},
		}, "topic"),
	}
}

func (t *generateOutlineTool) Execute(ctx context.Context, client *backend.Client, args map[string]any) (Output, error) {
	levels := 0
	if f, ok := args["levels"].(float64); ok {
		levels = int(f)
	}
	outline, err := client.GenerateOutline(ctx, stringArg(args, "topic"), levels)
	if err != nil {
		return Output{}, err
	}
	return Output{
		Content: marshalContent(outline),
		Outline: outline,
	}, nil
}
