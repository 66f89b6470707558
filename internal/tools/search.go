package tools

import (
	"context"

	"github.com/edukit/classpilot/internal/backend"
	"github.com/edukit/classpilot/internal/llm"
)

// noResultsMessage tells the model to acknowledge the empty search and fall
// back to general knowledge.
const noResultsMessage = "No knowledge-base entries matched the query. Tell the user nothing was found in the course material and answer from general knowledge."

type searchKnowledgeBaseTool struct{}

func (t *searchKnowledgeBaseTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        "search_knowledge_base",
		Description: "Search the platform knowledge base for course material matching a query.",
		Schema: objectSchema(map[string]any{
			"query": stringProp("Search query"),
		}, "query"),
	}
}

func (t *searchKnowledgeBaseTool) Execute(ctx context.Context, client *backend.Client, args map[string]any) (Output, error) {
	hits, err := client.SearchKnowledgeBase(ctx, stringArg(args, "query"))
	if err != nil {
		return Output{}, err
	}

	if len(hits) == 0 {
		return Output{
			Content: marshalContent(map[string]any{
				"results": []any{},
				"message": noResultsMessage,
			}),
		}, nil
	}

	entities := make([]Entity, 0, len(hits))
	for _, hit := range hits {
		entities = append(entities, Entity{ID: hit.ID, Title: hit.Title, URL: hit.URL})
	}
	return Output{
		Content:  marshalContent(map[string]any{"results": hits}),
		Entities: entities,
	}, nil
}
