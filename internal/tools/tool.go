// Package tools defines the assistant's callable tools and executes
// model-requested invocations against the backend.
package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/edukit/classpilot/internal/backend"
	"github.com/edukit/classpilot/internal/llm"
)

// Tool is a single callable capability. Implementations are stateless and
// shared across requests; the per-request backend client is passed into
// Execute.
type Tool interface {
	Spec() llm.ToolSpec
	Execute(ctx context.Context, client *backend.Client, args map[string]any) (Output, error)
}

// Output is a successful tool execution. Content is the JSON payload fed
// back to the model; Entities feed citation extraction; Created drives the
// hierarchical-creation workflow; Outline carries structured outline data.
type Output struct {
	Content  string
	Entities []Entity
	Created  *CreatedEntity
	Outline  map[string]any
}

// Entity is an id/title/url triple surfaced as a citation.
type Entity struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// CreatedEntity describes a freshly created content entity.
type CreatedEntity struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Registry is the process-wide tool table. Built once at startup, read-only
// afterwards.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry builds the standard tool set. Duplicate names are a
// programming error and panic at startup.
func NewRegistry() *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	r.register(
		&createCourseTool{},
		&createPathTool{},
		&createLessonTool{},
		&createSectionTool{},
		&searchKnowledgeBaseTool{},
		&generateOutlineTool{},
	)
	return r
}

func (r *Registry) register(tools ...Tool) {
	for _, tool := range tools {
		name := tool.Spec().Name
		if name == "" {
			panic("tools: tool with empty name")
		}
		if _, exists := r.tools[name]; exists {
			panic(fmt.Sprintf("tools: duplicate tool name %q", name))
		}
		if err := checkSchema(tool.Spec().Schema); err != nil {
			panic(fmt.Sprintf("tools: invalid schema for %q: %v", name, err))
		}
		r.tools[name] = tool
	}
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Specs returns every tool descriptor, sorted by name for deterministic
// prompt assembly.
func (r *Registry) Specs() []llm.ToolSpec {
	specs := make([]llm.ToolSpec, 0, len(r.tools))
	for _, tool := range r.tools {
		specs = append(specs, tool.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}
