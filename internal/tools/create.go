package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edukit/classpilot/internal/backend"
	"github.com/edukit/classpilot/internal/llm"
)

func objectSchema(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func marshalContent(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to encode result: %v"}`, err)
	}
	return string(data)
}

type createCourseTool struct{}

func (t *createCourseTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        "create_course",
		Description: "Create a new course. Returns the created course with its generated ID.",
		Schema: objectSchema(map[string]any{
			"title":       stringProp("Course title"),
			"description": stringProp("Optional course description"),
		}, "title"),
	}
}

func (t *createCourseTool) Execute(ctx context.Context, client *backend.Client, args map[string]any) (Output, error) {
	title, _ := args["title"].(string)
	description, _ := args["description"].(string)
	course, err := client.CreateCourse(ctx, backend.CreateCourseInput{Title: title, Description: description})
	if err != nil {
		return Output{}, err
	}
	return Output{
		Content:  marshalContent(course),
		Entities: []Entity{{ID: course.ID, Title: course.Title}},
		Created:  &CreatedEntity{Kind: "course", ID: course.ID, Title: course.Title},
	}, nil
}

type createPathTool struct{}

func (t *createPathTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        "create_path",
		Description: "Create a learning path inside a base class. The baseClassId must come from the available IDs in the UI context.",
		Schema: objectSchema(map[string]any{
			"baseClassId": stringProp("ID of the base class that owns the path"),
			"title":       stringProp("Path title"),
			"description": stringProp("Optional path description"),
		}, "baseClassId", "title"),
	}
}

func (t *createPathTool) Execute(ctx context.Context, client *backend.Client, args map[string]any) (Output, error) {
	title, _ := args["title"].(string)
	path, err := client.CreatePath(ctx, backend.CreatePathInput{
		BaseClassID: stringArg(args, "baseClassId"),
		Title:       title,
		Description: stringArg(args, "description"),
	})
	if err != nil {
		return Output{}, err
	}
	return Output{
		Content:  marshalContent(path),
		Entities: []Entity{{ID: path.ID, Title: path.Title}},
		Created:  &CreatedEntity{Kind: "path", ID: path.ID, Title: path.Title},
	}, nil
}

type createLessonTool struct{}

func (t *createLessonTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        "create_lesson",
		Description: "Create a lesson inside a learning path. The pathId must be a real, existing path ID.",
		Schema: objectSchema(map[string]any{
			"pathId": stringProp("ID of the path that owns the lesson"),
			"title":  stringProp("Lesson title"),
		}, "pathId", "title"),
	}
}

func (t *createLessonTool) Execute(ctx context.Context, client *backend.Client, args map[string]any) (Output, error) {
	lesson, err := client.CreateLesson(ctx, backend.CreateLessonInput{
		PathID: stringArg(args, "pathId"),
		Title:  stringArg(args, "title"),
	})
	if err != nil {
		return Output{}, err
	}
	return Output{
		Content:  marshalContent(lesson),
		Entities: []Entity{{ID: lesson.ID, Title: lesson.Title}},
		Created:  &CreatedEntity{Kind: "lesson", ID: lesson.ID, Title: lesson.Title},
	}, nil
}

type createSectionTool struct{}

func (t *createSectionTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        "create_section",
		Description: "Create a section inside a lesson. The lessonId must be a real, existing lesson ID.",
		Schema: objectSchema(map[string]any{
			"lessonId": stringProp("ID of the lesson that owns the section"),
			"title":    stringProp("Section title"),
			"content":  stringProp("Optional section body text"),
		}, "lessonId", "title"),
	}
}

func (t *createSectionTool) Execute(ctx context.Context, client *backend.Client, args map[string]any) (Output, error) {
	section, err := client.CreateSection(ctx, backend.CreateSectionInput{
		LessonID: stringArg(args, "lessonId"),
		Title:    stringArg(args, "title"),
		Content:  stringArg(args, "content"),
	})
	if err != nil {
		return Output{}, err
	}
	return Output{
		Content:  marshalContent(section),
		Entities: []Entity{{ID: section.ID, Title: section.Title}},
		Created:  &CreatedEntity{Kind: "section", ID: section.ID, Title: section.Title},
	}, nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}
