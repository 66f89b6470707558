// Package assemble builds the externally visible reply from the final
// model text and the collected tool results. Construction is pure and
// deterministic.
package assemble

import (
	"fmt"
	"strings"

	"github.com/edukit/classpilot/internal/tools"
	"github.com/edukit/classpilot/internal/workflow"
)

// Reply is the terminal artifact returned to the caller.
type Reply struct {
	Text           string         `json:"response"`
	Citations      []Citation     `json:"citations"`
	ActionButtons  []ActionButton `json:"actionButtons"`
	HasToolResults bool           `json:"hasToolResults"`
	IsOutline      bool           `json:"isOutline,omitempty"`
	OutlineData    map[string]any `json:"outlineData,omitempty"`
}

type Citation struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

type ActionButton struct {
	ID     string         `json:"id"`
	Label  string         `json:"label"`
	Action string         `json:"action"`
	Data   map[string]any `json:"data,omitempty"`
	Style  string         `json:"style,omitempty"`
}

const maxButtons = 5

// Build assembles the reply. Citations come from tool results only; action
// buttons come from workflow state in the results plus text pattern cues.
func Build(text string, results []tools.Result) Reply {
	reply := Reply{
		Text:           text,
		Citations:      ExtractCitations(results),
		HasToolResults: len(results) > 0,
	}

	for _, r := range results {
		if r.Outline != nil {
			reply.IsOutline = true
			reply.OutlineData = r.Outline
			break
		}
	}

	reply.ActionButtons = extractButtons(text, results)
	return reply
}

// ExtractCitations lifts entity triples out of tool results. A result with
// no entities (for example an empty search) contributes nothing. The output
// is deduplicated by entity ID, first occurrence wins, and the function is
// idempotent over the same input.
func ExtractCitations(results []tools.Result) []Citation {
	citations := []Citation{}
	seen := make(map[string]bool)
	for _, r := range results {
		if r.IsError {
			continue
		}
		for _, entity := range r.Entities {
			if entity.ID == "" || seen[entity.ID] {
				continue
			}
			seen[entity.ID] = true
			citations = append(citations, Citation{ID: entity.ID, Title: entity.Title, URL: entity.URL})
		}
	}
	return citations
}

// childNoun maps a parent kind to the plural noun of its child level.
func childNoun(parentKind string) string {
	switch parentKind {
	case "course":
		return "paths"
	case "path":
		return "lessons"
	case "lesson":
		return "sections"
	}
	return ""
}

// extractButtons synthesizes up to five action buttons. A creation-workflow
// continuation takes precedence; the generic yes/no fallback only fires
// when no specific pattern matched.
func extractButtons(text string, results []tools.Result) []ActionButton {
	buttons := []ActionButton{}

	for _, r := range results {
		if r.IsError || r.Created == nil {
			continue
		}
		noun := childNoun(r.Created.Kind)
		if noun == "" {
			continue
		}
		state := workflow.State{
			Stage:       workflow.StageAwaitingConfirmation,
			ParentKind:  r.Created.Kind,
			ParentID:    r.Created.ID,
			ParentTitle: r.Created.Title,
		}
		buttons = append(buttons,
			ActionButton{
				ID:     "continue-" + r.Created.ID,
				Label:  fmt.Sprintf("Yes, add %s", noun),
				Action: "continue_workflow",
				Data:   state.ButtonPayload(),
				Style:  "primary",
			},
			ActionButton{
				ID:     "dismiss-" + r.Created.ID,
				Label:  "No, I'm done",
				Action: "dismiss",
				Style:  "secondary",
			},
		)
	}

	if len(buttons) == 0 && hasQuestionCue(text) {
		buttons = append(buttons,
			ActionButton{ID: "generic-yes", Label: "Yes", Action: "confirm", Style: "primary"},
			ActionButton{ID: "generic-no", Label: "No", Action: "dismiss", Style: "secondary"},
		)
	}

	if len(buttons) > maxButtons {
		buttons = buttons[:maxButtons]
	}
	return buttons
}

var questionCues = []string{
	"would you like",
	"do you want",
	"should i",
	"shall i",
	"want me to",
}

func hasQuestionCue(text string) bool {
	lower := strings.ToLower(text)
	for _, cue := range questionCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}
