package uistate

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gobwas/glob"
)

const (
	// maxComponents bounds how many visible components make it into the
	// summary; snapshots can be arbitrarily large.
	maxComponents = 10
	// maxFieldLen bounds any single summarized field.
	maxFieldLen = 300
)

// Compressor turns a Snapshot into bounded prompt text. Safe for
// concurrent use; it holds only immutable pattern tables.
type Compressor struct {
	summarizers []typeSummarizer
}

type typeSummarizer struct {
	pattern glob.Glob
	fn      func(Component) string
}

func NewCompressor() *Compressor {
	return &Compressor{
		summarizers: []typeSummarizer{
			{glob.MustCompile("*course*structure*"), summarizeCourseStructure},
			{glob.MustCompile("*{navigation,nav-tree,tree}*"), summarizeNavigation},
			{glob.MustCompile("*editor*"), summarizeEditor},
		},
	}
}

// Compress renders the snapshot as text. Output is deterministic: component
// order follows the snapshot, map keys are emitted sorted.
func (c *Compressor) Compress(snap *Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Route: %s\n", snap.Route)
	if snap.FocusedComponentID != "" {
		fmt.Fprintf(&b, "Focused component: %s\n", snap.FocusedComponentID)
	}
	if snap.LastUserAction != "" {
		fmt.Fprintf(&b, "Last user action: %s\n", snap.LastUserAction)
	}

	visible := 0
	for _, comp := range snap.Components {
		if !comp.Visible {
			continue
		}
		if visible >= maxComponents {
			break
		}
		visible++
		b.WriteString("- ")
		b.WriteString(truncateField(c.summarize(comp), maxFieldLen))
		b.WriteString("\n")
	}

	if ids := snap.AvailableIDs(); len(ids) > 0 {
		b.WriteString("\nAvailable IDs (use these exact values, never invent or modify IDs):\n")
		for _, id := range ids {
			fmt.Fprintf(&b, "  %s: %s (from %s)\n", id.Field, id.Value, id.ComponentID)
		}
	}

	return b.String()
}

func (c *Compressor) summarize(comp Component) string {
	lowerType := strings.ToLower(comp.Type)
	for _, s := range c.summarizers {
		if s.pattern.Match(lowerType) {
			return s.fn(comp)
		}
	}
	return summarizeGeneric(comp)
}

func summarizeCourseStructure(comp Component) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s [%s]", comp.Type, comp.ID))
	if title, ok := comp.Content["title"].(string); ok && title != "" {
		parts = append(parts, fmt.Sprintf("title=%q", title))
	}
	if modules, ok := comp.Content["modules"].([]any); ok {
		names := make([]string, 0, len(modules))
		for _, m := range modules {
			mod, ok := m.(map[string]any)
			if !ok {
				continue
			}
			name, _ := mod["title"].(string)
			id, _ := mod["id"].(string)
			if id != "" {
				names = append(names, fmt.Sprintf("%s(%s)", name, id))
			} else if name != "" {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			parts = append(parts, "modules: "+strings.Join(names, ", "))
		}
	}
	return strings.Join(parts, " ")
}

func summarizeNavigation(comp Component) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s [%s]", comp.Type, comp.ID))
	if items, ok := comp.Content["items"].([]any); ok {
		labels := make([]string, 0, len(items))
		for _, it := range items {
			item, ok := it.(map[string]any)
			if !ok {
				continue
			}
			label, _ := item["label"].(string)
			id, _ := item["id"].(string)
			if id != "" {
				labels = append(labels, fmt.Sprintf("%s(%s)", label, id))
			} else if label != "" {
				labels = append(labels, label)
			}
		}
		if len(labels) > 0 {
			parts = append(parts, "items: "+strings.Join(labels, ", "))
		}
	}
	return strings.Join(parts, " ")
}

func summarizeEditor(comp Component) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s [%s]", comp.Type, comp.ID))
	if title, ok := comp.Content["title"].(string); ok && title != "" {
		parts = append(parts, fmt.Sprintf("editing %q", title))
	}
	if itemID, ok := comp.Content["itemId"].(string); ok && itemID != "" {
		parts = append(parts, "item="+itemID)
	}
	if body, ok := comp.Content["body"].(string); ok && body != "" {
		parts = append(parts, "body: "+body)
	}
	return strings.Join(parts, " ")
}

// summarizeGeneric lists content keys with scalar values, sorted by key.
func summarizeGeneric(comp Component) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s [%s]", comp.Type, comp.ID))
	keys := make([]string, 0, len(comp.Content))
	for k := range comp.Content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kvs := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := comp.Content[k].(type) {
		case string:
			kvs = append(kvs, fmt.Sprintf("%s=%q", k, v))
		case bool:
			kvs = append(kvs, fmt.Sprintf("%s=%t", k, v))
		case float64:
			kvs = append(kvs, fmt.Sprintf("%s=%g", k, v))
		}
	}
	if len(kvs) > 0 {
		parts = append(parts, strings.Join(kvs, " "))
	}
	return strings.Join(parts, " ")
}

// truncateField caps a field's length; truncated output always ends with an
// ellipsis marker so readers can tell content was dropped. The cut lands on
// a rune boundary so multi-byte text is never split.
func truncateField(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
