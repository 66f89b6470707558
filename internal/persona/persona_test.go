package persona

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRegistryDefaults(t *testing.T) {
	r, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	for _, key := range []string{"mentor", "course-designer", "study-coach"} {
		p := r.Get(key)
		if p.Key != key {
			t.Errorf("Get(%q).Key = %q", key, p.Key)
		}
		if p.Block == "" {
			t.Errorf("persona %q has empty block", key)
		}
	}
}

func TestUnknownPersonaFallsBack(t *testing.T) {
	r, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	p := r.Get("galactic-overlord")
	if p.Key != GenericKey {
		t.Errorf("fallback persona = %q, want %q", p.Key, GenericKey)
	}
	if r.Get("").Key != GenericKey {
		t.Error("empty key should fall back to generic persona")
	}
}

func TestLoadRegistryDirOverride(t *testing.T) {
	dir := t.TempDir()
	custom := `personas:
  - key: mentor
    name: Strict Mentor
    block: Grade everything harshly.
  - key: quiz-master
    name: Quiz Master
    block: Ask a follow-up question after every answer.
`
	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadRegistry(dir)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if got := r.Get("mentor").Name; got != "Strict Mentor" {
		t.Errorf("override not applied, name = %q", got)
	}
	if !strings.Contains(r.Get("quiz-master").Block, "follow-up") {
		t.Error("new persona from dir not registered")
	}
}

func TestLoadRegistryMissingDir(t *testing.T) {
	if _, err := LoadRegistry("/nonexistent/personas"); err != nil {
		t.Errorf("missing dir should not be an error: %v", err)
	}
}
