package transcript

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "transcripts.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	turns := []*Turn{
		{RequestID: "req-1", Persona: "mentor", UserText: "hi", ReplyText: "hello"},
		{RequestID: "req-2", Persona: "course-designer", UserText: "make a path",
			ReplyText: "created", ToolsUsed: []string{"create_path"}, HadFailure: false},
	}
	for _, turn := range turns {
		if err := store.Record(ctx, turn); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d turns, want 2", len(got))
	}
	byRequest := map[string]Turn{}
	for _, turn := range got {
		byRequest[turn.RequestID] = turn
	}
	second := byRequest["req-2"]
	if len(second.ToolsUsed) != 1 || second.ToolsUsed[0] != "create_path" {
		t.Errorf("tools used = %v", second.ToolsUsed)
	}
}

func TestNewStoreDisabled(t *testing.T) {
	store, err := NewStore(Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, ok := store.(*NoopStore); !ok {
		t.Errorf("disabled config should give NoopStore, got %T", store)
	}
	if err := store.Record(context.Background(), &Turn{}); err != nil {
		t.Errorf("noop record errored: %v", err)
	}
}
