package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreatePathForwardsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/paths" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Cookie"); got != "session=abc123" {
			t.Errorf("cookie = %q", got)
		}
		var in CreatePathInput
		json.NewDecoder(r.Body).Decode(&in)
		if in.BaseClassID != "class-1" {
			t.Errorf("baseClassId = %q", in.BaseClassID)
		}
		json.NewEncoder(w).Encode(Path{ID: "path-new", BaseClassID: in.BaseClassID, Title: in.Title})
	}))
	defer server.Close()

	c := NewClient(server.URL, "session=abc123")
	path, err := c.CreatePath(context.Background(), CreatePathInput{BaseClassID: "class-1", Title: "Intro"})
	if err != nil {
		t.Fatalf("CreatePath: %v", err)
	}
	if path.ID != "path-new" {
		t.Errorf("path ID = %q", path.ID)
	}
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown path", http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	_, err := c.CreateLesson(context.Background(), CreateLessonInput{PathID: "bogus", Title: "L"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestServerErrorCarriesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	_, err := c.CreateCourse(context.Background(), CreateCourseInput{Title: "C"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d", statusErr.Status)
	}
}

func TestSearchKnowledgeBase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "photosynthesis basics" {
			t.Errorf("query = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []SearchHit{
				{ID: "kb-1", Title: "Photosynthesis", URL: "/kb/kb-1"},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	hits, err := c.SearchKnowledgeBase(context.Background(), "photosynthesis basics")
	if err != nil {
		t.Fatalf("SearchKnowledgeBase: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "kb-1" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		configured string
		production bool
		want       string
		wantErr    bool
	}{
		{
			name:    "forwarded headers win",
			headers: map[string]string{"X-Forwarded-Host": "app.example.edu", "X-Forwarded-Proto": "https"},
			want:    "https://app.example.edu",
		},
		{
			name:    "forwarded host defaults to https",
			headers: map[string]string{"X-Forwarded-Host": "app.example.edu"},
			want:    "https://app.example.edu",
		},
		{
			name:       "configured fallback",
			configured: "https://internal.example.edu",
			want:       "https://internal.example.edu",
		},
		{
			name: "development default",
			want: devBaseURL,
		},
		{
			name:       "production with no source fails",
			production: true,
			wantErr:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/assistant", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			got, err := ResolveBaseURL(r, tt.configured, tt.production)
			if tt.wantErr {
				if !errors.Is(err, ErrNoBaseURL) {
					t.Errorf("expected ErrNoBaseURL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("base URL = %q, want %q", got, tt.want)
			}
		})
	}
}
