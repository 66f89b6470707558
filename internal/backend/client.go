// Package backend is the HTTP client for the platform's CRUD collaborators:
// course/path/lesson/section endpoints, knowledge-base search, and outline
// generation. Calls carry the end user's forwarded session cookie so the
// backend applies its own authorization.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound means the backend reported the referenced entity does not
// exist, typically because an invented ID was used.
var ErrNotFound = errors.New("backend: entity not found")

// StatusError carries a non-success backend status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}

var sharedHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// Client talks to one backend base URL on behalf of one user session.
// Construct one per request; the underlying HTTP client is shared.
type Client struct {
	baseURL       string
	sessionCookie string
	httpClient    *http.Client
}

func NewClient(baseURL, sessionCookie string) *Client {
	return &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		sessionCookie: sessionCookie,
		httpClient:    sharedHTTPClient,
	}
}

type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type Path struct {
	ID          string `json:"id"`
	BaseClassID string `json:"baseClassId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type Lesson struct {
	ID     string `json:"id"`
	PathID string `json:"pathId"`
	Title  string `json:"title"`
}

type Section struct {
	ID       string `json:"id"`
	LessonID string `json:"lessonId"`
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
}

// SearchHit is one knowledge-base search result.
type SearchHit struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

type CreateCourseInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type CreatePathInput struct {
	BaseClassID string `json:"baseClassId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type CreateLessonInput struct {
	PathID string `json:"pathId"`
	Title  string `json:"title"`
}

type CreateSectionInput struct {
	LessonID string `json:"lessonId"`
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
}

func (c *Client) CreateCourse(ctx context.Context, in CreateCourseInput) (*Course, error) {
	var out Course
	if err := c.post(ctx, "/api/courses", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePath(ctx context.Context, in CreatePathInput) (*Path, error) {
	var out Path
	if err := c.post(ctx, "/api/paths", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateLesson(ctx context.Context, in CreateLessonInput) (*Lesson, error) {
	var out Lesson
	if err := c.post(ctx, "/api/lessons", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSection(ctx context.Context, in CreateSectionInput) (*Section, error) {
	var out Section
	if err := c.post(ctx, "/api/sections", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchKnowledgeBase(ctx context.Context, query string) ([]SearchHit, error) {
	endpoint := "/api/knowledge-base/search?q=" + url.QueryEscape(query)
	var out struct {
		Results []SearchHit `json:"results"`
	}
	if err := c.get(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// GenerateOutline asks the backend outline service for a structured course
// outline. The payload shape is owned by the backend and passed through.
func (c *Client) GenerateOutline(ctx context.Context, topic string, levels int) (map[string]any, error) {
	in := map[string]any{"topic": topic}
	if levels > 0 {
		in["levels"] = levels
	}
	var out map[string]any
	if err := c.post(ctx, "/api/outlines", in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, endpoint, bytes.NewReader(body), out)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.sessionCookie != "" {
		req.Header.Set("Cookie", c.sessionCookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read backend response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, strings.TrimSpace(string(respBody)))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg := strings.TrimSpace(string(respBody))
		if len(msg) > 500 {
			msg = msg[:500]
		}
		return &StatusError{Status: resp.StatusCode, Body: msg}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}
