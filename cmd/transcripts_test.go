package cmd

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestOneLine(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 60, "short"},
		{"line\none\ttwo   three", 60, "line one two three"},
		{strings.Repeat("x", 70), 10, "xxxxxxx..."},
	}
	for _, tt := range tests {
		if got := oneLine(tt.in, tt.max); got != tt.want {
			t.Errorf("oneLine(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}

	got := oneLine(strings.Repeat("é", 40), 10)
	if !utf8.ValidString(got) {
		t.Errorf("truncation split a rune: %q", got)
	}
}
