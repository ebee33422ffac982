// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import "testing"

func TestSearchShortQueryReturnsNothing(t *testing.T) {
	idx := DefaultIndex()

	if got := idx.Search(""); got != nil {
		t.Errorf("Search(\"\") = %v, want nil", got)
	}
	if got := idx.Search("a"); got != nil {
		t.Errorf("Search(\"a\") = %v, want nil", got)
	}
}

func TestSearchMatchesTitleAndContent(t *testing.T) {
	idx := DefaultIndex()

	// Title match.
	got := idx.Search("webhooks")
	if len(got) != 1 || got[0].ID != "webhooks" {
		t.Errorf("Search(webhooks) = %v", got)
	}

	// Content-only match ("Claude" appears only in models content).
	got = idx.Search("claude")
	if len(got) != 1 || got[0].ID != "models" {
		t.Errorf("Search(claude) = %v", got)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	idx := DefaultIndex()

	lower := idx.Search("streaming")
	upper := idx.Search("STREAMING")
	if len(lower) != len(upper) || len(lower) == 0 {
		t.Errorf("case sensitivity: lower=%v upper=%v", lower, upper)
	}
}

func TestSearchCapsResults(t *testing.T) {
	idx := DefaultIndex()

	// "api" appears across many entries; results stay capped.
	got := idx.Search("api")
	if len(got) > MaxResults {
		t.Errorf("len = %d, want at most %d", len(got), MaxResults)
	}
	if len(got) != MaxResults {
		t.Errorf("len = %d, want exactly %d for a broad query", len(got), MaxResults)
	}
}

func TestSearchNoMatch(t *testing.T) {
	idx := DefaultIndex()
	if got := idx.Search("zzzzzz"); len(got) != 0 {
		t.Errorf("Search(zzzzzz) = %v, want empty", got)
	}
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		want  string
	}{
		{"simple", "Quick Start", "quick", "<mark>Quick</mark> Start"},
		{"preserves case", "API Keys", "api", "<mark>API</mark> Keys"},
		{"multiple", "key key", "key", "<mark>key</mark> <mark>key</mark>"},
		{"no match", "hello", "xyz", "hello"},
		{"empty query", "hello", "", "hello"},
		{"regex metachars literal", "a.c", ".", "a<mark>.</mark>c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Highlight(tt.text, tt.query); got != tt.want {
				t.Errorf("Highlight(%q, %q) = %q, want %q", tt.text, tt.query, got, tt.want)
			}
		})
	}
}
