// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docs implements the documentation site's search: a small
// static index searched by case-insensitive substring match.
package docs

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ============================================================================
// Index
// ============================================================================

// MinQueryLen is the shortest query that produces results, in runes.
const MinQueryLen = 2

// MaxResults caps how many results a search returns.
const MaxResults = 5

// Entry is one searchable documentation page. Title and Content are
// matched against; Excerpt is what result lists display.
type Entry struct {
	ID      string
	Title   string
	Content string
	Excerpt string
}

// Index is a searchable set of documentation entries.
type Index struct {
	entries []Entry
}

// NewIndex creates an index over the given entries.
func NewIndex(entries []Entry) *Index {
	return &Index{entries: entries}
}

// DefaultIndex returns the index of the platform documentation pages.
func DefaultIndex() *Index {
	return NewIndex([]Entry{
		{ID: "introduction", Title: "Introduction", Content: "Welcome to HustleSynth unified AI platform", Excerpt: "HustleSynth is a unified AI platform..."},
		{ID: "quickstart", Title: "Quick Start", Content: "Get started with HustleSynth API", Excerpt: "Get started in just a few minutes..."},
		{ID: "authentication", Title: "Authentication", Content: "API key authentication", Excerpt: "Learn how to authenticate your requests..."},
		{ID: "chat-completions", Title: "Chat Completions", Content: "Chat completion API endpoint", Excerpt: "Create chat completions with AI models..."},
		{ID: "models", Title: "Available Models", Content: "GPT-4 Claude OpenAI Anthropic", Excerpt: "Explore available AI models..."},
		{ID: "streaming", Title: "Streaming", Content: "Real-time streaming responses", Excerpt: "Stream responses in real-time..."},
		{ID: "webhooks", Title: "Webhooks", Content: "Event notifications webhooks", Excerpt: "Set up webhooks for events..."},
		{ID: "api-keys", Title: "API Keys", Content: "Manage API keys", Excerpt: "Create and manage your API keys..."},
		{ID: "rate-limits", Title: "Rate Limits", Content: "API rate limiting", Excerpt: "Understand rate limits and quotas..."},
		{ID: "best-practices", Title: "Best Practices", Content: "Security optimization tips", Excerpt: "Learn best practices for using the API..."},
	})
}

// ============================================================================
// Search
// ============================================================================

// Search returns entries whose title or content contains the query,
// case-insensitively, capped at MaxResults. Queries shorter than
// MinQueryLen runes return nothing.
func (idx *Index) Search(query string) []Entry {
	if utf8.RuneCountInString(query) < MinQueryLen {
		return nil
	}
	q := strings.ToLower(query)

	var out []Entry
	for _, e := range idx.entries {
		if strings.Contains(strings.ToLower(e.Title), q) ||
			strings.Contains(strings.ToLower(e.Content), q) {
			out = append(out, e)
			if len(out) == MaxResults {
				break
			}
		}
	}
	return out
}

// Highlight wraps case-insensitive matches of query in text with
// <mark> tags, preserving the original casing of each match.
func Highlight(text, query string) string {
	if query == "" {
		return text
	}
	re, err := regexp.Compile("(?i)(" + regexp.QuoteMeta(query) + ")")
	if err != nil {
		return text
	}
	return re.ReplaceAllString(text, "<mark>$1</mark>")
}
