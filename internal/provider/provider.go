// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider maps model names to the chat backend that serves
// them. Model names prefixed "gpt" route to OpenAI, "claude" to
// Anthropic, and everything else to the HustleSynth platform.
package provider

import "strings"

// ============================================================================
// Provider
// ============================================================================

// Provider identifies a chat backend.
type Provider int

const (
	// HustleSynth is the platform's own backend and the fallback for
	// unrecognized model names.
	HustleSynth Provider = iota
	// OpenAI serves gpt-prefixed models.
	OpenAI
	// Anthropic serves claude-prefixed models.
	Anthropic
)

// modelPrefixes maps model-name prefixes to the backend that serves
// them. Order matters only if prefixes ever overlap; they don't today.
var modelPrefixes = []struct {
	prefix   string
	provider Provider
}{
	{"gpt", OpenAI},
	{"claude", Anthropic},
}

// FromModel resolves the backend for a model name. Unknown names fall
// back to HustleSynth rather than erroring: the platform's own models
// carry no reserved prefix.
func FromModel(model string) Provider {
	for _, p := range modelPrefixes {
		if strings.HasPrefix(model, p.prefix) {
			return p.provider
		}
	}
	return HustleSynth
}

// String returns the provider's display name.
func (p Provider) String() string {
	switch p {
	case OpenAI:
		return "OpenAI"
	case Anthropic:
		return "Anthropic"
	case HustleSynth:
		return "HustleSynth"
	default:
		return "Unknown"
	}
}

// KeyName returns the identifier used for this provider in the API key
// map of the settings document.
func (p Provider) KeyName() string {
	switch p {
	case OpenAI:
		return "openai"
	case Anthropic:
		return "anthropic"
	default:
		return "hustlesynth"
	}
}
