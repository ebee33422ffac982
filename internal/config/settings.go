// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"

	"github.com/hustlesynth/synthchat/internal/storage"
)

// =============================================================================
// CHAT SETTINGS
// =============================================================================

// SettingsKey is the storage key the settings document persists under.
const SettingsKey = "chatSettings"

// Settings is the per-user chat settings document. The JSON field names
// define the persisted layout and must not change.
type Settings struct {
	Temperature float64           `json:"temperature"`
	MaxTokens   int               `json:"maxTokens"`
	Streaming   bool              `json:"streaming"`
	APIKeys     map[string]string `json:"apiKeys"`
}

// DefaultSettings returns the settings used before the user changes
// anything: temperature 0.7, 1000 token limit, streaming on, no keys.
func DefaultSettings() Settings {
	return Settings{
		Temperature: 0.7,
		MaxTokens:   1000,
		Streaming:   true,
		APIKeys:     map[string]string{},
	}
}

// LoadSettings reads the settings document from the store, falling back
// to defaults when absent or undecodable, then applies environment key
// overrides and clamps out-of-range values.
func LoadSettings(store *storage.Store) Settings {
	s := DefaultSettings()
	if !store.Load(SettingsKey, &s) {
		s = DefaultSettings()
	}
	if s.APIKeys == nil {
		s.APIKeys = map[string]string{}
	}
	s.applyEnvKeys()
	s.clamp()
	return s
}

// SaveSettings persists the settings document.
func SaveSettings(store *storage.Store, s Settings) error {
	return store.Save(SettingsKey, s)
}

// KeyFor returns the API key stored for a provider key name, or ""
// when none is configured.
func (s Settings) KeyFor(provider string) string {
	return s.APIKeys[provider]
}

// applyEnvKeys lets environment variables supply or override API keys
// without writing them to disk.
func (s *Settings) applyEnvKeys() {
	for provider, env := range map[string]string{
		"openai":      "OPENAI_API_KEY",
		"anthropic":   "ANTHROPIC_API_KEY",
		"hustlesynth": "HUSTLESYNTH_API_KEY",
	} {
		if v := os.Getenv(env); v != "" {
			s.APIKeys[provider] = v
		}
	}
}

// clamp pulls out-of-range numeric settings back into valid bounds
// rather than rejecting the document.
func (s *Settings) clamp() {
	if s.Temperature < 0 {
		s.Temperature = 0
	}
	if s.Temperature > 2 {
		s.Temperature = 2
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = DefaultSettings().MaxTokens
	}
}
