// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller orchestrates sending a chat message: append the
// user turn, dispatch to the provider that serves the session's model,
// stream or await the reply, append the assistant turn, persisting at
// each step.
//
// Failure semantics are deliberate: the user message stays appended
// when the send fails (no rollback), and nothing retries. Streaming
// updates carry the originating session id so a UI showing a different
// session can drop them instead of painting them into the wrong
// transcript.
package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/hustlesynth/synthchat/internal/cloud"
	"github.com/hustlesynth/synthchat/internal/config"
	"github.com/hustlesynth/synthchat/internal/model"
	"github.com/hustlesynth/synthchat/internal/provider"
	"github.com/hustlesynth/synthchat/internal/session"
)

// ============================================================================
// Errors
// ============================================================================

// MissingCredentialError means the resolved provider has no API key in
// the settings document. The user message is already appended when this
// is returned.
type MissingCredentialError struct {
	Provider provider.Provider
}

// Error implements the error interface.
func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// ============================================================================
// Controller
// ============================================================================

// UpdateFunc receives streaming progress: the originating session id
// and the full reply text accumulated so far.
type UpdateFunc func(sessionID, content string)

// SettingsFunc supplies the current chat settings at send time, so a
// settings change applies to the next message without re-wiring.
type SettingsFunc func() config.Settings

// Controller drives the send-message flow over a session collection and
// one client per provider.
type Controller struct {
	sessions *session.Collection
	clients  map[provider.Provider]*cloud.Client
	settings SettingsFunc
}

// New creates a controller. clients must cover every Provider value;
// NewClients builds that map from the app config.
func New(sessions *session.Collection, clients map[provider.Provider]*cloud.Client, settings SettingsFunc) *Controller {
	return &Controller{
		sessions: sessions,
		clients:  clients,
		settings: settings,
	}
}

// NewClients builds the per-provider client map from configured base URLs.
func NewClients(p config.ProvidersConfig) map[provider.Provider]*cloud.Client {
	return map[provider.Provider]*cloud.Client{
		provider.OpenAI:      cloud.NewClient(p.OpenAIURL),
		provider.Anthropic:   cloud.NewClient(p.AnthropicURL),
		provider.HustleSynth: cloud.NewClient(p.HustleSynthURL),
	}
}

// SendMessage sends text as a user turn in the named session and
// appends the assistant's reply. Whitespace-only text is a no-op.
// onUpdate (optional) receives session-id-tagged progress during
// streaming and the final reply in both modes.
//
// On any failure after the user turn is appended, the turn stays in the
// transcript; the user resends rather than the controller retrying.
func (c *Controller) SendMessage(ctx context.Context, sessionID, text string, onUpdate UpdateFunc) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if err := c.sessions.Append(sessionID, model.NewUserMessage(text)); err != nil {
		return err
	}

	// Re-read so the request carries the transcript including the turn
	// just appended.
	s, err := c.sessions.Get(sessionID)
	if err != nil {
		return err
	}

	prov := provider.FromModel(s.Model)
	settings := c.settings()

	key := settings.KeyFor(prov.KeyName())
	if key == "" {
		return &MissingCredentialError{Provider: prov}
	}

	client, ok := c.clients[prov]
	if !ok {
		return fmt.Errorf("no client configured for provider %s", prov)
	}

	req := cloud.ChatRequest{
		Model:       s.Model,
		Messages:    s.Messages,
		Temperature: settings.Temperature,
		MaxTokens:   settings.MaxTokens,
		APIKey:      key,
	}

	var content string
	if settings.Streaming {
		content, err = client.ChatStream(ctx, req, func(accumulated string) {
			if onUpdate != nil {
				onUpdate(sessionID, accumulated)
			}
		})
	} else {
		content, err = client.Chat(ctx, req)
	}
	if err != nil {
		return err
	}

	if err := c.sessions.Append(sessionID, model.NewAssistantMessage(content)); err != nil {
		return err
	}
	if onUpdate != nil {
		onUpdate(sessionID, content)
	}
	return nil
}

// SendToActive sends text in the currently active session.
func (c *Controller) SendToActive(ctx context.Context, text string, onUpdate UpdateFunc) error {
	return c.SendMessage(ctx, c.sessions.ActiveID(), text, onUpdate)
}
