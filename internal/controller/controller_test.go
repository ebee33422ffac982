// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hustlesynth/synthchat/internal/cloud"
	"github.com/hustlesynth/synthchat/internal/config"
	"github.com/hustlesynth/synthchat/internal/model"
	"github.com/hustlesynth/synthchat/internal/provider"
	"github.com/hustlesynth/synthchat/internal/session"
	"github.com/hustlesynth/synthchat/internal/storage"
)

func newTestSessions(t *testing.T, defaultModel string) *session.Collection {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	c := session.NewCollection(store, defaultModel)
	if err := c.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return c
}

func settingsWith(streaming bool, keys map[string]string) SettingsFunc {
	return func() config.Settings {
		s := config.DefaultSettings()
		s.Streaming = streaming
		s.APIKeys = keys
		return s
	}
}

// allClients points every provider at the same test server.
func allClients(url string) map[provider.Provider]*cloud.Client {
	return map[provider.Provider]*cloud.Client{
		provider.OpenAI:      cloud.NewClient(url),
		provider.Anthropic:   cloud.NewClient(url),
		provider.HustleSynth: cloud.NewClient(url),
	}
}

func TestSendMessageStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req cloud.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if req.APIKey != "sk-hs" {
			t.Errorf("api_key = %q, want sk-hs", req.APIKey)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
			t.Errorf("messages = %+v, want the user turn", req.Messages)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fl := w.(http.Flusher)
		for _, d := range []string{"Hi", " there"} {
			fmt.Fprintf(w, "data: {\"content\":%q}\n\n", d)
			fl.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	sessions := newTestSessions(t, "synth-1")
	ctrl := New(sessions, allClients(srv.URL),
		settingsWith(true, map[string]string{"hustlesynth": "sk-hs"}))

	id := sessions.ActiveID()
	var updates []string
	var updateIDs []string
	err := ctrl.SendMessage(context.Background(), id, "hello", func(sid, content string) {
		updateIDs = append(updateIDs, sid)
		updates = append(updates, content)
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	// Every update is tagged with the originating session.
	for _, sid := range updateIDs {
		if sid != id {
			t.Errorf("update tagged %q, want %q", sid, id)
		}
	}
	if len(updates) == 0 || updates[len(updates)-1] != "Hi there" {
		t.Errorf("updates = %v, want final %q", updates, "Hi there")
	}

	s, _ := sessions.Get(id)
	if s.MessageCount() != 2 {
		t.Fatalf("MessageCount = %d, want user + assistant", s.MessageCount())
	}
	if s.Messages[1].Role != model.RoleAssistant || s.Messages[1].Content != "Hi there" {
		t.Errorf("assistant turn = %+v", s.Messages[1])
	}
}

func TestSendMessageUnary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req cloud.ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Stream {
			t.Error("stream = true with streaming disabled")
		}
		json.NewEncoder(w).Encode(cloud.ChatResponse{Content: "pong"})
	}))
	defer srv.Close()

	sessions := newTestSessions(t, "synth-1")
	ctrl := New(sessions, allClients(srv.URL),
		settingsWith(false, map[string]string{"hustlesynth": "sk-hs"}))

	id := sessions.ActiveID()
	var final string
	if err := ctrl.SendMessage(context.Background(), id, "ping", func(_, c string) { final = c }); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if final != "pong" {
		t.Errorf("final update = %q, want pong", final)
	}

	s, _ := sessions.Get(id)
	if s.Messages[1].Content != "pong" {
		t.Errorf("assistant content = %q, want pong", s.Messages[1].Content)
	}
}

func TestSendMessageBlankIsNoOp(t *testing.T) {
	sessions := newTestSessions(t, "synth-1")
	ctrl := New(sessions, allClients("http://127.0.0.1:1"), settingsWith(true, nil))

	id := sessions.ActiveID()
	if err := ctrl.SendMessage(context.Background(), id, "   \n\t ", nil); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	s, _ := sessions.Get(id)
	if s.MessageCount() != 0 {
		t.Errorf("MessageCount = %d, want 0 for blank input", s.MessageCount())
	}
}

func TestSendMessageMissingCredential(t *testing.T) {
	sessions := newTestSessions(t, "gpt-4")
	ctrl := New(sessions, allClients("http://127.0.0.1:1"),
		settingsWith(true, map[string]string{"hustlesynth": "sk-hs"})) // no openai key

	id := sessions.ActiveID()
	err := ctrl.SendMessage(context.Background(), id, "hello", nil)

	var credErr *MissingCredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("err = %v, want *MissingCredentialError", err)
	}
	if credErr.Provider != provider.OpenAI {
		t.Errorf("Provider = %v, want OpenAI", credErr.Provider)
	}

	// The user turn stays appended; there is no rollback.
	s, _ := sessions.Get(id)
	if s.MessageCount() != 1 {
		t.Errorf("MessageCount = %d, want the user turn kept", s.MessageCount())
	}
	if s.Messages[0].Role != model.RoleUser {
		t.Errorf("kept turn role = %q, want user", s.Messages[0].Role)
	}
}

func TestSendMessageAPIErrorKeepsUserTurn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message":"backend exploded"}`)
	}))
	defer srv.Close()

	sessions := newTestSessions(t, "synth-1")
	ctrl := New(sessions, allClients(srv.URL),
		settingsWith(false, map[string]string{"hustlesynth": "sk-hs"}))

	id := sessions.ActiveID()
	err := ctrl.SendMessage(context.Background(), id, "hello", nil)

	var apiErr *cloud.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *cloud.APIError", err)
	}
	if apiErr.Message != "backend exploded" {
		t.Errorf("Message = %q, want verbatim", apiErr.Message)
	}

	s, _ := sessions.Get(id)
	if s.MessageCount() != 1 {
		t.Errorf("MessageCount = %d, want only the user turn", s.MessageCount())
	}
}

func TestSendMessageUnknownSession(t *testing.T) {
	sessions := newTestSessions(t, "synth-1")
	ctrl := New(sessions, allClients("http://127.0.0.1:1"), settingsWith(true, nil))

	err := ctrl.SendMessage(context.Background(), "1", "hello", nil)
	if !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestProviderDispatch(t *testing.T) {
	// Each provider gets its own server; the model prefix decides which
	// one receives the request.
	hits := map[string]int{}
	mkServer := func(name string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits[name]++
			json.NewEncoder(w).Encode(cloud.ChatResponse{Content: "ok"})
		}))
	}
	openaiSrv := mkServer("openai")
	defer openaiSrv.Close()
	anthropicSrv := mkServer("anthropic")
	defer anthropicSrv.Close()
	synthSrv := mkServer("hustlesynth")
	defer synthSrv.Close()

	clients := map[provider.Provider]*cloud.Client{
		provider.OpenAI:      cloud.NewClient(openaiSrv.URL),
		provider.Anthropic:   cloud.NewClient(anthropicSrv.URL),
		provider.HustleSynth: cloud.NewClient(synthSrv.URL),
	}
	keys := map[string]string{"openai": "k", "anthropic": "k", "hustlesynth": "k"}

	for _, tt := range []struct {
		model string
		want  string
	}{
		{"gpt-4", "openai"},
		{"claude-3-opus", "anthropic"},
		{"synth-1", "hustlesynth"},
	} {
		sessions := newTestSessions(t, tt.model)
		ctrl := New(sessions, clients, settingsWith(false, keys))
		if err := ctrl.SendMessage(context.Background(), sessions.ActiveID(), "hi", nil); err != nil {
			t.Fatalf("SendMessage(%s) failed: %v", tt.model, err)
		}
		if hits[tt.want] != 1 {
			t.Errorf("model %s: %s hits = %d, want 1", tt.model, tt.want, hits[tt.want])
		}
		hits[tt.want] = 0
	}
}

func TestSendToActive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(cloud.ChatResponse{Content: "ok"})
	}))
	defer srv.Close()

	sessions := newTestSessions(t, "synth-1")
	ctrl := New(sessions, allClients(srv.URL),
		settingsWith(false, map[string]string{"hustlesynth": "k"}))

	if err := ctrl.SendToActive(context.Background(), "hi", nil); err != nil {
		t.Fatalf("SendToActive failed: %v", err)
	}
	s, _ := sessions.Active()
	if s.MessageCount() != 2 {
		t.Errorf("MessageCount = %d, want 2", s.MessageCount())
	}
}
