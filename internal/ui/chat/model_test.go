// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hustlesynth/synthchat/internal/config"
	"github.com/hustlesynth/synthchat/internal/controller"
	"github.com/hustlesynth/synthchat/internal/model"
	"github.com/hustlesynth/synthchat/internal/session"
	"github.com/hustlesynth/synthchat/internal/storage"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()

	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sessions := session.NewCollection(store, "synth-1")
	if err := sessions.Load(); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	ctrl := controller.New(sessions, controller.NewClients(cfg.Providers), func() config.Settings {
		return config.DefaultSettings()
	})

	m := New(cfg, sessions, ctrl)
	m.resize(80, 24)
	return m
}

func TestSubmitBlankIsNoop(t *testing.T) {
	m := newTestModel(t)
	m.textarea.SetValue("   ")
	if cmd := m.submit(); cmd != nil {
		t.Error("blank input produced a command")
	}
	if m.sending {
		t.Error("blank input started a send")
	}
}

func TestBackgroundSessionDeltaIgnored(t *testing.T) {
	m := newTestModel(t)
	activeID := m.sessions.ActiveID()

	_, err := m.sessions.Create()
	if err != nil {
		t.Fatal(err)
	}
	// The first session is now in the background.
	updated, _ := m.Update(streamDeltaMsg{sessionID: activeID, content: "stale text"})
	m = updated.(*Model)
	if m.streaming != "" {
		t.Errorf("background delta applied to view: %q", m.streaming)
	}

	updated, _ = m.Update(streamDeltaMsg{sessionID: m.sessions.ActiveID(), content: "live text"})
	m = updated.(*Model)
	if m.streaming != "live text" {
		t.Errorf("active delta not applied, streaming = %q", m.streaming)
	}
}

func TestSendDoneClearsStreamingState(t *testing.T) {
	m := newTestModel(t)
	m.sending = true
	m.streaming = "partial"
	m.streamID = m.sessions.ActiveID()

	updated, _ := m.Update(sendDoneMsg{sessionID: m.streamID})
	m = updated.(*Model)
	if m.sending || m.streaming != "" || m.streamID != "" {
		t.Errorf("state not cleared: sending=%v streaming=%q", m.sending, m.streaming)
	}
}

func TestCommandNewCreatesSession(t *testing.T) {
	m := newTestModel(t)
	before := m.sessions.Len()
	m.runCommand("/new")
	if m.sessions.Len() != before+1 {
		t.Errorf("Len = %d, want %d", m.sessions.Len(), before+1)
	}
}

func TestCommandListMarksActive(t *testing.T) {
	m := newTestModel(t)
	m.runCommand("/list")
	if !strings.Contains(m.status, "*") {
		t.Errorf("list output %q has no active marker", m.status)
	}
}

func TestCommandSwitch(t *testing.T) {
	m := newTestModel(t)
	first := m.sessions.ActiveID()
	if _, err := m.sessions.Create(); err != nil {
		t.Fatal(err)
	}

	// List is newest-first, so the original session is last.
	n := m.sessions.Len()
	m.runCommand("/switch " + strconv.Itoa(n))
	if m.sessions.ActiveID() != first {
		t.Errorf("active = %s, want %s", m.sessions.ActiveID(), first)
	}
}

func TestCommandSwitchBadIndex(t *testing.T) {
	m := newTestModel(t)
	m.runCommand("/switch 99")
	if !strings.Contains(m.status, "no conversation") {
		t.Errorf("status = %q, want rejection", m.status)
	}
}

func TestCommandModelShowAndSet(t *testing.T) {
	m := newTestModel(t)
	m.runCommand("/model")
	if !strings.Contains(m.status, "synth-1") {
		t.Errorf("status = %q, want default model", m.status)
	}

	m.runCommand("/model gpt-4")
	active, err := m.sessions.Active()
	if err != nil {
		t.Fatal(err)
	}
	if active.Model != "gpt-4" {
		t.Errorf("Model = %q, want gpt-4", active.Model)
	}
}

func TestCommandClear(t *testing.T) {
	m := newTestModel(t)
	id := m.sessions.ActiveID()
	if err := m.sessions.Append(id, model.NewUserMessage("hello")); err != nil {
		t.Fatal(err)
	}

	m.runCommand("/clear")
	active, err := m.sessions.Active()
	if err != nil {
		t.Fatal(err)
	}
	if len(active.Messages) != 0 {
		t.Errorf("messages = %d, want 0", len(active.Messages))
	}
}

func TestCommandExport(t *testing.T) {
	m := newTestModel(t)
	t.Chdir(t.TempDir())
	id := m.sessions.ActiveID()
	if err := m.sessions.Append(id, model.NewUserMessage("export me")); err != nil {
		t.Fatal(err)
	}

	m.runCommand("/export md")
	if m.err != nil {
		t.Fatalf("export failed: %v", m.err)
	}
	if !strings.Contains(m.status, "exported to") {
		t.Errorf("status = %q, want export path", m.status)
	}
}

func TestCommandUnknown(t *testing.T) {
	m := newTestModel(t)
	m.runCommand("/wat")
	if !strings.Contains(m.status, "unknown command") {
		t.Errorf("status = %q, want unknown-command hint", m.status)
	}
}

func TestCommandQuit(t *testing.T) {
	m := newTestModel(t)
	cmd := m.runCommand("/quit")
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command did not produce tea.QuitMsg")
	}
}

func TestWideTitleClippedInList(t *testing.T) {
	m := newTestModel(t)
	// 40 CJK runes: the stored title keeps 30 runes but spans 60+
	// display cells, so the list must clip it by width.
	wide := strings.Repeat("火", 40)
	if err := m.sessions.Append(m.sessions.ActiveID(), model.NewUserMessage(wide)); err != nil {
		t.Fatal(err)
	}

	list := m.sessionList()
	if !strings.Contains(list, "…") {
		t.Errorf("list %q not clipped by display width", list)
	}
	if strings.Contains(list, strings.Repeat("火", 30)) {
		t.Error("full 30-rune title survived the width cap")
	}
}

func TestWideTitleClippedInHeader(t *testing.T) {
	m := newTestModel(t)
	wide := strings.Repeat("火", 40)
	if err := m.sessions.Append(m.sessions.ActiveID(), model.NewUserMessage(wide)); err != nil {
		t.Fatal(err)
	}

	header := m.headerView()
	if !strings.Contains(header, "…") {
		t.Errorf("header %q not clipped by display width", header)
	}
	if strings.Contains(header, strings.Repeat("火", 30)) {
		t.Error("full 30-rune title survived the width cap")
	}
}

func TestSendCompletionDrainsUpdateChannel(t *testing.T) {
	// The completion signal must arrive through the updates channel so
	// the receiver armed by startSend is consumed, not left blocked.
	m := newTestModel(t)

	cmd := m.startSend("hello")
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("startSend did not return a batch")
	}

	var done *sendDoneMsg
	for _, c := range batch {
		if c == nil {
			continue
		}
		if msg, ok := c().(sendDoneMsg); ok {
			done = &msg
		}
	}
	if done == nil {
		t.Fatal("no sendDoneMsg delivered through the updates channel")
	}
	// No API key is configured, so the send fails fast.
	if done.err == nil {
		t.Error("expected missing-credential error")
	}
	if len(m.updates) != 0 {
		t.Errorf("%d messages left queued after completion", len(m.updates))
	}
}

func TestRenderMarkdownFallback(t *testing.T) {
	m := newTestModel(t)
	m.renderer = nil
	if got := m.renderMarkdown("**bold**"); got != "**bold**" {
		t.Errorf("fallback = %q, want raw text", got)
	}
}

func TestTranscriptShowsStreamingText(t *testing.T) {
	m := newTestModel(t)
	m.sending = true
	m.streamID = m.sessions.ActiveID()
	m.streaming = "partial reply"
	m.renderer = nil

	if got := m.renderTranscript(); !strings.Contains(got, "partial reply") {
		t.Errorf("transcript %q missing streaming text", got)
	}
}
