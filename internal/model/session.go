// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strconv"
	"time"

	"github.com/hustlesynth/synthchat/internal/util"
)

// ============================================================================
// Sessions
// ============================================================================

// TitleMaxRunes is the cutoff for titles derived from the first message.
const TitleMaxRunes = 30

// DefaultTitle is the title a session carries before any message is sent.
const DefaultTitle = "New Chat"

// Session is one chat conversation: an ordered message transcript plus
// the model it talks to. IDs are millisecond timestamps rendered as
// decimal strings; collisions are the caller's problem (see session
// package) since two sessions created in the same millisecond must not
// share an ID.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewSession creates an empty session for the given model with a
// timestamp-derived ID and the default title.
func NewSession(model string) *Session {
	now := time.Now()
	return &Session{
		ID:        NewSessionID(now),
		Title:     DefaultTitle,
		Messages:  []Message{},
		Model:     model,
		CreatedAt: now,
	}
}

// NewSessionID renders t as a millisecond unix timestamp string.
func NewSessionID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// AddMessage appends a message to the transcript. If this is the first
// message, the session title is derived from its content.
func (s *Session) AddMessage(msg Message) {
	if len(s.Messages) == 0 {
		s.Title = DeriveTitle(msg.Content)
	}
	s.Messages = append(s.Messages, msg)
}

// AppendToLast appends delta to the content of the most recent message.
// Used while streaming an assistant reply. No-op on an empty transcript.
func (s *Session) AppendToLast(delta string) {
	if len(s.Messages) == 0 {
		return
	}
	s.Messages[len(s.Messages)-1].Content += delta
}

// LastMessage returns the most recent message, or a zero Message and
// false when the transcript is empty.
func (s *Session) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// MessageCount returns the number of messages in the transcript.
func (s *Session) MessageCount() int {
	return len(s.Messages)
}

// DeriveTitle builds a session title from the first message: the first
// 30 runes, with "..." appended when anything was cut.
func DeriveTitle(content string) string {
	if content == "" {
		return DefaultTitle
	}
	return util.TruncateRunes(content, TitleMaxRunes)
}
