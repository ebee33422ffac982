// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat TUI.
//
// The model is a standard Bubble Tea program: a viewport holding the
// rendered transcript, a textarea for composing, and a spinner shown
// while a completion is in flight. Assistant markdown is rendered with
// glamour; rendering failures fall back to the raw text.
//
// Streaming updates arrive as messages tagged with the session they
// belong to. The view only applies deltas for the active session, so
// switching sessions mid-stream never bleeds another conversation's
// text into the screen. The underlying collection still persists the
// reply to its own session when the stream settles.
package chat
