// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the collection of chat sessions and the
// active-session pointer.
//
// Invariants the Collection maintains at all times:
//   - at least one session exists after Load,
//   - the active pointer always names an existing session,
//   - every mutation persists before returning, so a crash loses at
//     most the operation in flight.
//
// Accessors return copies; the only way to mutate a session is through
// Collection methods, which hold the lock and persist.
package session
