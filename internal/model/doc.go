// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the core data types shared across synthchat:
// chat messages, sessions, and the roles attached to messages.
//
// The JSON field names on these types are load-bearing: they define the
// persisted layout used by the storage package and the wire shape sent
// to the chat API, and must not change without a migration.
package model
