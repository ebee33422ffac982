// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage implements a key-value persistence layer over plain
// files in a single directory. Each key maps to one file; values are
// JSON documents or raw strings. Writes are atomic (temp file + rename)
// so a crash never leaves a half-written value behind.
//
// The API is deliberately forgiving on reads: a missing or undecodable
// value reads as absent rather than failing, so callers fall back to
// defaults instead of propagating corruption.
package storage
