// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across synthchat:
// atomic file writes for the persistent store and rune-aware string
// truncation for titles and previews.
package util
