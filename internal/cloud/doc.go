// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud implements the HTTP client for chat completion
// backends. All three providers (OpenAI, Anthropic, HustleSynth) are
// reached through the same completion endpoint shape: POST /api/chat
// with the model, transcript, sampling options, and API key in the
// body; a plain {content} reply when unary; SSE data: frames with
// content deltas terminated by a [DONE] sentinel when streaming.
//
// There is deliberately no retry or backoff in this package: a failed
// send surfaces to the caller immediately and the user resends.
package cloud
