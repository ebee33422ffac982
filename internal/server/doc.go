// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server implements the documentation edge server:
//
//   - static site serving with clean URLs (extensionless paths resolve
//     to .html files) and a redirect table for legacy doc paths,
//   - security headers and per-extension Cache-Control on every asset,
//   - a styled 404 page,
//   - POST /api/chat reverse-proxied to the completion backend with
//     SSE bodies streamed through unbuffered,
//   - GET /api/docs/search serving the documentation search index.
//
// Requests pass through recovery, request-id, logging, and per-client
// rate-limit middleware.
package server
