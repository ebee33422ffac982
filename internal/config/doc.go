// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for synthchat.
//
// Two layers live here. Config is the application configuration: file
// paths, provider endpoints, server and UI options. It loads from TOML
// with a JSON fallback, applies environment overrides, and validates.
//
// Settings is the per-user chat settings document (temperature, token
// limit, streaming toggle, API keys). It persists through the storage
// package under the "chatSettings" key and survives restarts.
//
// Configuration file locations (in order of precedence):
//   - ~/.synthchat/config.toml
//   - ~/.synthchat/config.json
//   - Built-in defaults
package config
