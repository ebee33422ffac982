// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements argument parsing and the non-TUI subcommands:
// plain-terminal chat, one-shot ask, the docs server, export, config
// and status display. The TUI itself lives in internal/ui/chat; main
// wires the two together.
package cli
