// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"github.com/mattn/go-runewidth"
)

// TruncateRunes limits s to max runes, appending "..." when anything
// was cut. Operates on runes so multi-byte characters are never split.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// TruncateWidth limits s to max terminal display cells, appending an
// ellipsis when anything was cut. Unlike TruncateRunes this accounts
// for double-width characters (CJK, emoji) so previews line up in
// fixed-width layouts.
func TruncateWidth(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	return runewidth.Truncate(s, max, "…")
}
