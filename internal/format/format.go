// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format renders raw chat message text as a safe HTML fragment.
//
// The pipeline is a fixed sequence of text passes. HTML escaping runs
// first, before any markup pass, so user-supplied tags can never reach
// the output as live HTML; every later pass only introduces tags of its
// own. Pass order also matters among the markup passes: fenced code
// must run before inline code so a fence's interior backticks are not
// re-matched, and bold before italic so ** is not consumed as two *.
package format

import (
	"regexp"
	"strings"
)

// ============================================================================
// Passes
// ============================================================================

// escaper rewrites HTML metacharacters first. & must be replaced before
// the entities pass introduces more of them.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

var (
	fencedCodeRe = regexp.MustCompile("(?s)```\\w*\\n(.*?)```")
	inlineCodeRe = regexp.MustCompile("`([^`]+)`")
	boldRe       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe     = regexp.MustCompile(`\*([^*]+)\*`)
)

// Format renders raw message text as an HTML fragment. It is pure: the
// same input always yields the same output, and raw is never mutated.
func Format(raw string) string {
	out := escaper.Replace(raw)
	out = fencedCodeRe.ReplaceAllString(out, "<pre><code>$1</code></pre>")
	out = inlineCodeRe.ReplaceAllString(out, "<code>$1</code>")
	out = boldRe.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicRe.ReplaceAllString(out, "<em>$1</em>")
	out = strings.ReplaceAll(out, "\n", "<br>")
	return out
}
