// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/quick"

	"github.com/hustlesynth/synthchat/internal/format"
	"github.com/hustlesynth/synthchat/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// fencedBlockRe matches a fenced code block with an optional language
// tag, against the raw (unescaped) message text.
var fencedBlockRe = regexp.MustCompile("(?s)```(\\w*)\\n(.*?)```")

// HTMLExporter exports a session to a standalone HTML page. Prose runs
// through the message formatting pipeline; fenced code blocks get
// chroma syntax highlighting instead of a bare <pre>.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates an HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a session to HTML.
func (e *HTMLExporter) Export(s model.Session) ([]byte, error) {
	if len(s.Messages) == 0 {
		return nil, fmt.Errorf("session has no messages")
	}

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(s.Title)))
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", s.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(pageCSS)
	sb.WriteString("</head>\n<body>\n")

	sb.WriteString(fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(s.Title)))
	if e.options.IncludeMetadata {
		sb.WriteString(fmt.Sprintf("<p class=\"meta\">%s · %d messages · %s</p>\n",
			html.EscapeString(s.Model), len(s.Messages), s.CreatedAt.Format("2006-01-02 15:04")))
	}

	for _, msg := range s.Messages {
		sb.WriteString(fmt.Sprintf("<div class=\"message %s\">\n", msg.Role))
		sb.WriteString(fmt.Sprintf("  <div class=\"role\">%s</div>\n", roleLabel(msg.Role)))
		sb.WriteString("  <div class=\"content\">")
		sb.WriteString(e.renderContent(msg.Content))
		sb.WriteString("</div>\n</div>\n")
	}

	sb.WriteString("</body>\n</html>\n")
	return []byte(sb.String()), nil
}

// renderContent renders one message: fenced code blocks are carved out
// of the raw text and highlighted, everything between them goes through
// the formatting pipeline.
func (e *HTMLExporter) renderContent(raw string) string {
	var sb strings.Builder
	last := 0
	for _, loc := range fencedBlockRe.FindAllStringSubmatchIndex(raw, -1) {
		sb.WriteString(format.Format(raw[last:loc[0]]))

		lang := raw[loc[2]:loc[3]]
		code := raw[loc[4]:loc[5]]
		sb.WriteString(e.highlight(code, lang))

		last = loc[1]
	}
	sb.WriteString(format.Format(raw[last:]))
	return sb.String()
}

// highlight runs chroma over a code block, falling back to the escaped
// formatting pipeline when highlighting fails.
func (e *HTMLExporter) highlight(code, lang string) string {
	var buf strings.Builder
	if err := quick.Highlight(&buf, code, lang, "html", e.options.Theme); err != nil {
		return format.Format("```" + lang + "\n" + code + "```")
	}
	return buf.String()
}

// FileExtension returns ".html".
func (e *HTMLExporter) FileExtension() string { return ".html" }

// MimeType returns the HTML MIME type.
func (e *HTMLExporter) MimeType() string { return "text/html" }

// pageCSS is the embedded stylesheet for exported pages.
const pageCSS = `    <style>
        body { font-family: -apple-system, system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; color: #e6e6e6; background: #16161e; }
        h1 { font-size: 1.4rem; }
        .meta { color: #888; font-size: 0.85rem; }
        .message { margin: 1.25rem 0; padding: 0.75rem 1rem; border-radius: 8px; }
        .message.user { background: #1f2335; }
        .message.assistant { background: #1a1b26; }
        .role { font-weight: 600; font-size: 0.8rem; text-transform: uppercase; letter-spacing: 0.05em; color: #7aa2f7; margin-bottom: 0.4rem; }
        .content code { background: #2a2b3a; padding: 0.1em 0.3em; border-radius: 3px; }
        .content pre { overflow-x: auto; padding: 0.75rem; border-radius: 6px; background: #101014; }
        .content pre code { background: none; padding: 0; }
    </style>
`
