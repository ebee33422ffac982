// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - one-shot question handler.
//
// Handles "synthchat ask" which sends a single question, prints the
// markdown-rendered reply, and exits. The exchange is persisted to the
// active conversation like any other message.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// markdownRenderer renders assistant markdown for terminal output.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

// renderMarkdown renders content for the terminal, falling back to the
// raw text when the renderer is unavailable or output is piped.
func renderMarkdown(content string) string {
	if markdownRenderer == nil || !term.IsTerminal(int(os.Stdout.Fd())) {
		return content
	}
	out, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

// RunAsk sends one question to the active conversation and prints the
// reply once complete.
func RunAsk(app *App, query string) error {
	var reply string
	err := app.Ctrl.SendToActive(context.Background(), query, func(sessionID, content string) {
		reply = content
	})
	if err != nil {
		return err
	}
	fmt.Print(renderMarkdown(reply))
	fmt.Println()
	return nil
}
