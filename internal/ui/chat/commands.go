// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hustlesynth/synthchat/internal/export"
	"github.com/hustlesynth/synthchat/internal/util"
)

// listTitleWidth caps titles in /list output at a fixed cell width so
// the message counts stay in a column.
const listTitleWidth = 40

// =============================================================================
// SLASH COMMANDS
// =============================================================================

const helpText = `/new            start a new conversation
/list           list conversations
/switch <n>     switch to conversation n from /list
/delete         delete the active conversation
/clear          clear the active conversation's messages
/model [name]   show or set the model for this conversation
/export <fmt>   export the conversation (md, html, json)
/quit           exit`

// runCommand dispatches a slash command typed into the input area.
func (m *Model) runCommand(input string) tea.Cmd {
	fields := strings.Fields(input)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "/help", "/h":
		m.status = helpText

	case "/quit", "/q", "/exit":
		return tea.Quit

	case "/new", "/n":
		if _, err := m.sessions.Create(); err != nil {
			m.err = err
			break
		}
		m.status = "started a new conversation"
		m.refreshTranscript()

	case "/list", "/ls":
		m.status = m.sessionList()

	case "/switch", "/sw":
		m.switchSession(args)

	case "/delete", "/del":
		id := m.sessions.ActiveID()
		if err := m.sessions.Delete(id); err != nil {
			m.err = err
			break
		}
		m.status = "conversation deleted"
		m.refreshTranscript()

	case "/clear", "/c":
		if err := m.sessions.ClearMessages(m.sessions.ActiveID()); err != nil {
			m.err = err
			break
		}
		m.status = "conversation cleared"
		m.refreshTranscript()

	case "/model", "/m":
		m.setModel(args)

	case "/export", "/e":
		m.exportSession(args)

	default:
		m.status = fmt.Sprintf("unknown command %s (try /help)", cmd)
	}
	return nil
}

// sessionList formats the conversations newest-first with 1-based
// indexes for /switch.
func (m *Model) sessionList() string {
	sessions := m.sessions.List()
	activeID := m.sessions.ActiveID()

	var b strings.Builder
	for i, s := range sessions {
		marker := " "
		if s.ID == activeID {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %d. %s (%d messages)\n",
			marker, i+1, util.TruncateWidth(s.Title, listTitleWidth), len(s.Messages))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) switchSession(args []string) {
	if len(args) != 1 {
		m.status = "usage: /switch <n>"
		return
	}
	n, err := strconv.Atoi(args[0])
	sessions := m.sessions.List()
	if err != nil || n < 1 || n > len(sessions) {
		m.status = fmt.Sprintf("no conversation %s (see /list)", args[0])
		return
	}
	if err := m.sessions.Select(sessions[n-1].ID); err != nil {
		m.err = err
		return
	}
	m.status = "switched to " + sessions[n-1].Title
	m.refreshTranscript()
}

func (m *Model) setModel(args []string) {
	active, err := m.sessions.Active()
	if err != nil {
		m.err = err
		return
	}
	if len(args) == 0 {
		current := active.Model
		if current == "" {
			current = m.cfg.DefaultModel
		}
		m.status = "model: " + current
		return
	}
	if err := m.sessions.SetModel(active.ID, args[0]); err != nil {
		m.err = err
		return
	}
	m.status = "model set to " + args[0]
}

func (m *Model) exportSession(args []string) {
	if len(args) != 1 {
		m.status = "usage: /export <md|html|json>"
		return
	}
	active, err := m.sessions.Active()
	if err != nil {
		m.err = err
		return
	}

	opts := export.DefaultOptions()
	var exporter export.Exporter
	switch strings.ToLower(args[0]) {
	case "md", "markdown":
		exporter = export.NewMarkdownExporter(opts)
	case "html":
		exporter = export.NewHTMLExporter(opts)
	case "json":
		exporter = export.NewJSONExporter()
	default:
		m.status = fmt.Sprintf("unknown format %q (md, html, json)", args[0])
		return
	}

	path, err := export.ExportToFile(active, exporter, opts)
	if err != nil {
		m.err = err
		return
	}
	m.status = "exported to " + path
}
