// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - plain-terminal interactive chat.
//
// Handles "synthchat chat", the REPL used when the full TUI is not
// wanted (or the output is not a terminal). Input history persists in
// the config directory and streaming replies print as they arrive.
//
// Interactive commands:
//   /help, /h       Show available commands
//   /new            Start a new conversation
//   /list           List conversations
//   /switch <n>     Switch conversation
//   /clear, /c      Clear the active conversation
//   /model [name]   Show or switch model
//   /quit, /q       Exit (also Ctrl+D)
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/hustlesynth/synthchat/internal/config"
	"github.com/hustlesynth/synthchat/internal/ui/styles"
	"github.com/hustlesynth/synthchat/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Teal).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with history loaded from the config
// directory.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.loadHistory()
	return cli
}

func (c *ChatCLI) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with history navigation. Non-empty input is
// added to history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close flushes history to disk and restores the terminal.
func (c *ChatCLI) Close() {
	if f, err := os.Create(c.historyFile); err == nil {
		c.line.WriteHistory(f)
		f.Close()
	}
	c.line.Close()
}

// =============================================================================
// CHAT LOOP
// =============================================================================

// RunChat runs the plain-terminal REPL until /quit or EOF.
func RunChat(app *App) error {
	cli := NewChatCLI()
	defer cli.Close()

	fmt.Println(welcomeStyle.Render("synthchat " + Version))
	fmt.Println(infoStyle.Render("Type /help for commands, Ctrl+D to exit."))
	fmt.Println()

	for {
		input, err := cli.ReadInput(promptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if quit := runChatCommand(app, input); quit {
				return nil
			}
			continue
		}

		if err := streamReply(app, input); err != nil {
			fmt.Println(errorStyle.Render("error: " + err.Error()))
		}
	}
}

// streamReply sends the message and prints deltas as they arrive. The
// callback delivers the full accumulated reply each time, so only the
// unseen suffix is printed.
func streamReply(app *App, text string) error {
	var printed int
	err := app.Ctrl.SendToActive(context.Background(), text, func(sessionID, content string) {
		if sessionID != app.Sessions.ActiveID() {
			return
		}
		if len(content) > printed {
			fmt.Print(content[printed:])
			printed = len(content)
		}
	})
	fmt.Println()
	return err
}

// runChatCommand handles slash commands; true means exit.
func runChatCommand(app *App, input string) bool {
	fields := strings.Fields(input)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h":
		fmt.Println(infoStyle.Render(`/new            start a new conversation
/list           list conversations
/switch <n>     switch to conversation n
/clear          clear the active conversation
/model [name]   show or set the model
/quit           exit`))

	case "/new":
		if _, err := app.Sessions.Create(); err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			break
		}
		fmt.Println(infoStyle.Render("started a new conversation"))

	case "/list", "/ls":
		activeID := app.Sessions.ActiveID()
		for i, s := range app.Sessions.List() {
			marker := " "
			if s.ID == activeID {
				marker = "*"
			}
			fmt.Printf("%s %d. %s (%d messages)\n",
				marker, i+1, util.TruncateWidth(s.Title, 40), len(s.Messages))
		}

	case "/switch", "/sw":
		sessions := app.Sessions.List()
		if len(args) != 1 {
			fmt.Println(infoStyle.Render("usage: /switch <n>"))
			break
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > len(sessions) {
			fmt.Println(errorStyle.Render("no such conversation (see /list)"))
			break
		}
		if err := app.Sessions.Select(sessions[n-1].ID); err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			break
		}
		fmt.Println(infoStyle.Render("switched to " + sessions[n-1].Title))

	case "/clear", "/c":
		if err := app.Sessions.ClearMessages(app.Sessions.ActiveID()); err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			break
		}
		fmt.Println(infoStyle.Render("conversation cleared"))

	case "/model", "/m":
		active, err := app.Sessions.Active()
		if err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			break
		}
		if len(args) == 0 {
			current := active.Model
			if current == "" {
				current = app.Cfg.DefaultModel
			}
			fmt.Println(infoStyle.Render("model: " + current))
			break
		}
		if err := app.Sessions.SetModel(active.ID, args[0]); err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			break
		}
		fmt.Println(infoStyle.Render("model set to " + args[0]))

	default:
		fmt.Println(infoStyle.Render("unknown command (try /help)"))
	}
	return false
}
