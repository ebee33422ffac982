// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/hustlesynth/synthchat/internal/config"
	"github.com/hustlesynth/synthchat/internal/controller"
	"github.com/hustlesynth/synthchat/internal/model"
	"github.com/hustlesynth/synthchat/internal/session"
	"github.com/hustlesynth/synthchat/internal/ui/styles"
	"github.com/hustlesynth/synthchat/internal/util"
)

// =============================================================================
// MESSAGES
// =============================================================================

// streamDeltaMsg carries the accumulated reply text for one streaming
// completion. sessionID identifies which conversation it belongs to.
type streamDeltaMsg struct {
	sessionID string
	content   string
}

// sendDoneMsg reports a finished completion, successful or not.
type sendDoneMsg struct {
	sessionID string
	err       error
}

// updateBuffer bounds how many stream deltas can queue between frames.
const updateBuffer = 32

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	theme    *styles.Theme
	cfg      *config.Config
	sessions *session.Collection
	ctrl     *controller.Controller

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	updates chan tea.Msg

	sending   bool
	streamID  string
	streaming string
	status    string
	err       error

	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool
}

// New builds the chat model. The controller must already be wired to
// the same collection.
func New(cfg *config.Config, sessions *session.Collection, ctrl *controller.Controller) *Model {
	theme := styles.NewTheme(cfg.UI.Theme)

	ta := textarea.New()
	ta.Placeholder = "Send a message (/help for commands)"
	ta.Prompt = theme.InputPrompt.Render("> ")
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		renderer = nil
	}

	return &Model{
		theme:    theme,
		cfg:      cfg,
		sessions: sessions,
		ctrl:     ctrl,
		textarea: ta,
		spinner:  sp,
		updates:  make(chan tea.Msg, updateBuffer),
		renderer: renderer,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			if !msg.Alt {
				return m, m.submit()
			}
			// Alt+Enter inserts a newline.
		}

	case spinner.TickMsg:
		if m.sending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case streamDeltaMsg:
		// Deltas for a background session are dropped from the view;
		// the collection persists them when the send settles.
		if msg.sessionID == m.sessions.ActiveID() {
			m.streaming = msg.content
			m.refreshTranscript()
		}
		cmds = append(cmds, m.awaitUpdate())

	case sendDoneMsg:
		m.sending = false
		m.streaming = ""
		m.streamID = ""
		if msg.err != nil {
			m.err = msg.err
		}
		m.refreshTranscript()
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.Resize(width, height)

	inputHeight := m.textarea.Height() + 2
	chromeHeight := 2 // header + status bar
	vpHeight := height - inputHeight - chromeHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(width - 2)
	m.refreshTranscript()
}

// submit handles Enter: slash commands are dispatched locally, anything
// else is sent to the active session.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.textarea.Value())
	if text == "" {
		return nil
	}
	m.textarea.Reset()
	m.err = nil
	m.status = ""

	if strings.HasPrefix(text, "/") {
		return m.runCommand(text)
	}
	if m.sending {
		m.status = "still waiting on the previous reply"
		return nil
	}
	return m.startSend(text)
}

// startSend launches the completion in a goroutine and arms the
// update-channel listener so deltas reach Update as messages.
func (m *Model) startSend(text string) tea.Cmd {
	m.sending = true
	m.streamID = m.sessions.ActiveID()
	m.streaming = ""
	m.refreshTranscript()

	id := m.streamID
	updates := m.updates
	send := func() tea.Msg {
		err := m.ctrl.SendMessage(context.Background(), id, text, func(sessionID, content string) {
			updates <- streamDeltaMsg{sessionID: sessionID, content: content}
		})
		// Completion travels through the same channel as the deltas:
		// the armed awaitUpdate receiver consumes it after the last
		// delta and is not re-armed, so no receiver is left blocked.
		updates <- sendDoneMsg{sessionID: id, err: err}
		return nil
	}
	return tea.Batch(send, m.awaitUpdate(), m.spinner.Tick)
}

// awaitUpdate delivers the next queued stream message. It is armed once
// per send and re-armed only for deltas; sendDoneMsg retires it.
func (m *Model) awaitUpdate() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		return <-updates
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.theme.InputBox.Width(m.width - 2).Render(m.textarea.View()))
	b.WriteString("\n")
	b.WriteString(m.statusView())
	return b.String()
}

func (m *Model) headerView() string {
	title := "SynthChat"
	mdl := m.cfg.DefaultModel
	if active, err := m.sessions.Active(); err == nil {
		title = active.Title
		if active.Model != "" {
			mdl = active.Model
		}
	}
	// Clip by display cells so CJK titles cannot push the model name
	// off the header.
	titleWidth := m.width / 2
	if titleWidth < 10 {
		titleWidth = 10
	}
	left := m.theme.HeaderTitle.Render(util.TruncateWidth(title, titleWidth))
	right := m.theme.HeaderModel.Render(mdl)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) statusView() string {
	switch {
	case m.sending:
		return m.theme.StatusBar.Width(m.width).Render(
			m.spinner.View() + " " + m.theme.InfoText.Render("thinking..."))
	case m.err != nil:
		return m.theme.StatusBar.Width(m.width).Render(
			m.theme.ErrorText.Render("error: " + m.err.Error()))
	case m.status != "":
		return m.theme.StatusBar.Width(m.width).Render(m.theme.InfoText.Render(m.status))
	default:
		return m.theme.StatusBar.Width(m.width).Render(
			m.theme.StatusKey.Render("enter") + m.theme.StatusDesc.Render(" send  ") +
				m.theme.StatusKey.Render("/help") + m.theme.StatusDesc.Render(" commands  ") +
				m.theme.StatusKey.Render("ctrl+c") + m.theme.StatusDesc.Render(" quit"))
	}
}

// refreshTranscript re-renders the active conversation into the
// viewport and pins the view to the bottom.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m *Model) renderTranscript() string {
	active, err := m.sessions.Active()
	if err != nil {
		return m.theme.InfoText.Render("No active conversation. Type a message to begin.")
	}

	var b strings.Builder
	for _, msg := range active.Messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	if m.sending && m.streamID == active.ID && m.streaming != "" {
		b.WriteString(m.theme.AssistantLabel.Render("Assistant"))
		b.WriteString("\n")
		b.WriteString(m.renderMarkdown(m.streaming))
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return m.theme.InfoText.Render("Empty conversation. Type a message to begin.")
	}
	return b.String()
}

func (m *Model) renderMessage(msg model.Message) string {
	var label string
	switch msg.Role {
	case model.RoleUser:
		label = m.theme.UserLabel.Render("You")
	case model.RoleAssistant:
		label = m.theme.AssistantLabel.Render("Assistant")
	default:
		label = m.theme.SystemLabel.Render("System")
	}

	body := msg.Content
	if msg.Role == model.RoleAssistant {
		body = m.renderMarkdown(body)
	} else {
		body = m.theme.MessageBody.Render(body)
	}
	return fmt.Sprintf("%s\n%s\n", label, body)
}

// renderMarkdown renders assistant markdown for the terminal, falling
// back to the raw text when glamour is unavailable or errors.
func (m *Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
