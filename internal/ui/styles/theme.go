// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the chat TUI. It is built once
// at startup and resized on terminal size changes.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// HEADER AND STATUS BAR
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderModel lipgloss.Style
	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	StatusDesc  lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLabel    lipgloss.Style
	MessageBody    lipgloss.Style
	Timestamp      lipgloss.Style

	// ==========================================================================
	// INPUT AREA
	// ==========================================================================

	InputBox    lipgloss.Style
	InputPrompt lipgloss.Style
	Placeholder lipgloss.Style

	// ==========================================================================
	// SESSION LIST
	// ==========================================================================

	SessionItem     lipgloss.Style
	SessionSelected lipgloss.Style

	// ==========================================================================
	// FEEDBACK
	// ==========================================================================

	Spinner    lipgloss.Style
	ErrorText  lipgloss.Style
	InfoText   lipgloss.Style
	SuccessMsg lipgloss.Style
}

// NewTheme builds a theme for the given preference: "dark", "light",
// or "auto". Auto queries the terminal background; an explicit
// preference overrides detection.
func NewTheme(preference string) *Theme {
	isDark := termenv.HasDarkBackground()
	switch preference {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)
	t.HeaderModel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusKey = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)
	t.StatusDesc = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.UserLabel = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)
	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true)
	t.SystemLabel = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)
	t.MessageBody = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.InputBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)
	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.SessionItem = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)
	t.SessionSelected = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true).
		Padding(0, 1)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Violet)
	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
	t.InfoText = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.SuccessMsg = lipgloss.NewStyle().
		Foreground(Emerald)

	return t
}

// Resize records the current terminal dimensions.
func (t *Theme) Resize(width, height int) {
	t.Width = width
	t.Height = height
}
