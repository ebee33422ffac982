// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - config and status display handlers.
package cli

import (
	"fmt"
	"os"

	"github.com/hustlesynth/synthchat/internal/config"
)

// RunStatus prints the stored conversations and effective settings.
func RunStatus(app *App) error {
	settings := config.LoadSettings(app.Store)

	fmt.Println("synthchat", Version)
	fmt.Println()
	fmt.Println("model:      ", app.Cfg.DefaultModel)
	fmt.Printf("temperature: %.1f\n", settings.Temperature)
	fmt.Println("max tokens: ", settings.MaxTokens)
	fmt.Println("streaming:  ", settings.Streaming)
	fmt.Println()

	fmt.Println("conversations:", app.Sessions.Len())
	activeID := app.Sessions.ActiveID()
	for i, s := range app.Sessions.List() {
		marker := " "
		if s.ID == activeID {
			marker = "*"
		}
		fmt.Printf("%s %d. %s (%d messages, model %s)\n", marker, i+1, s.Title, len(s.Messages), s.Model)
	}

	fmt.Println()
	for _, name := range []string{"openai", "anthropic", "hustlesynth"} {
		state := "not set"
		if settings.KeyFor(name) != "" {
			state = "configured"
		}
		fmt.Printf("%-12s key: %s\n", name, state)
	}
	return nil
}

// RunConfig prints the effective configuration, or its path with the
// "path" subcommand.
func RunConfig(app *App, sub string) error {
	switch sub {
	case "", "show":
		return config.WriteTOML(os.Stdout, app.Cfg)
	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	default:
		return fmt.Errorf("unknown config subcommand %q (show, path)", sub)
	}
}
