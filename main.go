// synthchat - terminal chat for the HustleSynth platform.
//
// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/hustlesynth/synthchat/internal/cli"
	"github.com/hustlesynth/synthchat/internal/ui/chat"
)

func main() {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		cli.Fatalf("%v", err)
	}

	switch args.Command {
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	}

	app, err := cli.NewApp(args)
	if err != nil {
		cli.Fatalf("%v", err)
	}

	switch args.Command {
	case cli.CmdTUI:
		// Fall back to the plain REPL when not attached to a terminal.
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			err = cli.RunChat(app)
			break
		}
		model := chat.New(app.Cfg, app.Sessions, app.Ctrl)
		_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	case cli.CmdChat:
		err = cli.RunChat(app)
	case cli.CmdAsk:
		err = cli.RunAsk(app, args.Query)
	case cli.CmdServe:
		err = cli.RunServe(app)
	case cli.CmdExport:
		err = cli.RunExport(app, args)
	case cli.CmdConfig:
		err = cli.RunConfig(app, args.Subcommand)
	case cli.CmdStatus:
		err = cli.RunStatus(app)
	}

	if err != nil {
		cli.Fatalf("%v", err)
	}
}
