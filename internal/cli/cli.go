// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - argument parsing and usage for the synthchat binary.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command identifies the subcommand to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdAsk
	CmdServe
	CmdExport
	CmdConfig
	CmdStatus
	CmdVersion
	CmdHelp
)

// Args holds parsed command-line arguments.
type Args struct {
	Command Command

	// Global flags
	Model   string
	Config  string // explicit config file path
	Verbose bool

	// Command-specific
	Query      string // ask
	Format     string // export: md, html, json
	All        bool   // export: archive every session
	Subcommand string // config: show | path

	// Raw holds anything left after flag parsing.
	Raw []string
}

const usageText = `synthchat - terminal chat for the HustleSynth platform

Usage:
  synthchat                    Start the TUI (default)
  synthchat chat               Plain-terminal chat (no TUI)
  synthchat ask "question"     Ask a single question and exit
  synthchat serve              Serve the docs site and API proxy
  synthchat export [flags]     Export conversations
  synthchat config [show]      Show configuration
  synthchat status             Show stored sessions and settings
  synthchat version            Print version
  synthchat help               Show this help

Flags:
  -m, --model NAME      Override the model for this run
  -c, --config PATH     Use an explicit config file
  -v, --verbose         Log request/response details

Export flags:
  --format md|html|json Export format (default md)
  --all                 Archive every conversation as JSON

Environment:
  OPENAI_API_KEY, ANTHROPIC_API_KEY, HUSTLESYNTH_API_KEY
  SYNTHCHAT_MODEL, SYNTHCHAT_DATA_DIR, SYNTHCHAT_HOST, SYNTHCHAT_PORT`

// ParseArgs parses os.Args-style arguments (without the program name).
func ParseArgs(argv []string) (*Args, error) {
	args := &Args{Command: CmdTUI, Format: "md"}

	rest := make([]string, 0, len(argv))
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch arg {
		case "-m", "--model":
			i++
			if i >= len(argv) {
				return nil, fmt.Errorf("%s requires a value", arg)
			}
			args.Model = argv[i]
		case "-c", "--config":
			i++
			if i >= len(argv) {
				return nil, fmt.Errorf("%s requires a value", arg)
			}
			args.Config = argv[i]
		case "-v", "--verbose":
			args.Verbose = true
		case "--format":
			i++
			if i >= len(argv) {
				return nil, fmt.Errorf("--format requires a value")
			}
			args.Format = strings.ToLower(argv[i])
		case "--all":
			args.All = true
		case "-h", "--help":
			args.Command = CmdHelp
			return args, nil
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown flag %s", arg)
			}
			rest = append(rest, arg)
		}
	}

	if len(rest) == 0 {
		return args, nil
	}

	switch rest[0] {
	case "chat":
		args.Command = CmdChat
	case "ask":
		args.Command = CmdAsk
		if len(rest) < 2 {
			return nil, fmt.Errorf("ask requires a question")
		}
		args.Query = strings.Join(rest[1:], " ")
	case "serve":
		args.Command = CmdServe
	case "export":
		args.Command = CmdExport
	case "config":
		args.Command = CmdConfig
		if len(rest) > 1 {
			args.Subcommand = rest[1]
		}
	case "status", "s":
		args.Command = CmdStatus
	case "version", "--version":
		args.Command = CmdVersion
	case "help":
		args.Command = CmdHelp
	default:
		return nil, fmt.Errorf("unknown command %q (try synthchat help)", rest[0])
	}
	args.Raw = rest[1:]
	return args, nil
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Println(usageText)
}

// PrintVersion writes version details to stdout.
func PrintVersion() {
	fmt.Printf("synthchat %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// Fatalf prints an error to stderr and exits non-zero.
func Fatalf(format string, v ...any) {
	fmt.Fprintf(os.Stderr, "synthchat: "+format+"\n", v...)
	os.Exit(1)
}
