// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/hustlesynth/synthchat/internal/config"
	"github.com/hustlesynth/synthchat/internal/controller"
	"github.com/hustlesynth/synthchat/internal/session"
	"github.com/hustlesynth/synthchat/internal/storage"
)

// App bundles the wired application: configuration, the persistent
// store, the session collection, and the chat controller. Every
// subcommand runs against one of these.
type App struct {
	Cfg      *config.Config
	Store    *storage.Store
	Sessions *session.Collection
	Ctrl     *controller.Controller
	Verbose  bool
}

// NewApp loads configuration and wires the application. The args model
// flag overrides the configured default for this run.
func NewApp(args *Args) (*App, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.Config != "" {
		cfg, err = config.LoadFromPath(args.Config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg.ApplyEnvOverrides()
	if args.Model != "" {
		cfg.DefaultModel = args.Model
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening data dir: %w", err)
	}

	sessions := session.NewCollection(store, cfg.DefaultModel)
	if err := sessions.Load(); err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}

	clients := controller.NewClients(cfg.Providers)
	if args.Verbose {
		for p, c := range clients {
			clients[p] = c.WithVerbose(true)
		}
	}
	// Settings are re-read from the store on every send, so edits made
	// while the program runs apply to the next message.
	ctrl := controller.New(sessions, clients, func() config.Settings {
		return config.LoadSettings(store)
	})

	return &App{
		Cfg:      cfg,
		Store:    store,
		Sessions: sessions,
		Ctrl:     ctrl,
		Verbose:  args.Verbose,
	}, nil
}
