// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve.go - documentation site and API proxy server.
package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/hustlesynth/synthchat/internal/config"
	"github.com/hustlesynth/synthchat/internal/server"
)

// RunServe starts the static docs server with the /api/chat proxy and
// blocks until the listener fails. The config file is watched so edits
// made while serving are surfaced in the log.
func RunServe(app *App) error {
	logger := log.New(os.Stderr, "synthchat: ", log.LstdFlags)

	srv, err := server.NewServer(app.Cfg.Server, app.Cfg.Providers.HustleSynthURL, logger)
	if err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	if path, err := config.ConfigPathTOML(); err == nil {
		watcher, werr := config.NewWatcher(path, func(cfg *config.Config) {
			logger.Printf("config file changed; restart to apply server settings")
		})
		if werr == nil {
			if err := watcher.Start(); err == nil {
				defer watcher.Stop()
			}
		}
	}

	return srv.ListenAndServe()
}
