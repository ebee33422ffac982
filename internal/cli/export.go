// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

// export.go - conversation export handler.
package cli

import (
	"fmt"

	"github.com/hustlesynth/synthchat/internal/export"
)

// RunExport exports the active conversation in the requested format,
// or archives every conversation as JSON with --all.
func RunExport(app *App, args *Args) error {
	if args.All {
		path, err := export.WriteArchive(".", app.Sessions.List())
		if err != nil {
			return err
		}
		fmt.Println("archived", app.Sessions.Len(), "conversations to", path)
		return nil
	}

	active, err := app.Sessions.Active()
	if err != nil {
		return err
	}

	opts := export.DefaultOptions()
	var exporter export.Exporter
	switch args.Format {
	case "md", "markdown":
		exporter = export.NewMarkdownExporter(opts)
	case "html":
		exporter = export.NewHTMLExporter(opts)
	case "json":
		exporter = export.NewJSONExporter()
	default:
		return fmt.Errorf("unknown export format %q (md, html, json)", args.Format)
	}

	path, err := export.ExportToFile(active, exporter, opts)
	if err != nil {
		return err
	}
	fmt.Println("exported to", path)
	return nil
}
