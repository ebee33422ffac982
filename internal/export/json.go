// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hustlesynth/synthchat/internal/model"
)

// =============================================================================
// JSON ARCHIVE (ALL CHATS)
// =============================================================================

// archivePrefix names archive files; the timestamp makes repeats distinct.
const archivePrefix = "hustlesynth-chats-"

// WriteArchive writes every session as one JSON document keyed by
// session id, named hustlesynth-chats-<timestamp>.json in dir, and
// returns the output path. The document layout matches the persisted
// "chats" value so an archive doubles as a backup.
func WriteArchive(dir string, sessions []model.Session) (string, error) {
	byID := make(map[string]model.Session, len(sessions))
	for _, s := range sessions {
		byID[s.ID] = s
	}

	data, err := json.MarshalIndent(byID, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal archive: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	// ISO timestamp with colons swapped out so the name is valid on
	// every filesystem.
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05Z")
	path := filepath.Join(dir, archivePrefix+stamp+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write archive: %w", err)
	}
	return path, nil
}

// =============================================================================
// JSON EXPORTER (SINGLE SESSION)
// =============================================================================

// JSONExporter exports one session as pretty-printed JSON.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export renders the session as indented JSON.
func (e *JSONExporter) Export(s model.Session) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// FileExtension returns ".json".
func (e *JSONExporter) FileExtension() string { return ".json" }

// MimeType returns the JSON MIME type.
func (e *JSONExporter) MimeType() string { return "application/json" }
