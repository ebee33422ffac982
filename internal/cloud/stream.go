// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// =============================================================================
// STREAM STATES
// =============================================================================

// StreamState is the lifecycle state of a StreamReader.
type StreamState int

const (
	// StateReading means frames are being consumed and appended.
	StateReading StreamState = iota
	// StateDraining means the [DONE] sentinel arrived; remaining input
	// is read off the wire but no longer appended.
	StateDraining
	// StateDone means the stream ended cleanly.
	StateDone
	// StateFailed means a read error ended the stream; accumulated text
	// is not returned.
	StateFailed
)

// String returns the state name for logging and tests.
func (s StreamState) String() string {
	switch s {
	case StateReading:
		return "reading"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// =============================================================================
// STREAM READER
// =============================================================================

// framePrefix marks an SSE data line.
const framePrefix = "data: "

// doneSentinel terminates the frame sequence.
const doneSentinel = "[DONE]"

// streamFrame is one parsed SSE frame. Frames may legitimately carry an
// empty delta (keep-alives, role announcements).
type streamFrame struct {
	Content string `json:"content"`
}

// StreamReader consumes an SSE completion stream. Lines are buffered
// through bufio so a frame split across network chunks reassembles
// before parsing; malformed frames are skipped rather than fatal.
//
// A reader is single-use: Consume runs the stream to completion once.
type StreamReader struct {
	br    *bufio.Reader
	state StreamState
	buf   strings.Builder
}

// NewStreamReader creates a reader over an SSE response body.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		br:    bufio.NewReader(r),
		state: StateReading,
	}
}

// State returns the reader's current lifecycle state.
func (r *StreamReader) State() StreamState {
	return r.state
}

// Consume reads the stream until it ends, invoking onUpdate with the
// full accumulated text after every successfully parsed frame
// (empty-delta frames included). Returns the complete accumulated text.
//
// A transport error mid-stream moves the reader to StateFailed and the
// partial text is discarded from the return value; the error alone
// tells the caller what happened. onUpdate may be nil.
func (r *StreamReader) Consume(ctx context.Context, onUpdate func(accumulated string)) (string, error) {
	for {
		select {
		case <-ctx.Done():
			r.state = StateFailed
			return "", ctx.Err()
		default:
		}

		line, err := r.br.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// A final unterminated line still counts as a frame.
				if line != "" {
					r.handleLine(line, onUpdate)
				}
				r.state = StateDone
				return r.buf.String(), nil
			}
			r.state = StateFailed
			return "", fmt.Errorf("stream read failed: %w", err)
		}

		r.handleLine(line, onUpdate)
	}
}

// handleLine processes one wire line: frame, sentinel, or noise.
func (r *StreamReader) handleLine(line string, onUpdate func(string)) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, framePrefix) {
		// Blank separators, comments, and unknown fields are ignored.
		return
	}
	data := line[len(framePrefix):]

	if data == doneSentinel {
		r.state = StateDraining
		return
	}
	if r.state == StateDraining {
		// Frames after the sentinel are read off the wire but dropped.
		return
	}

	var frame streamFrame
	if err := json.Unmarshal([]byte(data), &frame); err != nil {
		// Skip malformed frames; a single bad frame must not kill the
		// stream.
		return
	}

	r.buf.WriteString(frame.Content)
	if onUpdate != nil {
		onUpdate(r.buf.String())
	}
}
