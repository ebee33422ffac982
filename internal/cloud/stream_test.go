// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkedReader delivers its payload n bytes at a time to exercise
// frames split across network reads.
type chunkedReader struct {
	data []byte
	pos  int
	n    int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	end := r.pos + r.n
	if end > len(r.data) {
		end = len(r.data)
	}
	n := copy(p, r.data[r.pos:end])
	r.pos += n
	return n, nil
}

// failingReader returns some data then a non-EOF error.
type failingReader struct {
	data string
	read bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		return copy(p, r.data), nil
	}
	return 0, errors.New("connection reset")
}

func TestStreamReaderAccumulates(t *testing.T) {
	stream := "data: {\"content\":\"Hel\"}\n\ndata: {\"content\":\"lo\"}\n\ndata: [DONE]\n\n"

	r := NewStreamReader(strings.NewReader(stream))
	got, err := r.Consume(context.Background(), nil)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got != "Hello" {
		t.Errorf("accumulated = %q, want Hello", got)
	}
	if r.State() != StateDone {
		t.Errorf("state = %v, want done", r.State())
	}
}

func TestStreamReaderCallbackReceivesFullBuffer(t *testing.T) {
	stream := "data: {\"content\":\"a\"}\n\ndata: {\"content\":\"b\"}\n\ndata: {\"content\":\"c\"}\n\ndata: [DONE]\n\n"

	var updates []string
	r := NewStreamReader(strings.NewReader(stream))
	if _, err := r.Consume(context.Background(), func(acc string) {
		updates = append(updates, acc)
	}); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	want := []string{"a", "ab", "abc"}
	if len(updates) != len(want) {
		t.Fatalf("got %d updates, want %d: %v", len(updates), len(want), updates)
	}
	for i := range want {
		if updates[i] != want[i] {
			t.Errorf("update[%d] = %q, want %q", i, updates[i], want[i])
		}
	}
}

func TestStreamReaderEmptyDeltaInvokesCallback(t *testing.T) {
	stream := "data: {\"content\":\"\"}\n\ndata: {\"content\":\"x\"}\n\ndata: [DONE]\n\n"

	count := 0
	r := NewStreamReader(strings.NewReader(stream))
	if _, err := r.Consume(context.Background(), func(string) { count++ }); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if count != 2 {
		t.Errorf("callback invoked %d times, want 2 (empty deltas included)", count)
	}
}

func TestStreamReaderSkipsMalformedFrames(t *testing.T) {
	stream := "data: {\"content\":\"good\"}\n\ndata: {not json\n\ndata: {\"content\":\"!\"}\n\ndata: [DONE]\n\n"

	r := NewStreamReader(strings.NewReader(stream))
	got, err := r.Consume(context.Background(), nil)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got != "good!" {
		t.Errorf("accumulated = %q, want good!", got)
	}
}

func TestStreamReaderSplitAcrossChunks(t *testing.T) {
	stream := "data: {\"content\":\"Hello\"}\n\ndata: {\"content\":\" world\"}\n\ndata: [DONE]\n\n"

	// One byte per read: every frame arrives split.
	r := NewStreamReader(&chunkedReader{data: []byte(stream), n: 1})
	got, err := r.Consume(context.Background(), nil)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got != "Hello world" {
		t.Errorf("accumulated = %q, want %q", got, "Hello world")
	}
}

func TestStreamReaderFramesAfterSentinelDropped(t *testing.T) {
	stream := "data: {\"content\":\"keep\"}\n\ndata: [DONE]\n\ndata: {\"content\":\"drop\"}\n\n"

	r := NewStreamReader(strings.NewReader(stream))
	got, err := r.Consume(context.Background(), nil)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got != "keep" {
		t.Errorf("accumulated = %q, want keep", got)
	}
}

func TestStreamReaderEOFWithoutSentinel(t *testing.T) {
	stream := "data: {\"content\":\"partial\"}\n"

	r := NewStreamReader(strings.NewReader(stream))
	got, err := r.Consume(context.Background(), nil)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got != "partial" {
		t.Errorf("accumulated = %q, want partial", got)
	}
	if r.State() != StateDone {
		t.Errorf("state = %v, want done", r.State())
	}
}

func TestStreamReaderFailureDiscardsAccumulated(t *testing.T) {
	r := NewStreamReader(&failingReader{data: "data: {\"content\":\"partial\"}\n"})

	got, err := r.Consume(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error from failing reader")
	}
	if got != "" {
		t.Errorf("accumulated = %q, want empty on failure", got)
	}
	if r.State() != StateFailed {
		t.Errorf("state = %v, want failed", r.State())
	}
}

func TestStreamReaderIgnoresNonDataLines(t *testing.T) {
	stream := ": comment\nevent: message\nid: 7\ndata: {\"content\":\"x\"}\n\ndata: [DONE]\n\n"

	r := NewStreamReader(strings.NewReader(stream))
	got, err := r.Consume(context.Background(), nil)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got != "x" {
		t.Errorf("accumulated = %q, want x", got)
	}
}

func TestStreamReaderCRLF(t *testing.T) {
	stream := "data: {\"content\":\"a\"}\r\n\r\ndata: [DONE]\r\n\r\n"

	r := NewStreamReader(strings.NewReader(stream))
	got, err := r.Consume(context.Background(), nil)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got != "a" {
		t.Errorf("accumulated = %q, want a", got)
	}
}

func TestStreamReaderContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewStreamReader(strings.NewReader("data: {\"content\":\"x\"}\n"))
	if _, err := r.Consume(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if r.State() != StateFailed {
		t.Errorf("state = %v, want failed", r.State())
	}
}

func TestStreamStateString(t *testing.T) {
	tests := []struct {
		state StreamState
		want  string
	}{
		{StateReading, "reading"},
		{StateDraining, "draining"},
		{StateDone, "done"},
		{StateFailed, "failed"},
		{StreamState(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
