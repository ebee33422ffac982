// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"testing"

	"github.com/hustlesynth/synthchat/internal/model"
	"github.com/hustlesynth/synthchat/internal/storage"
)

func newTestCollection(t *testing.T) (*Collection, *storage.Store) {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	c := NewCollection(store, "synth-1")
	if err := c.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return c, store
}

func TestLoadEmptyCreatesSession(t *testing.T) {
	c, _ := newTestCollection(t)

	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	active, err := c.Active()
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if active.Title != model.DefaultTitle {
		t.Errorf("Title = %q, want %q", active.Title, model.DefaultTitle)
	}
	if active.Model != "synth-1" {
		t.Errorf("Model = %q, want synth-1", active.Model)
	}
}

func TestCreateActivates(t *testing.T) {
	c, _ := newTestCollection(t)

	s, err := c.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.ActiveID() != s.ID {
		t.Errorf("ActiveID = %q, want %q", c.ActiveID(), s.ID)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestCreateIDsUnique(t *testing.T) {
	c, _ := newTestCollection(t)

	seen := map[string]bool{c.ActiveID(): true}
	// Rapid creation lands many sessions in the same millisecond; ids
	// must still come out unique.
	for i := 0; i < 50; i++ {
		s, err := c.Create()
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if seen[s.ID] {
			t.Fatalf("duplicate session id %q", s.ID)
		}
		seen[s.ID] = true
	}
}

func TestSelect(t *testing.T) {
	c, _ := newTestCollection(t)
	first := c.ActiveID()
	second, _ := c.Create()

	if err := c.Select(first); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if c.ActiveID() != first {
		t.Errorf("ActiveID = %q, want %q", c.ActiveID(), first)
	}

	// Idempotent.
	if err := c.Select(first); err != nil {
		t.Errorf("re-Select failed: %v", err)
	}

	if err := c.Select("1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Select of missing id: err = %v, want ErrSessionNotFound", err)
	}
	// A failed select leaves the pointer alone.
	if c.ActiveID() != first {
		t.Errorf("ActiveID moved after failed Select")
	}
	_ = second
}

func TestDeleteActiveSelectsNewestRemaining(t *testing.T) {
	c, _ := newTestCollection(t)
	first := c.ActiveID()
	second, _ := c.Create()
	third, _ := c.Create()

	// third is active and newest; delete it.
	if err := c.Delete(third.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if c.ActiveID() != second.ID {
		t.Errorf("ActiveID = %q, want newest remaining %q", c.ActiveID(), second.ID)
	}
	_ = first
}

func TestDeleteInactiveKeepsPointer(t *testing.T) {
	c, _ := newTestCollection(t)
	first := c.ActiveID()
	second, _ := c.Create()

	if err := c.Delete(first); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if c.ActiveID() != second.ID {
		t.Errorf("ActiveID = %q, want unchanged %q", c.ActiveID(), second.ID)
	}
}

func TestDeleteLastCreatesFresh(t *testing.T) {
	c, _ := newTestCollection(t)
	only := c.ActiveID()

	if err := c.Delete(only); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1 after deleting last", c.Len())
	}
	active, err := c.Active()
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if active.ID == only {
		t.Error("fresh session reused the deleted id")
	}
	if active.MessageCount() != 0 {
		t.Error("fresh session not empty")
	}
}

func TestDeleteMissing(t *testing.T) {
	c, _ := newTestCollection(t)
	if err := c.Delete("1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestAppendDerivesTitle(t *testing.T) {
	c, _ := newTestCollection(t)
	id := c.ActiveID()

	if err := c.Append(id, model.NewUserMessage("what is Go?")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	s, err := c.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if s.Title != "what is Go?" {
		t.Errorf("Title = %q, want derived from first message", s.Title)
	}
	if s.MessageCount() != 1 {
		t.Errorf("MessageCount = %d, want 1", s.MessageCount())
	}
}

func TestClearMessages(t *testing.T) {
	c, _ := newTestCollection(t)
	id := c.ActiveID()

	_ = c.Append(id, model.NewUserMessage("hello"))
	if err := c.ClearMessages(id); err != nil {
		t.Fatalf("ClearMessages failed: %v", err)
	}

	s, _ := c.Get(id)
	if s.MessageCount() != 0 {
		t.Errorf("MessageCount = %d, want 0", s.MessageCount())
	}
	if s.Title != model.DefaultTitle {
		t.Errorf("Title = %q, want reset to default", s.Title)
	}
}

func TestReset(t *testing.T) {
	c, _ := newTestCollection(t)
	_, _ = c.Create()
	_, _ = c.Create()

	if err := c.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 after Reset", c.Len())
	}
}

func TestListNewestFirst(t *testing.T) {
	c, _ := newTestCollection(t)
	_, _ = c.Create()
	_, _ = c.Create()

	list := c.List()
	if len(list) != 3 {
		t.Fatalf("len(List) = %d, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		prev, cur := list[i-1], list[i]
		if cur.CreatedAt.After(prev.CreatedAt) {
			t.Errorf("List not newest-first at %d", i)
		}
		if cur.CreatedAt.Equal(prev.CreatedAt) && cur.ID > prev.ID {
			t.Errorf("tie at %d not broken by id", i)
		}
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	c := NewCollection(store, "synth-1")
	if err := c.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	first := c.ActiveID()
	_ = c.Append(first, model.NewUserMessage("remember me"))
	second, _ := c.Create()
	_ = c.Select(first)

	// Fresh collection over the same store sees everything.
	reloaded := NewCollection(store, "synth-1")
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("Len = %d, want 2 after reload", reloaded.Len())
	}
	if reloaded.ActiveID() != first {
		t.Errorf("ActiveID = %q, want %q", reloaded.ActiveID(), first)
	}
	s, err := reloaded.Get(first)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if s.MessageCount() != 1 || s.Messages[0].Content != "remember me" {
		t.Errorf("messages lost across reload: %+v", s.Messages)
	}
	if _, err := reloaded.Get(second.ID); err != nil {
		t.Errorf("second session lost across reload: %v", err)
	}
}

func TestLoadDanglingPointerRetargets(t *testing.T) {
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	c := NewCollection(store, "synth-1")
	_ = c.Load()
	_, _ = c.Create()

	// Persist a pointer to a session that does not exist.
	if err := store.SaveString(ActiveKey, "999"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	reloaded := NewCollection(store, "synth-1")
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if _, err := reloaded.Active(); err != nil {
		t.Errorf("Active failed after dangling pointer: %v", err)
	}
	if reloaded.ActiveID() == "999" {
		t.Error("dangling pointer survived Load")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	c, _ := newTestCollection(t)
	id := c.ActiveID()
	_ = c.Append(id, model.NewUserMessage("original"))

	s, _ := c.Get(id)
	s.Messages[0].Content = "mutated"
	s.Title = "mutated"

	again, _ := c.Get(id)
	if again.Messages[0].Content != "original" {
		t.Error("mutation through Get copy leaked into collection")
	}
}
