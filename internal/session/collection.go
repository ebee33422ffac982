// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/hustlesynth/synthchat/internal/model"
	"github.com/hustlesynth/synthchat/internal/storage"
)

// =============================================================================
// STORAGE KEYS
// =============================================================================

const (
	// ChatsKey is the storage key the session map persists under.
	ChatsKey = "chats"
	// ActiveKey is the storage key the active-session id persists under
	// (a bare string, not JSON).
	ActiveKey = "lastActiveChatId"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrSessionNotFound is returned when an operation names a session id
// that does not exist. Compare with errors.Is.
var ErrSessionNotFound = errors.New("session not found")

// NotFoundError carries the missing id and matches ErrSessionNotFound.
type NotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// Is allows errors.Is(err, ErrSessionNotFound).
func (e *NotFoundError) Is(target error) bool {
	return target == ErrSessionNotFound
}

// =============================================================================
// COLLECTION
// =============================================================================

// Collection holds every chat session plus the active-session pointer,
// backed by the persistent store. Safe for concurrent use.
type Collection struct {
	mu           sync.Mutex
	store        *storage.Store
	defaultModel string

	sessions map[string]*model.Session
	activeID string
}

// NewCollection creates an empty collection. Call Load before use;
// defaultModel is the model new sessions start with.
func NewCollection(store *storage.Store, defaultModel string) *Collection {
	return &Collection{
		store:        store,
		defaultModel: defaultModel,
		sessions:     make(map[string]*model.Session),
	}
}

// Load restores sessions and the active pointer from the store. When
// nothing is persisted (or the persisted data is undecodable) a fresh
// session is created so the collection is never empty. A dangling
// active pointer re-targets the newest session.
func (c *Collection) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var persisted map[string]*model.Session
	if c.store.Load(ChatsKey, &persisted) && len(persisted) > 0 {
		c.sessions = persisted
	} else {
		c.sessions = make(map[string]*model.Session)
	}

	if len(c.sessions) == 0 {
		s := c.newUniqueSession()
		c.sessions[s.ID] = s
		c.activeID = s.ID
		return c.persistAll()
	}

	if id, ok := c.store.LoadString(ActiveKey); ok {
		c.activeID = id
	}
	if _, ok := c.sessions[c.activeID]; !ok {
		c.activeID = c.newestIDLocked()
		return c.persistActive()
	}
	return nil
}

// Create makes a new empty session, activates it, and persists both the
// session map and the pointer.
func (c *Collection) Create() (model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.newUniqueSession()
	c.sessions[s.ID] = s
	c.activeID = s.ID
	if err := c.persistAll(); err != nil {
		return model.Session{}, err
	}
	return cloneSession(s), nil
}

// Select makes the named session active and persists only the pointer.
// Selecting the already-active session is a no-op that still succeeds.
func (c *Collection) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sessions[id]; !ok {
		return &NotFoundError{ID: id}
	}
	if c.activeID == id {
		return nil
	}
	c.activeID = id
	return c.persistActive()
}

// Delete removes the named session. Deleting the active session moves
// the pointer to the newest remaining session; deleting the last
// session creates a fresh one so the collection never empties.
func (c *Collection) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sessions[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(c.sessions, id)

	if len(c.sessions) == 0 {
		s := c.newUniqueSession()
		c.sessions[s.ID] = s
		c.activeID = s.ID
	} else if c.activeID == id {
		c.activeID = c.newestIDLocked()
	}
	return c.persistAll()
}

// Append adds a message to the named session and persists. The first
// message also derives the session title.
func (c *Collection) Append(id string, msg model.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	s.AddMessage(msg)
	return c.persistChats()
}

// SetModel changes the model a session talks to and persists.
func (c *Collection) SetModel(id, modelName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	s.Model = modelName
	return c.persistChats()
}

// ClearMessages empties a session's transcript and resets its title.
func (c *Collection) ClearMessages(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	s.Messages = []model.Message{}
	s.Title = model.DefaultTitle
	return c.persistChats()
}

// Reset wipes every session and starts over with one fresh session.
func (c *Collection) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessions = make(map[string]*model.Session)
	s := c.newUniqueSession()
	c.sessions[s.ID] = s
	c.activeID = s.ID
	return c.persistAll()
}

// Get returns a copy of the named session.
func (c *Collection) Get(id string) (model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[id]
	if !ok {
		return model.Session{}, &NotFoundError{ID: id}
	}
	return cloneSession(s), nil
}

// Active returns a copy of the active session.
func (c *Collection) Active() (model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[c.activeID]
	if !ok {
		// Load guarantees this cannot happen; defend anyway.
		return model.Session{}, &NotFoundError{ID: c.activeID}
	}
	return cloneSession(s), nil
}

// ActiveID returns the active session id.
func (c *Collection) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// List returns copies of all sessions, newest first. Creation-time ties
// break on id so the order is deterministic.
func (c *Collection) List() []model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		out = append(out, cloneSession(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// Len returns the number of sessions.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// =============================================================================
// INTERNAL
// =============================================================================

// newUniqueSession creates a session whose timestamp-derived id does
// not collide with an existing one. Two creations in the same
// millisecond increment the numeric id until free.
func (c *Collection) newUniqueSession() *model.Session {
	s := model.NewSession(c.defaultModel)
	for {
		if _, taken := c.sessions[s.ID]; !taken {
			return s
		}
		n, err := strconv.ParseInt(s.ID, 10, 64)
		if err != nil {
			// Non-numeric id cannot happen for fresh sessions; restamp.
			s.ID = model.NewSessionID(time.Now())
			continue
		}
		s.ID = strconv.FormatInt(n+1, 10)
	}
}

// newestIDLocked returns the id of the newest session. Caller holds the
// lock and guarantees the map is non-empty.
func (c *Collection) newestIDLocked() string {
	var newest *model.Session
	for _, s := range c.sessions {
		if newest == nil ||
			s.CreatedAt.After(newest.CreatedAt) ||
			(s.CreatedAt.Equal(newest.CreatedAt) && s.ID > newest.ID) {
			newest = s
		}
	}
	return newest.ID
}

func (c *Collection) persistChats() error {
	if err := c.store.Save(ChatsKey, c.sessions); err != nil {
		return fmt.Errorf("failed to persist sessions: %w", err)
	}
	return nil
}

func (c *Collection) persistActive() error {
	if err := c.store.SaveString(ActiveKey, c.activeID); err != nil {
		return fmt.Errorf("failed to persist active session id: %w", err)
	}
	return nil
}

func (c *Collection) persistAll() error {
	if err := c.persistChats(); err != nil {
		return err
	}
	return c.persistActive()
}

// cloneSession copies a session so callers cannot mutate collection
// state through the returned value.
func cloneSession(s *model.Session) model.Session {
	out := *s
	out.Messages = make([]model.Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}
