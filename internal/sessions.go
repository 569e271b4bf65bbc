package internal

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// SessionStore owns the session collection of the current profile.
// Every mutation is written through to the Store, except for the guest profile.
type SessionStore struct {
	mu       sync.Mutex
	store    Store
	owner    string
	sessions []ChatSession // most recent first
	activeID string
	now      func() time.Time
}

// NewSessionStore creates an empty store with no owner
func NewSessionStore(store Store) *SessionStore {
	return &SessionStore{store: store, now: time.Now}
}

// SetClock replaces the time source, for tests
func (s *SessionStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Load replaces the in-memory collection with the one persisted for owner
func (s *SessionStore) Load(owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.owner = owner
	s.sessions = nil
	s.activeID = ""

	if owner == GuestName {
		return nil
	}

	key := ChatsKey(owner)
	raw, ok, err := s.store.Get(key)
	if err != nil {
		return err
	}
	if !ok || raw == "" {
		return nil
	}

	var sessions []ChatSession
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		return fmt.Errorf("failed to parse sessions for %s: %w", owner, err)
	}
	s.sessions = sessions
	LogDebug("Loaded %d session(s) for %s", len(sessions), owner)
	return nil
}

// Reset drops everything in memory without touching the Store
func (s *SessionStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner = ""
	s.sessions = nil
	s.activeID = ""
}

// Rename rebinds the in-memory collection to a new owner and writes it under
// the new owner's key. The active session is kept.
func (s *SessionStore) Rename(owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner = owner
	return s.persist()
}

// Owner returns the profile name the collection belongs to
func (s *SessionStore) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Create starts a session from its first message, prepends it and makes it active
func (s *SessionStore) Create(first ChatMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID()
	session := ChatSession{
		ID:       id,
		Title:    SessionTitle(first.Text),
		Messages: []ChatMessage{first},
	}
	s.sessions = append([]ChatSession{session}, s.sessions...)
	s.activeID = id
	return id, s.persist()
}

// nextID derives an id from the clock, bumped until unique
func (s *SessionStore) nextID() string {
	ms := s.now().UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if s.indexOf(id) < 0 {
			return id
		}
		ms++
	}
}

// Select makes id active. Unknown ids are ignored.
func (s *SessionStore) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		return false
	}
	s.activeID = id
	return true
}

// NewChat clears the active pointer. No session exists until the next send.
func (s *SessionStore) NewChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = ""
}

// Delete removes a session. wasActive reports whether the active pointer was cleared.
func (s *SessionStore) Delete(id string) (wasActive bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.sessions = append(s.sessions[:i:i], s.sessions[i+1:]...)
	if s.activeID == id {
		s.activeID = ""
		wasActive = true
	}
	return wasActive, s.persist()
}

// Append adds msg to a session. Returns false when the session no longer exists.
func (s *SessionStore) Append(sessionID string, msg ChatMessage) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(sessionID)
	if i < 0 {
		LogDebug("Dropping message %s for unknown session %s", msg.ID, sessionID)
		return false, nil
	}

	session := &s.sessions[i]
	if last, ok := session.Last(); ok && msg.Timestamp < last.Timestamp {
		msg.Timestamp = last.Timestamp
	}
	session.Messages = append(session.Messages, msg)
	return true, s.persist()
}

// List returns copies of all sessions, most recent first
func (s *SessionStore) List() []ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session.clone())
	}
	return out
}

// Get returns a copy of one session
func (s *SessionStore) Get(id string) (ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ChatSession{}, false
	}
	return s.sessions[i].clone(), true
}

// Active returns a copy of the active session
func (s *SessionStore) Active() (ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeID == "" {
		return ChatSession{}, false
	}
	i := s.indexOf(s.activeID)
	if i < 0 {
		return ChatSession{}, false
	}
	return s.sessions[i].clone(), true
}

// ActiveID returns the active session id, or "" when none is active
func (s *SessionStore) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

func (s *SessionStore) indexOf(id string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes the whole collection. Caller holds s.mu.
func (s *SessionStore) persist() error {
	if s.owner == "" || s.owner == GuestName {
		return nil
	}
	key := ChatsKey(s.owner)
	if len(s.sessions) == 0 {
		return s.store.Remove(key)
	}
	data, err := json.Marshal(s.sessions)
	if err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	return s.store.Set(key, string(data))
}
