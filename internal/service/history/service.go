// Package history owns per-user conversation state: the active message
// list plus a bounded collection of frozen session snapshots.
package history

import (
	"sync"
	"time"

	"github.com/abaanfida/unixora/internal/model/chat"
)

// DefaultLimit is the number of stored sessions kept per user.
const DefaultLimit = 10

// Service encapsulates conversation state management. A single logical
// writer (the conversation controller) drives mutations per user; the lock
// protects the map across users.
type Service struct {
	mu    sync.RWMutex
	limit int
	users map[string]*state
}

// state is one user's conversation memory.
type state struct {
	active   []chat.Message
	activeID int // loaded session id, 0 when the conversation is fresh
	sessions []chat.Session
	greeting chat.Message
}

// NewService bootstraps the in-memory history service.
func NewService(limit int) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Service{
		limit: limit,
		users: make(map[string]*state),
	}
}

func (s *Service) state(userID string) *state {
	st, ok := s.users[userID]
	if !ok {
		st = &state{}
		s.users[userID] = st
	}
	return st
}

// StartNew resets the user's active list to a single bot greeting and
// clears the active-session pointer. No session record is created yet.
func (s *Service) StartNew(userID string, greeting chat.Message) []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(userID)
	greeting.ID = 0
	greeting.Type = chat.TypeBot
	st.greeting = greeting
	st.active = []chat.Message{greeting}
	st.activeID = 0
	return copyMessages(st.active)
}

// AppendUser appends a user message to the active list. If the active list
// is still a fresh conversation, the message materializes a new session
// record at the front of history, evicting beyond the retention limit. The
// stored snapshot is frozen at this point and never updated afterwards.
func (s *Service) AppendUser(userID, text string) (chat.Message, *chat.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(userID)
	fresh := st.activeID == 0 && len(st.active) <= 1

	msg := chat.Message{
		ID:   len(st.active) + 1,
		Type: chat.TypeUser,
		Text: text,
	}
	st.active = append(st.active, msg)

	if !fresh {
		return msg, nil
	}

	id := 1
	for _, session := range st.sessions {
		if session.ID >= id {
			id = session.ID + 1
		}
	}

	session := chat.NewSession(id, text, st.active, time.Now())
	st.sessions = append([]chat.Session{session}, st.sessions...)
	if len(st.sessions) > s.limit {
		st.sessions = st.sessions[:s.limit]
	}
	return msg, &session
}

// AppendBot appends a bot message to the active list only. Stored session
// snapshots are never retroactively updated.
func (s *Service) AppendBot(userID string, msg chat.Message) chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(userID)
	msg.ID = len(st.active) + 1
	msg.Type = chat.TypeBot
	st.active = append(st.active, msg)
	return msg
}

// Load replaces the active list with the stored snapshot and sets the
// active-session pointer. An unknown id is a silent no-op; loading never
// reorders history.
func (s *Service) Load(userID string, sessionID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(userID)
	for _, session := range st.sessions {
		if session.ID == sessionID {
			st.active = copyMessages(session.Messages)
			st.activeID = sessionID
			return true
		}
	}
	return false
}

// Has reports whether the user has a stored session with this id.
func (s *Service) Has(userID string, sessionID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.users[userID]
	if !ok {
		return false
	}
	for _, session := range st.sessions {
		if session.ID == sessionID {
			return true
		}
	}
	return false
}

// Delete removes a session from history. Deleting the loaded session
// behaves as StartNew with the last greeting.
func (s *Service) Delete(userID string, sessionID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(userID)
	found := false
	kept := st.sessions[:0]
	for _, session := range st.sessions {
		if session.ID == sessionID {
			found = true
			continue
		}
		kept = append(kept, session)
	}
	st.sessions = kept

	if found && st.activeID == sessionID {
		st.active = []chat.Message{st.greeting}
		st.activeID = 0
	}
	return found
}

// Active returns a copy of the user's active message list.
func (s *Service) Active(userID string) []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.users[userID]
	if !ok {
		return nil
	}
	return copyMessages(st.active)
}

// ActiveSessionID returns the loaded session id, or 0 for a fresh
// conversation.
func (s *Service) ActiveSessionID(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.users[userID]; ok {
		return st.activeID
	}
	return 0
}

// Sessions returns the user's stored sessions, most recent first.
func (s *Service) Sessions(userID string) []chat.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.users[userID]
	if !ok {
		return nil
	}
	sessions := make([]chat.Session, len(st.sessions))
	copy(sessions, st.sessions)
	return sessions
}

func copyMessages(messages []chat.Message) []chat.Message {
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied
}
