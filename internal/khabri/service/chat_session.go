package service

import (
	"sync"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/pkg/common"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ChatSession is an ordered transcript of one conversation.
type ChatSession struct {
	ID string

	mu    sync.Mutex
	turns []entity.ChatTurn
}

// Append adds a turn at the end of the transcript.
func (s *ChatSession) Append(turn entity.ChatTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
}

// Rollback removes the most recent occurrence of turn and reports whether one was found.
func (s *ChatSession) Rollback(turn entity.ChatTurn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.turns) - 1; i >= 0; i-- {
		if s.turns[i] == turn {
			s.turns = append(s.turns[:i], s.turns[i+1:]...)
			return true
		}
	}
	return false
}

// Transcript returns a copy of the turns so far.
func (s *ChatSession) Transcript() []entity.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.ChatTurn, len(s.turns))
	copy(out, s.turns)
	return out
}

// SessionStore keeps chat sessions in memory, expiring idle ones after ttl.
type SessionStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{cache: cache.New(ttl, ttl)}
}

// Get returns the session for id, creating it when missing. An empty id selects
// the shared default session. Each access extends the session's lifetime.
func (s *SessionStore) Get(id string) *ChatSession {
	if id == "" {
		id = common.DefaultSessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cache.Get(id); ok {
		session := v.(*ChatSession)
		s.cache.SetDefault(id, session)
		return session
	}
	session := &ChatSession{ID: id}
	s.cache.SetDefault(id, session)
	return session
}

// New starts a session under a fresh random id.
func (s *SessionStore) New() *ChatSession {
	return s.Reset(uuid.NewString())
}

// Reset replaces the session for id with an empty one.
func (s *SessionStore) Reset(id string) *ChatSession {
	if id == "" {
		id = common.DefaultSessionID
	}
	session := &ChatSession{ID: id}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.SetDefault(id, session)
	return session
}
