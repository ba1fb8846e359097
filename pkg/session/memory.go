package session

import (
	"context"
	"sort"
	"sync"

	"github.com/interlinker0325/chatbot-bookshop/pkg/chat"
)

// MemoryStore keeps sessions in a process-local map. Contents are lost on
// restart, which matches the endpoint's historical behavior.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Append(_ context.Context, id string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{ID: id}
		s.sessions[id] = sess
	}
	sess.Messages = append(sess.Messages, entry)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound{ID: id}
	}

	// Copy so callers can't mutate the stored session.
	out := &Session{
		ID:        sess.ID,
		Messages:  make([]Entry, len(sess.Messages)),
		LastQuery: sess.LastQuery,
		LastBooks: make([]chat.Book, len(sess.LastBooks)),
	}
	copy(out.Messages, sess.Messages)
	copy(out.LastBooks, sess.LastBooks)
	return out, nil
}

func (s *MemoryStore) SetRecommendations(_ context.Context, id string, query string, books []chat.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{ID: id}
		s.sessions[id] = sess
	}
	sess.LastQuery = query
	sess.LastBooks = make([]chat.Book, len(books))
	copy(sess.LastBooks, books)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
