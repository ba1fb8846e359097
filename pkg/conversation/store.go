// Package conversation holds the view-owned state of a chat session: the
// ordered message history, the current draft, and the single in-flight turn.
// The store is plain state with no rendering dependencies so the submit and
// settle contract can be tested without a terminal.
package conversation

import (
	"context"
	"strings"
	"sync"

	"github.com/interlinker0325/chatbot-bookshop/pkg/chat"
)

// FallbackText is the fixed bot message shown when a transport call fails.
const FallbackText = "Sorry, I'm having trouble responding."

// DefaultGreeting seeds the conversation before any user interaction.
const DefaultGreeting = "Hi! I'm the bookshop assistant. What would you like to read next?"

// Sender performs the single network call of a user turn.
type Sender interface {
	Send(ctx context.Context, query string) (chat.Reply, error)
}

// Store is the conversation state for one view. Messages are append-only:
// every accepted submission appends one user message and, once the turn
// settles, exactly one bot message regardless of outcome.
type Store struct {
	mu       sync.Mutex
	messages []chat.Message
	draft    string
	awaiting bool
	onChange func()
}

// NewStore creates a store seeded with the given greeting, or
// DefaultGreeting when empty.
func NewStore(greeting string) *Store {
	if greeting == "" {
		greeting = DefaultGreeting
	}
	return &Store{messages: []chat.Message{chat.BotText(greeting)}}
}

// OnChange registers a hook invoked after every mutation to the message
// list or the awaiting flag. The view uses it to scroll to the newest entry.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Messages returns a copy of the conversation history.
func (s *Store) Messages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chat.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Draft returns the current pending input.
func (s *Store) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft updates the pending input.
func (s *Store) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	s.mu.Unlock()
}

// Awaiting reports whether a turn is in flight. Submission is gated on this
// flag, so at most one transport call is outstanding at a time.
func (s *Store) Awaiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting
}

// Submit starts a user turn. It is a no-op returning ok=false when the
// trimmed text is empty or a turn is already in flight. Otherwise it appends
// the user message, clears the draft, raises the awaiting flag, and returns
// the trimmed query for exactly one transport call.
func (s *Store) Submit(text string) (query string, ok bool) {
	query = strings.TrimSpace(text)
	if query == "" {
		return "", false
	}

	s.mu.Lock()
	if s.awaiting {
		s.mu.Unlock()
		return "", false
	}
	s.messages = append(s.messages, chat.UserMessage(query))
	s.draft = ""
	s.awaiting = true
	s.mu.Unlock()

	s.notify()
	return query, true
}

// Settle completes the in-flight turn with the transport outcome, appending
// exactly one bot message: the text reply, the books reply, or FallbackText
// on any error. Settling with no turn in flight is a no-op.
func (s *Store) Settle(reply chat.Reply, err error) {
	s.mu.Lock()
	if !s.awaiting {
		s.mu.Unlock()
		return
	}

	var msg chat.Message
	switch {
	case err != nil:
		msg = chat.BotText(FallbackText)
	case reply.Kind == chat.ReplyBooks && len(reply.Books) > 0:
		msg = chat.BotBooks(reply.Books)
	default:
		msg = chat.BotText(reply.Text)
	}

	s.messages = append(s.messages, msg)
	s.awaiting = false
	s.mu.Unlock()

	s.notify()
}

// Turn runs a complete submission synchronously: submit, one transport
// call, settle. It returns false when the submission was rejected.
func (s *Store) Turn(ctx context.Context, sender Sender, text string) bool {
	query, ok := s.Submit(text)
	if !ok {
		return false
	}

	reply, err := sender.Send(ctx, query)
	s.Settle(reply, err)
	return true
}

// notify runs the change hook outside the lock so the hook may read the
// store.
func (s *Store) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
