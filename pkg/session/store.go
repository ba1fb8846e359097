// Package session keeps the server-side context of chatbot sessions: the
// running transcript plus the last recommendation set used to resolve
// follow-up questions. Two drivers implement the same Store interface, an
// in-memory map (the default) and SQLite for deployments that want the
// transcripts to survive a restart.
package session

import (
	"context"
	"time"

	"github.com/interlinker0325/chatbot-bookshop/pkg/chat"
)

// Entry is one transcript line.
type Entry struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the follow-up context for one session id.
type Session struct {
	ID        string      `json:"id"`
	Messages  []Entry     `json:"messages"`
	LastQuery string      `json:"last_query,omitempty"`
	LastBooks []chat.Book `json:"last_books,omitempty"`
}

// Store persists sessions. Append creates the session on first use; Get
// returns ErrNotFound for ids that were never appended to.
type Store interface {
	// Append adds a transcript entry, creating the session if needed.
	Append(ctx context.Context, id string, entry Entry) error

	// Get retrieves a session with its full transcript.
	Get(ctx context.Context, id string) (*Session, error)

	// SetRecommendations records the books and query of the most recent
	// recommendation turn, for follow-up resolution.
	SetRecommendations(ctx context.Context, id string, query string, books []chat.Book) error

	// List returns all known session ids.
	List(ctx context.Context) ([]string, error)

	// Close releases any resources held by the driver.
	Close() error
}

// ErrNotFound is returned when a session id is unknown.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	if e.ID == "" {
		return "session not found"
	}
	return "session not found: " + e.ID
}
