// Package transport performs the single network call of a chat turn:
// one POST to the remote /chatbot endpoint, one reply or one failure.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/interlinker0325/chatbot-bookshop/pkg/chat"
)

// DefaultTimeout bounds a chatbot call. The endpoint sits in front of an
// LLM, so answers are slow but not unbounded.
const DefaultTimeout = 2 * time.Minute

// Client talks to one chatbot endpoint. It keeps a stable session id across
// calls so the server can resolve follow-up questions against earlier
// recommendations.
type Client struct {
	endpoint   string
	sessionID  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithSessionID pins the session id instead of generating one.
func WithSessionID(id string) Option {
	return func(c *Client) { c.sessionID = id }
}

// WithLogger attaches a logger for diagnostics. Failures are never
// surfaced to the user beyond the store's fallback message, so this is the
// only place they become visible.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client for the given endpoint URL.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		sessionID:  uuid.NewString(),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID returns the session id sent with every query.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Send POSTs the query and interprets the response. Every failure mode --
// network error, non-2xx status, malformed body -- collapses into a single
// error; the call is never retried and error subtypes are not exposed.
func (c *Client) Send(ctx context.Context, query string) (chat.Reply, error) {
	body, err := json.Marshal(chat.Request{Query: query, SessionID: c.sessionID})
	if err != nil {
		return chat.Reply{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return chat.Reply{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("sending query",
		zap.String("endpoint", c.endpoint),
		zap.Int("body_size", len(body)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("chatbot request failed", zap.Error(err))
		return chat.Reply{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("reading chatbot response failed", zap.Error(err))
		return chat.Reply{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("chatbot returned error status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return chat.Reply{}, fmt.Errorf("chatbot returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chat.Response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		c.logger.Error("malformed chatbot response", zap.Error(err))
		return chat.Reply{}, fmt.Errorf("unmarshal response: %w", err)
	}

	reply := parsed.Reply()
	c.logger.Debug("received reply",
		zap.Int("books", len(reply.Books)),
		zap.Int("text_len", len(reply.Text)),
	)

	return reply, nil
}
