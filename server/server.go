// Package server implements the /chatbot HTTP endpoint: a bookseller
// assistant that answers book questions and recommends books with purchase
// links, keeping per-session context for follow-up questions.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/interlinker0325/chatbot-bookshop/pkg/chat"
	"github.com/interlinker0325/chatbot-bookshop/pkg/llm"
	"github.com/interlinker0325/chatbot-bookshop/pkg/session"
)

// defaultSessionID serves clients that don't send a session id.
const defaultSessionID = "default"

// Server hosts the chatbot API in front of an upstream LLM.
type Server struct {
	config     Config
	store      session.Store
	bookseller *Bookseller
	logger     *zap.Logger
	app        *fiber.App
}

// New creates a Server from config. Sessions live in memory unless a
// DBPath is configured.
func New(config Config, logger *zap.Logger) (*Server, error) {
	var store session.Store
	if config.DBPath != "" {
		var err error
		store, err = session.NewSQLiteStore(config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite session store: %w", err)
		}
		logger.Info("using SQLite session storage", zap.String("path", config.DBPath))
	} else {
		store = session.NewMemoryStore()
		logger.Info("using in-memory session storage")
	}

	client := llm.NewClient(config.UpstreamURL, logger)
	return newServer(config, store, client, logger), nil
}

// newServer wires the pieces together; tests inject their own store and
// model client here.
func newServer(config Config, store session.Store, model chatter, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	s := &Server{
		config:     config,
		store:      store,
		bookseller: NewBookseller(model, config, logger),
		logger:     logger,
		app:        app,
	}

	app.Post("/chatbot", s.handleChat)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	// Session inspection endpoints
	app.Get("/sessions", s.handleListSessions)
	app.Get("/sessions/:id", s.handleGetSession)

	return s
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting chatbot server",
		zap.String("listen", s.config.ListenAddr),
		zap.String("upstream", s.config.UpstreamURL),
		zap.String("model", s.config.Model),
	)

	return s.app.Listen(s.config.ListenAddr)
}

// Close shuts down the server and releases resources.
func (s *Server) Close() error {
	return s.store.Close()
}

// ApplyConfig swaps the runtime-tunable settings (model, sampling). Listen
// address and storage are fixed for the process lifetime.
func (s *Server) ApplyConfig(cfg Config) {
	s.bookseller.ApplyConfig(cfg)
}

// handleChat runs one chatbot turn. The order mirrors how a bookseller
// thinks about a question: is it about a book I just recommended, is it
// narrowing the last request, is it about books at all, and only then a
// fresh recommendation.
func (s *Server) handleChat(c *fiber.Ctx) error {
	startTime := time.Now()

	var req chat.Request
	if err := c.BodyParser(&req); err != nil {
		s.logger.Error("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No query provided"})
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	ctx := c.Context()

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		var notFound session.ErrNotFound
		if !errors.As(err, &notFound) {
			s.logger.Error("failed to load session", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		sess = &session.Session{ID: sessionID}
	}

	s.logger.Debug("received query",
		zap.String("session", sessionID),
		zap.Int("history_len", len(sess.Messages)),
		zap.String("query_preview", truncate(req.Query, 100)),
	)

	if err := s.store.Append(ctx, sessionID, session.Entry{
		Role: "user", Content: req.Query, CreatedAt: time.Now(),
	}); err != nil {
		s.logger.Error("failed to record user message", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	// Follow-up about one of the last recommended books?
	if len(sess.LastBooks) > 0 {
		matched, err := s.bookseller.MatchFollowUp(ctx, req.Query, sess.LastBooks)
		if err != nil {
			return s.turnFailed(c, sessionID, err)
		}
		if matched != nil {
			detail, err := s.bookseller.BookDetails(ctx, *matched, req.Query)
			if err != nil {
				return s.turnFailed(c, sessionID, err)
			}
			return s.textReply(c, ctx, sessionID, detail, startTime)
		}
	}

	// Follow-up narrowing the previous request with criteria?
	if sess.LastQuery != "" {
		isCriteria, err := s.bookseller.IsCriteriaFollowUp(ctx, req.Query, sess.LastQuery)
		if err != nil {
			return s.turnFailed(c, sessionID, err)
		}
		if isCriteria {
			books := s.bookseller.Recommend(ctx, sess.LastQuery, sess.Messages, req.Query)
			if err := s.store.SetRecommendations(ctx, sessionID, sess.LastQuery, books); err != nil {
				s.logger.Error("failed to record recommendations", zap.Error(err))
			}
			return s.booksReply(c, ctx, sessionID, criteriaText, books, startTime)
		}
	}

	related, err := s.bookseller.IsBookRelated(ctx, req.Query, sess.Messages)
	if err != nil {
		return s.turnFailed(c, sessionID, err)
	}
	if !related {
		return s.textReply(c, ctx, sessionID, refusalText, startTime)
	}

	books := s.bookseller.Recommend(ctx, req.Query, sess.Messages, "")
	if err := s.store.SetRecommendations(ctx, sessionID, req.Query, books); err != nil {
		s.logger.Error("failed to record recommendations", zap.Error(err))
	}
	return s.booksReply(c, ctx, sessionID, recommendText, books, startTime)
}

// textReply records and sends a plain text turn (books null).
func (s *Server) textReply(c *fiber.Ctx, ctx context.Context, sessionID, text string, startTime time.Time) error {
	if err := s.store.Append(ctx, sessionID, session.Entry{
		Role: "assistant", Content: text, CreatedAt: time.Now(),
	}); err != nil {
		s.logger.Error("failed to record reply", zap.Error(err))
	}

	s.logger.Info("turn answered",
		zap.String("session", sessionID),
		zap.String("kind", "text"),
		zap.Duration("duration", time.Since(startTime)),
	)

	return c.JSON(chat.Response{Response: text, SessionID: sessionID})
}

// booksReply records and sends a recommendation turn.
func (s *Server) booksReply(c *fiber.Ctx, ctx context.Context, sessionID, text string, books []chat.Book, startTime time.Time) error {
	if err := s.store.Append(ctx, sessionID, session.Entry{
		Role: "assistant", Content: text, CreatedAt: time.Now(),
	}); err != nil {
		s.logger.Error("failed to record reply", zap.Error(err))
	}

	s.logger.Info("turn answered",
		zap.String("session", sessionID),
		zap.String("kind", "books"),
		zap.Int("books", len(books)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return c.JSON(chat.Response{Response: text, Books: books, SessionID: sessionID})
}

func (s *Server) turnFailed(c *fiber.Ctx, sessionID string, err error) error {
	s.logger.Error("turn failed", zap.String("session", sessionID), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// handleListSessions returns all known session ids.
func (s *Server) handleListSessions(c *fiber.Ctx) error {
	ids, err := s.store.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list sessions"})
	}

	return c.JSON(fiber.Map{
		"count":    len(ids),
		"sessions": ids,
	})
}

// handleGetSession returns one session's transcript and follow-up context.
func (s *Server) handleGetSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id parameter required"})
	}

	sess, err := s.store.Get(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}

	return c.JSON(sess)
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
