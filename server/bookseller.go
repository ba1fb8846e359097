package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/interlinker0325/chatbot-bookshop/pkg/chat"
	"github.com/interlinker0325/chatbot-bookshop/pkg/llm"
	"github.com/interlinker0325/chatbot-bookshop/pkg/session"
)

// chatter is the slice of the LLM client the bookseller needs.
type chatter interface {
	Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)
}

// How much transcript context each call carries, matching the endpoint's
// established behavior.
const (
	relatednessContext = 3
	recommendContext   = 5
)

// Link resolution runs cool and short.
const (
	linksTemperature = 0.2
	linksMaxTokens   = 200
)

// Bookseller implements the recommendation pipeline on top of an LLM:
// relatedness gating, follow-up resolution, 3-book JSON generation, and
// purchase link lookup. Model and sampling settings are swappable at
// runtime via ApplyConfig.
type Bookseller struct {
	llm    chatter
	logger *zap.Logger

	mu          sync.RWMutex
	model       string
	temperature float64
	maxTokens   int
}

// NewBookseller creates a Bookseller with the given client and settings.
func NewBookseller(client chatter, cfg Config, logger *zap.Logger) *Bookseller {
	return &Bookseller{
		llm:         client,
		logger:      logger,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// ApplyConfig swaps the model and sampling settings for subsequent calls.
func (b *Bookseller) ApplyConfig(cfg Config) {
	b.mu.Lock()
	b.model = cfg.Model
	b.temperature = cfg.Temperature
	b.maxTokens = cfg.MaxTokens
	b.mu.Unlock()

	b.logger.Info("bookseller settings applied",
		zap.String("model", cfg.Model),
		zap.Float64("temperature", cfg.Temperature),
		zap.Int("max_tokens", cfg.MaxTokens),
	)
}

func (b *Bookseller) settings() (model string, temperature float64, maxTokens int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.model, b.temperature, b.maxTokens
}

// IsBookRelated reports whether the query is about books or bookshops,
// judged with the tail of the transcript as context.
func (b *Bookseller) IsBookRelated(ctx context.Context, query string, history []session.Entry) (bool, error) {
	model, _, _ := b.settings()

	msgs := []llm.Message{{Role: "system", Content: relatednessPrompt}}
	for _, e := range tail(history, relatednessContext) {
		msgs = append(msgs, llm.Message{Role: e.Role, Content: e.Content})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: query})

	resp, err := b.llm.Chat(ctx, &llm.ChatRequest{Model: model, Messages: msgs})
	if err != nil {
		return false, fmt.Errorf("relatedness check: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(resp.Message.Content))
	return answer == "true", nil
}

// MatchFollowUp checks whether the query is about one of the previously
// recommended books and returns that book when it is. An unparseable model
// answer counts as no match, not as an error.
func (b *Bookseller) MatchFollowUp(ctx context.Context, query string, lastBooks []chat.Book) (*chat.Book, error) {
	if len(lastBooks) == 0 {
		return nil, nil
	}

	model, _, _ := b.settings()

	prevJSON, err := json.Marshal(lastBooks)
	if err != nil {
		return nil, fmt.Errorf("encode previous books: %w", err)
	}

	resp, err := b.llm.Chat(ctx, &llm.ChatRequest{
		Model: model,
		Messages: []llm.Message{
			{Role: "system", Content: followUpMatchPrompt},
			{Role: "user", Content: fmt.Sprintf("Previous books: %s\n\nUser question: %s", prevJSON, query)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("follow-up match: %w", err)
	}

	content := strings.TrimSpace(resp.Message.Content)
	if strings.EqualFold(content, "null") {
		return nil, nil
	}

	var book chat.Book
	if err := json.Unmarshal([]byte(extractJSON(content)), &book); err != nil {
		b.logger.Debug("follow-up answer was not a book", zap.Error(err))
		return nil, nil
	}
	if book.Title == "" {
		return nil, nil
	}

	return &book, nil
}

// IsCriteriaFollowUp reports whether the query narrows the previous one
// with extra criteria (language, publisher, and so on).
func (b *Bookseller) IsCriteriaFollowUp(ctx context.Context, query, lastQuery string) (bool, error) {
	model, _, _ := b.settings()

	resp, err := b.llm.Chat(ctx, &llm.ChatRequest{
		Model: model,
		Messages: []llm.Message{
			{Role: "system", Content: criteriaFollowUpPrompt},
			{Role: "user", Content: fmt.Sprintf("Previous query: %s\n\nCurrent query: %s", lastQuery, query)},
		},
	})
	if err != nil {
		return false, fmt.Errorf("criteria check: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(resp.Message.Content))
	return answer == "true", nil
}

// BookDetails answers a question about one specific book.
func (b *Bookseller) BookDetails(ctx context.Context, book chat.Book, query string) (string, error) {
	model, _, _ := b.settings()

	prompt := fmt.Sprintf(bookDetailsPrompt,
		book.Title, strings.Join(book.Authors, ", "), book.Summary, query)

	resp, err := b.llm.Chat(ctx, &llm.ChatRequest{
		Model:    model,
		Messages: []llm.Message{{Role: "system", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("book details: %w", err)
	}

	return strings.TrimSpace(resp.Message.Content), nil
}

// Recommend produces the recommendation set for a query. Generation or
// parse failures degrade to the fixed default books rather than an error,
// so a recommendation turn always has something to show.
func (b *Bookseller) Recommend(ctx context.Context, query string, history []session.Entry, criteria string) []chat.Book {
	books, err := b.generate(ctx, query, history, criteria)
	if err != nil {
		b.logger.Warn("recommendation generation failed, serving default books", zap.Error(err))
		return defaultBooks()
	}

	for i := range books {
		books[i].Purchase = b.resolvePurchase(ctx, books[i])
	}
	return books
}

func (b *Bookseller) generate(ctx context.Context, query string, history []session.Entry, criteria string) ([]chat.Book, error) {
	model, temperature, maxTokens := b.settings()

	criteriaLine := ""
	if criteria != "" {
		criteriaLine = "Additional criteria: " + criteria
	}

	msgs := []llm.Message{{Role: "system", Content: fmt.Sprintf(recommendPrompt, criteriaLine)}}
	for _, e := range tail(history, recommendContext) {
		msgs = append(msgs, llm.Message{Role: e.Role, Content: e.Content})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: query})

	resp, err := b.llm.Chat(ctx, &llm.ChatRequest{
		Model:    model,
		Messages: msgs,
		Format:   "json",
		Options: &llm.Options{
			Temperature: &temperature,
			NumPredict:  &maxTokens,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate recommendations: %w", err)
	}

	var out struct {
		Books []chat.Book `json:"books"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp.Message.Content)), &out); err != nil {
		return nil, fmt.Errorf("parse recommendations: %w", err)
	}
	if len(out.Books) == 0 {
		return nil, fmt.Errorf("no books in response")
	}
	for _, book := range out.Books {
		if book.Title == "" {
			return nil, fmt.Errorf("book without a title in response")
		}
	}

	return out.Books, nil
}

// resolvePurchase asks the model for direct retailer links and falls back
// to search URLs when the answer is unusable.
func (b *Bookseller) resolvePurchase(ctx context.Context, book chat.Book) chat.Purchase {
	model, _, _ := b.settings()

	author := ""
	if len(book.Authors) > 0 {
		author = book.Authors[0]
	}

	temperature := linksTemperature
	maxTokens := linksMaxTokens
	resp, err := b.llm.Chat(ctx, &llm.ChatRequest{
		Model:    model,
		Messages: []llm.Message{{Role: "user", Content: fmt.Sprintf(linksPrompt, book.Title, author)}},
		Options: &llm.Options{
			Temperature: &temperature,
			NumPredict:  &maxTokens,
		},
	})
	if err != nil {
		b.logger.Warn("link lookup failed, using search links",
			zap.String("title", book.Title), zap.Error(err))
		return searchLinks(book.Title)
	}

	var links struct {
		Amazon        string `json:"amazon"`
		LaFeltrinelli string `json:"lafeltrinelli"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp.Message.Content)), &links); err != nil ||
		links.Amazon == "" || links.LaFeltrinelli == "" {
		b.logger.Debug("unusable link answer, using search links", zap.String("title", book.Title))
		return searchLinks(book.Title)
	}

	return chat.Purchase{
		Kind:          chat.PurchaseRetailers,
		Amazon:        links.Amazon,
		LaFeltrinelli: links.LaFeltrinelli,
	}
}

// searchLinks builds retailer search URLs from the title.
func searchLinks(title string) chat.Purchase {
	slug := strings.ReplaceAll(strings.ToLower(title), " ", "+")
	return chat.Purchase{
		Kind:          chat.PurchaseRetailers,
		Amazon:        "https://www.amazon.it/s?k=" + slug,
		LaFeltrinelli: "https://www.lafeltrinelli.it/search?q=" + slug,
	}
}

// extractJSON trims any prose around the outermost JSON object. Models
// occasionally wrap their answer even in JSON mode.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

// tail returns the last n entries of history.
func tail(history []session.Entry, n int) []session.Entry {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
