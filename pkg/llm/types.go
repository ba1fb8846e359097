// Package llm is a minimal client for an Ollama-compatible chat completion
// API. The bookseller pipeline drives it in non-streaming JSON mode.
package llm

import "time"

// Message is a single message in a model conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// Options are the inference parameters the bookseller tunes per call.
type Options struct {
	Temperature *float64 `json:"temperature,omitempty"` // creativity (0.0-2.0)
	TopP        *float64 `json:"top_p,omitempty"`       // nucleus sampling threshold
	Seed        *int     `json:"seed,omitempty"`        // random seed for reproducibility
	NumPredict  *int     `json:"num_predict,omitempty"` // max tokens to generate
	Stop        []string `json:"stop,omitempty"`        // stop generation at these sequences
}

// ChatRequest is a chat completion request.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   *bool     `json:"stream,omitempty"`
	Format   string    `json:"format,omitempty"` // "json" forces valid JSON output
	Options  *Options  `json:"options,omitempty"`
}

// ChatResponse is a completed (non-streaming) chat response.
type ChatResponse struct {
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Message   Message   `json:"message"`
	Done      bool      `json:"done"`

	// Metrics, present when done.
	PromptEvalCount int `json:"prompt_eval_count,omitempty"`
	EvalCount       int `json:"eval_count,omitempty"`
}

// ErrorResponse is an error body from the upstream API.
type ErrorResponse struct {
	Error string `json:"error"`
}
