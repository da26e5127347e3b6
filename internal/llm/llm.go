package llm

import (
	"context"

	"ai-study-planner/internal/shared"
)

// Prompt is a single chat-style request to a generation backend.
type Prompt struct {
	System      string
	User        string
	JSON        bool // ask the backend for a single JSON object
	Temperature float32
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt Prompt) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// Factory builds a TextGenerator bound to a user's API key. Keys are per
// user, so clients are created per request rather than at startup.
type Factory func(ctx context.Context, apiKey string) (TextGenerator, error)
