package llm

import (
	"context"
	"fmt"
	"strings"

	"ai-study-planner/internal/config"
)

// Provider describes a supported generation backend.
type Provider struct {
	Name         string
	KeyPrefix    string
	DefaultModel string
	BaseURL      string
	KeyHelpURL   string
}

var providers = map[string]Provider{
	"openai": {
		Name:         "openai",
		KeyPrefix:    "sk-",
		DefaultModel: "gpt-4o-mini",
		BaseURL:      "https://api.openai.com/v1",
		KeyHelpURL:   "https://platform.openai.com/api-keys",
	},
	"groq": {
		Name:         "groq",
		KeyPrefix:    "gsk_",
		DefaultModel: "llama-3.3-70b-versatile",
		BaseURL:      "https://api.groq.com/openai/v1",
		KeyHelpURL:   "https://console.groq.com/keys",
	},
	"gemini": {
		Name:         "gemini",
		KeyPrefix:    "AIza",
		DefaultModel: "gemini-1.5-flash",
		KeyHelpURL:   "https://aistudio.google.com/app/apikey",
	},
}

// LookupProvider returns the provider registered under name.
func LookupProvider(name string) (Provider, error) {
	p, ok := providers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Provider{}, fmt.Errorf("unknown provider %q", name)
	}
	return p, nil
}

// NewFactory resolves the configured provider and returns a Factory that
// builds clients for it.
func NewFactory(cfg *config.Config) (Factory, Provider, error) {
	p, err := LookupProvider(cfg.Provider)
	if err != nil {
		return nil, Provider{}, err
	}

	model := cfg.Model
	if model == "" {
		model = p.DefaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = p.BaseURL
	}

	if p.Name == "gemini" {
		return func(ctx context.Context, apiKey string) (TextGenerator, error) {
			return NewGeminiClient(ctx, apiKey, model)
		}, p, nil
	}
	return func(_ context.Context, apiKey string) (TextGenerator, error) {
		return NewOpenAIClient(apiKey, baseURL, model, cfg.Timeout), nil
	}, p, nil
}
