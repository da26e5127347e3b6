package planner

import (
	"context"
	"log"
	"strings"
	"time"

	"ai-study-planner/internal/llm"
	"ai-study-planner/internal/plan"
	"ai-study-planner/internal/shared"
)

const agentName = "PlanGenerator"

// Result is the outcome of a generation request.
type Result struct {
	Plan *plan.Plan
	Meta shared.AgentMeta
}

// Generator requests a weekly plan from the generation service and validates
// the answer before anything else sees it.
type Generator struct {
	newClient   llm.Factory
	provider    llm.Provider
	temperature float32
}

// NewGenerator creates a Generator for the given provider.
func NewGenerator(factory llm.Factory, provider llm.Provider, temperature float32) *Generator {
	return &Generator{
		newClient:   factory,
		provider:    provider,
		temperature: temperature,
	}
}

// ValidAPIKey reports whether key has the structural shape the provider
// expects. It does not contact the service.
func (g *Generator) ValidAPIKey(key string) bool {
	return strings.HasPrefix(strings.TrimSpace(key), g.keyPrefix())
}

// Generate turns free-form schedule text into a validated plan. Failures are
// *GenerationError values. Meta is filled whenever the service was called.
func (g *Generator) Generate(ctx context.Context, rawScheduleText, apiKey string, now time.Time) (Result, error) {
	if strings.TrimSpace(rawScheduleText) == "" {
		return Result{}, g.decorate(newError(KindEmptyInput, "", nil))
	}
	if !g.ValidAPIKey(apiKey) {
		return Result{}, g.decorate(newError(KindInvalidAPIKey, "key does not start with "+g.keyPrefix(), nil))
	}

	system, user, err := buildPrompts(rawScheduleText, now)
	if err != nil {
		return Result{}, g.decorate(newError(KindUnknown, err.Error(), err))
	}

	client, err := g.newClient(ctx, strings.TrimSpace(apiKey))
	if err != nil {
		return Result{}, g.decorate(classify(err))
	}
	if closer, ok := client.(llm.Closer); ok {
		defer closer.Close()
	}

	start := time.Now()
	resp, err := client.GenerateContent(ctx, llm.Prompt{
		System:      system,
		User:        user,
		JSON:        true,
		Temperature: g.temperature,
	})
	meta := shared.AgentMeta{
		AgentName: agentName,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		genErr := g.decorate(classify(err))
		meta.Outcome = string(genErr.Kind)
		log.Printf("Plan generation failed (%s): %v", genErr.Kind, err)
		return Result{Meta: meta}, genErr
	}

	p, err := parsePlan(resp.Content, now)
	if err != nil {
		genErr := err.(*GenerationError)
		g.decorate(genErr)
		meta.Outcome = string(genErr.Kind)
		log.Printf("Rejected generated plan (%s): %s", genErr.Kind, genErr.Detail)
		return Result{Meta: meta}, genErr
	}

	meta.Outcome = shared.OutcomeOK
	return Result{Plan: p, Meta: meta}, nil
}

func (g *Generator) keyPrefix() string {
	if g.provider.KeyPrefix == "" {
		return "sk-"
	}
	return g.provider.KeyPrefix
}

func (g *Generator) decorate(e *GenerationError) *GenerationError {
	e.keyPrefix = g.keyPrefix()
	e.keyHelpURL = g.provider.KeyHelpURL
	return e
}
