package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-study-planner/internal/llm"
)

// Kind identifies why a generation failed.
type Kind string

const (
	KindEmptyInput           Kind = "empty_input"
	KindInvalidAPIKey        Kind = "invalid_api_key"
	KindQuotaExceeded        Kind = "quota_exceeded"
	KindModelUnavailable     Kind = "model_unavailable"
	KindMalformedResponse    Kind = "malformed_response"
	KindInvalidPlanStructure Kind = "invalid_plan_structure"
	KindUnknown              Kind = "unknown"
)

var (
	ErrEmptyInput           = errors.New("schedule text is empty")
	ErrInvalidAPIKey        = errors.New("invalid api key")
	ErrQuotaExceeded        = errors.New("quota exceeded")
	ErrModelUnavailable     = errors.New("model unavailable")
	ErrMalformedResponse    = errors.New("malformed response")
	ErrInvalidPlanStructure = errors.New("invalid plan structure")
	ErrUnknown              = errors.New("generation failed")
)

var kindSentinels = map[Kind]error{
	KindEmptyInput:           ErrEmptyInput,
	KindInvalidAPIKey:        ErrInvalidAPIKey,
	KindQuotaExceeded:        ErrQuotaExceeded,
	KindModelUnavailable:     ErrModelUnavailable,
	KindMalformedResponse:    ErrMalformedResponse,
	KindInvalidPlanStructure: ErrInvalidPlanStructure,
	KindUnknown:              ErrUnknown,
}

// GenerationError is returned by Generate for every failure. It matches
// its kind's sentinel with errors.Is as well as the underlying cause.
type GenerationError struct {
	Kind   Kind
	Detail string
	Err    error

	// set by the generator so remediation can point at the right console
	keyPrefix  string
	keyHelpURL string
}

func (e *GenerationError) Error() string {
	msg := kindSentinels[e.Kind].Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *GenerationError) Unwrap() []error {
	errs := []error{kindSentinels[e.Kind]}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Remediation returns the message shown to the user for this failure.
func (e *GenerationError) Remediation() string {
	switch e.Kind {
	case KindEmptyInput:
		return "Please enter your schedule information."
	case KindInvalidAPIKey:
		prefix := e.keyPrefix
		if prefix == "" {
			prefix = "sk-"
		}
		help := e.keyHelpURL
		if help == "" {
			help = "https://platform.openai.com/api-keys"
		}
		return fmt.Sprintf("Invalid API key! Please check:\n\n1. Go to %s\n2. Create a new key\n3. Copy the FULL key (starts with %s)\n4. Paste it and try again", help, prefix)
	case KindQuotaExceeded:
		return "Out of credits! Please:\n\n1. Go to https://platform.openai.com/account/billing\n2. Add at least $5 credit\n3. Wait a few minutes\n4. Try again"
	case KindModelUnavailable:
		return "Model not available. Try a different model, e.g. \"gpt-3.5-turbo\"."
	case KindMalformedResponse, KindInvalidPlanStructure:
		return "The generated plan could not be read. Please try again."
	default:
		return "Failed to generate plan: " + e.Detail
	}
}

// KindOf returns the failure kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return KindUnknown
}

func newError(kind Kind, detail string, err error) *GenerationError {
	return &GenerationError{Kind: kind, Detail: detail, Err: err}
}

// classify maps a generation service failure to a Kind by its message.
func classify(err error) *GenerationError {
	msg := err.Error()
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		msg = apiErr.Message + " " + apiErr.Code + " " + apiErr.Type
	}
	lower := strings.ToLower(msg)

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return newError(KindUnknown, err.Error(), err)
	case strings.Contains(lower, "api key"), strings.Contains(lower, "api_key"):
		return newError(KindInvalidAPIKey, strings.TrimSpace(msg), err)
	case strings.Contains(lower, "quota"), strings.Contains(lower, "insufficient"):
		return newError(KindQuotaExceeded, strings.TrimSpace(msg), err)
	case strings.Contains(lower, "model"):
		return newError(KindModelUnavailable, strings.TrimSpace(msg), err)
	default:
		return newError(KindUnknown, err.Error(), err)
	}
}
