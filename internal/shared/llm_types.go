package shared

import (
	"time"
)

// OutcomeOK marks a generation that produced an accepted plan. Failed
// generations carry the failure kind instead.
const OutcomeOK = "ok"

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// AgentMeta holds operational metadata for an agent execution.
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
	Outcome   string
}
