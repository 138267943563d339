// ABOUTME: Functional options shared by the retrieval agent and the plain chat bot
// ABOUTME: Defaults seed the developer prompt, use k=2 and a no-op logger
package core

import (
	"go.uber.org/zap"
)

type agentOptions struct {
	k            int
	systemPrompt string
	logger       *zap.Logger
}

// Option configures an agent at construction
type Option func(*agentOptions)

func defaultOptions() agentOptions {
	return agentOptions{
		k:            DefaultK,
		systemPrompt: DefaultSystemPrompt,
		logger:       zap.NewNop(),
	}
}

// WithK sets how many search results are folded into the prompt.
// Negative values are ignored.
func WithK(k int) Option {
	return func(o *agentOptions) {
		if k >= 0 {
			o.k = k
		}
	}
}

// WithSystemPrompt replaces the developer turn seeded into new and reset
// conversations. An empty prompt seeds nothing.
func WithSystemPrompt(prompt string) Option {
	return func(o *agentOptions) {
		o.systemPrompt = prompt
	}
}

// WithLogger sets the logger for decision tracing
func WithLogger(logger *zap.Logger) Option {
	return func(o *agentOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
