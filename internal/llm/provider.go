package llm

import (
	"context"
)

type ProviderName string

const (
	OpenAI    ProviderName = "openai"
	Anthropic ProviderName = "anthropic"
	Google    ProviderName = "google"
)

// Supported is every provider the gateway knows, in reporting order.
var Supported = []ProviderName{OpenAI, Anthropic, Google}

// Parse reports whether name is a supported provider.
func Parse(name string) (ProviderName, bool) {
	for _, p := range Supported {
		if string(p) == name {
			return p, true
		}
	}
	return "", false
}

// Request carries fully resolved parameters; defaults are applied before an adapter sees it.
type Request struct {
	Model       string
	Message     string
	MaxTokens   int
	Temperature float64
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// NewUsage builds the canonical usage triple. Total is always prompt + completion.
func NewUsage(prompt, completion int) Usage {
	return Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}

type Result struct {
	Message string
	Usage   Usage
}

// Provider translates a canonical request into one upstream API call.
// Implementations are shared across goroutines and must not mutate state per call.
type Provider interface {
	Name() ProviderName
	DefaultModel() string
	Models() []string
	Generate(ctx context.Context, req *Request) (*Result, error)
}
