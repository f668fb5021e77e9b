package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nulzo/butler/internal/llm"
	"github.com/nulzo/butler/pkg/api"
	"go.uber.org/zap"
)

const (
	DefaultMaxTokens      = 1000
	DefaultTemperature    = 0.7
	DefaultRequestTimeout = 60 * time.Second

	// reasonUnconfigured is reported for providers without an adapter.
	reasonUnconfigured = "API key not configured"
)

var (
	ErrUnknownProvider      = errors.New("unknown provider")
	ErrProviderUnconfigured = errors.New("provider not configured")
)

// ProviderError wraps a failure that happened after dispatch to an adapter.
type ProviderError struct {
	Provider llm.ProviderName
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Service defines the business logic for dispatching chat requests.
type Service interface {
	Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error)
	Providers(ctx context.Context) []api.ProviderDescriptor
}

type service struct {
	logger    *zap.Logger
	timeout   time.Duration
	providers map[llm.ProviderName]llm.Provider
}

// NewService copies providers; the resulting map is never written again.
func NewService(logger *zap.Logger, providers map[llm.ProviderName]llm.Provider, timeout time.Duration) Service {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	adapters := make(map[llm.ProviderName]llm.Provider, len(providers))
	for name, p := range providers {
		adapters[name] = p
	}

	return &service{
		logger:    logger,
		timeout:   timeout,
		providers: adapters,
	}
}

func (s *service) resolve(name string) (llm.Provider, llm.ProviderName, error) {
	if name == "" {
		name = string(llm.OpenAI)
	}

	providerName, ok := llm.Parse(name)
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}

	p, ok := s.providers[providerName]
	if !ok {
		return nil, providerName, fmt.Errorf("%w: %s", ErrProviderUnconfigured, providerName)
	}

	return p, providerName, nil
}

func (s *service) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	provider, providerName, err := s.resolve(req.Provider)
	if err != nil {
		s.logger.Warn("Chat request rejected",
			zap.String("provider", req.Provider),
			zap.Error(err),
		)
		return nil, err
	}

	llmReq := &llm.Request{
		Model:       req.Model,
		Message:     req.Message,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
	if llmReq.Model == "" {
		llmReq.Model = provider.DefaultModel()
	}
	if req.MaxTokens != nil {
		llmReq.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		llmReq.Temperature = *req.Temperature
	}

	// a client disconnect does not abort an in-flight upstream call
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	start := time.Now()
	result, err := provider.Generate(callCtx, llmReq)
	latency := time.Since(start)

	if err != nil {
		s.logger.Error("Provider call failed",
			zap.String("provider", string(providerName)),
			zap.String("model", llmReq.Model),
			zap.Duration("latency", latency),
			zap.Error(err),
		)
		return nil, &ProviderError{Provider: providerName, Err: err}
	}

	usage := llm.NewUsage(result.Usage.PromptTokens, result.Usage.CompletionTokens)

	s.logger.Info("Chat completed",
		zap.String("provider", string(providerName)),
		zap.String("model", llmReq.Model),
		zap.Int("total_tokens", usage.TotalTokens),
		zap.Duration("latency", latency),
	)

	return &api.ChatResponse{
		Message:  result.Message,
		Provider: string(providerName),
		Model:    llmReq.Model,
		Usage: api.Usage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		},
	}, nil
}

// Providers reports every supported provider in declaration order.
func (s *service) Providers(ctx context.Context) []api.ProviderDescriptor {
	descriptors := make([]api.ProviderDescriptor, 0, len(llm.Supported))

	for _, name := range llm.Supported {
		d := api.ProviderDescriptor{Name: string(name)}

		if p, ok := s.providers[name]; ok {
			d.Status = api.StatusAvailable
			d.Models = append([]string(nil), p.Models()...)
		} else {
			d.Status = api.StatusUnavailable
			d.Reason = reasonUnconfigured
		}

		descriptors = append(descriptors, d)
	}

	return descriptors
}
