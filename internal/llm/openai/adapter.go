package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nulzo/butler/internal/config"
	"github.com/nulzo/butler/internal/httpclient"
	"github.com/nulzo/butler/internal/llm"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-3.5-turbo"
)

var models = []string{"gpt-3.5-turbo", "gpt-4", "gpt-4-turbo-preview"}

func init() {
	llm.Register(llm.OpenAI, NewAdapter)
}

type Adapter struct {
	config config.ProviderConfig
	client *http.Client
}

func NewAdapter(config config.ProviderConfig) (llm.Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	return &Adapter{
		config: config,
		// deadlines come from the request context
		client: &http.Client{},
	}, nil
}

func (a *Adapter) Name() llm.ProviderName { return llm.OpenAI }
func (a *Adapter) DefaultModel() string   { return defaultModel }
func (a *Adapter) Models() []string       { return models }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// upstreamErrorResponse mirrors the standard OpenAI error shape
type upstreamErrorResponse struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

func (a *Adapter) handleUpstreamError(err error) error {
	var upstreamErr *httpclient.UpstreamError
	if !errors.As(err, &upstreamErr) {
		return fmt.Errorf("openai: %w", err)
	}

	var apiErr upstreamErrorResponse
	if jsonErr := json.Unmarshal(upstreamErr.Body, &apiErr); jsonErr != nil || apiErr.Error.Message == "" {
		return fmt.Errorf("openai: %w", err)
	}

	return fmt.Errorf("openai: %s (type=%s, code=%v): %w", apiErr.Error.Message, apiErr.Error.Type, apiErr.Error.Code, err)
}

func (a *Adapter) Generate(ctx context.Context, req *llm.Request) (*llm.Result, error) {
	body := chatRequest{
		Model:       req.Model,
		Messages:    []message{{Role: "user", Content: req.Message}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + a.config.APIKey,
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(a.config.BaseURL, "/"))

	var resp chatResponse
	if err := httpclient.SendRequest(ctx, a.client, http.MethodPost, url, headers, body, &resp); err != nil {
		return nil, a.handleUpstreamError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: reply contained no choices")
	}

	result := &llm.Result{Message: resp.Choices[0].Message.Content}
	if resp.Usage != nil {
		result.Usage = llm.NewUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}
	return result, nil
}
