package anthropic

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
	defaultBaseURL = "https://api.anthropic.com/v1"
	defaultVersion = "2023-06-01"
	defaultModel   = "claude-3-sonnet-20240229"
)

var models = []string{"claude-3-sonnet-20240229", "claude-3-opus-20240229", "claude-3-haiku-20240307"}

func init() {
	llm.Register(llm.Anthropic, NewAdapter)
}

type Adapter struct {
	config config.ProviderConfig
	client *http.Client
}

func NewAdapter(config config.ProviderConfig) (llm.Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Version == "" {
		config.Version = defaultVersion
	}
	return &Adapter{
		config: config,
		client: &http.Client{},
	}, nil
}

func (a *Adapter) Name() llm.ProviderName { return llm.Anthropic }
func (a *Adapter) DefaultModel() string   { return defaultModel }
func (a *Adapter) Models() []string       { return models }

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type Response struct {
	ID         string    `json:"id"`
	Content    []Content `json:"content"`
	Model      string    `json:"model"`
	StopReason string    `json:"stop_reason"`
	Usage      *Usage    `json:"usage"`
}

type errorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *Adapter) handleUpstreamError(err error) error {
	var upstreamErr *httpclient.UpstreamError
	if !errors.As(err, &upstreamErr) {
		return fmt.Errorf("anthropic: %w", err)
	}

	var apiErr errorResponse
	if jsonErr := json.Unmarshal(upstreamErr.Body, &apiErr); jsonErr != nil || apiErr.Error.Message == "" {
		return fmt.Errorf("anthropic: %w", err)
	}

	return fmt.Errorf("anthropic: %s (type=%s): %w", apiErr.Error.Message, apiErr.Error.Type, err)
}

// Anthropic requires max_tokens, so the gateway default always reaches the wire.
func toAnthropicReq(req *llm.Request) Request {
	return Request{
		Model:       req.Model,
		Messages:    []Message{{Role: "user", Content: req.Message}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
}

func (a *Adapter) Generate(ctx context.Context, req *llm.Request) (*llm.Result, error) {
	headers := map[string]string{
		"x-api-key":         a.config.APIKey,
		"anthropic-version": a.config.Version,
	}

	url := fmt.Sprintf("%s/messages", strings.TrimRight(a.config.BaseURL, "/"))

	var anthroResp Response
	if err := httpclient.SendRequest(ctx, a.client, http.MethodPost, url, headers, toAnthropicReq(req), &anthroResp); err != nil {
		return nil, a.handleUpstreamError(err)
	}

	var text strings.Builder
	for _, c := range anthroResp.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}

	result := &llm.Result{Message: text.String()}
	if anthroResp.Usage != nil {
		result.Usage = llm.NewUsage(anthroResp.Usage.InputTokens, anthroResp.Usage.OutputTokens)
	}
	return result, nil
}
