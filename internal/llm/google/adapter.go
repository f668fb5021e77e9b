package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nulzo/butler/internal/config"
	"github.com/nulzo/butler/internal/httpclient"
	"github.com/nulzo/butler/internal/llm"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-pro"
)

var models = []string{"gemini-pro", "gemini-pro-vision"}

func init() {
	llm.Register(llm.Google, NewAdapter)
}

type Adapter struct {
	config config.ProviderConfig
	client *http.Client
}

func NewAdapter(config config.ProviderConfig) (llm.Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("google: api key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	return &Adapter{
		config: config,
		client: &http.Client{},
	}, nil
}

func (a *Adapter) Name() llm.ProviderName { return llm.Google }
func (a *Adapter) DefaultModel() string   { return defaultModel }
func (a *Adapter) Models() []string       { return models }

type GeminiPart struct {
	Text string `json:"text,omitempty"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature"`
}

type GeminiRequest struct {
	Contents         []GeminiContent   `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type GeminiResponse struct {
	Candidates     []GeminiCandidate `json:"candidates"`
	UsageMetadata  *UsageMetadata    `json:"usageMetadata,omitempty"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Shape converts a canonical request into a generateContent body.
func Shape(req *llm.Request) GeminiRequest {
	return GeminiRequest{
		Contents: []GeminiContent{{
			Role:  "user",
			Parts: []GeminiPart{{Text: req.Message}},
		}},
		GenerationConfig: &GenerationConfig{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
		},
	}
}

func (a *Adapter) handleUpstreamError(err error) error {
	var upstreamErr *httpclient.UpstreamError
	if !errors.As(err, &upstreamErr) {
		return fmt.Errorf("google: %w", err)
	}

	var apiErr errorResponse
	if jsonErr := json.Unmarshal(upstreamErr.Body, &apiErr); jsonErr != nil || apiErr.Error.Message == "" {
		return fmt.Errorf("google: %w", err)
	}

	return fmt.Errorf("google: %s (status=%s): %w", apiErr.Error.Message, apiErr.Error.Status, err)
}

func (a *Adapter) Generate(ctx context.Context, req *llm.Request) (*llm.Result, error) {
	// key goes in a header so it never appears in logged URLs
	headers := map[string]string{
		"x-goog-api-key": a.config.APIKey,
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(a.config.BaseURL, "/"),
		url.PathEscape(req.Model),
	)

	var gResp GeminiResponse
	if err := httpclient.SendRequest(ctx, a.client, http.MethodPost, endpoint, headers, Shape(req), &gResp); err != nil {
		return nil, a.handleUpstreamError(err)
	}

	if len(gResp.Candidates) == 0 {
		if gResp.PromptFeedback != nil && gResp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("google: prompt blocked: %s", gResp.PromptFeedback.BlockReason)
		}
		return nil, errors.New("google: no candidates from gemini")
	}

	var text strings.Builder
	for _, part := range gResp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	result := &llm.Result{Message: text.String()}
	if gResp.UsageMetadata != nil {
		result.Usage = llm.NewUsage(gResp.UsageMetadata.PromptTokenCount, gResp.UsageMetadata.CandidatesTokenCount)
	}
	return result, nil
}
