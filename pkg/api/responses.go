package api

// ChatResponse is the canonical reply, identical in shape for every provider.
type ChatResponse struct {
	Message  string `json:"message"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Usage    Usage  `json:"usage"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ProviderStatus string

const (
	StatusAvailable   ProviderStatus = "available"
	StatusUnavailable ProviderStatus = "unavailable"
)

// ProviderDescriptor reports whether a provider can serve requests.
// Models is set when available, Reason when not.
type ProviderDescriptor struct {
	Name   string         `json:"name"`
	Status ProviderStatus `json:"status"`
	Models []string       `json:"models,omitempty"`
	Reason string         `json:"reason,omitempty"`
}

type ProvidersResponse struct {
	Providers []ProviderDescriptor `json:"providers"`
}

const TokenTypeBearer = "bearer"

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// seconds
	ExpiresIn int64 `json:"expires_in"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	IsActive bool   `json:"is_active"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Uptime  string `json:"uptime,omitempty"`
	Time    string `json:"time,omitempty"`
}
