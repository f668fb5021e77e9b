package api

// ChatRequest is the body of POST /ai/chat.
type ChatRequest struct {
	// the prompt sent to the selected provider
	Message string `json:"message" binding:"required"`

	// one of openai, anthropic, google. Left empty it defaults to openai.
	// Membership is checked by the gateway so an unknown value is a 400, not a 422.
	Provider string `json:"provider,omitempty"`

	// optional override, provider default otherwise
	Model string `json:"model,omitempty"`

	// pointers so "absent" is distinguishable from zero
	MaxTokens   *int     `json:"max_tokens,omitempty" binding:"omitempty,gt=0"`
	Temperature *float64 `json:"temperature,omitempty" binding:"omitempty,gte=0,lte=2"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
