package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/butler/internal/gateway"
	"github.com/nulzo/butler/internal/server/validator"
	"github.com/nulzo/butler/pkg/api"
)

type AIHandler struct {
	service   gateway.Service
	validator *validator.Validator
}

func NewAIHandler(service gateway.Service, v *validator.Validator) *AIHandler {
	return &AIHandler{
		service:   service,
		validator: v,
	}
}

// Chat dispatches one message to the selected provider.
// POST /api/v1/ai/chat
func (h *AIHandler) Chat(c *gin.Context) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// returns RFC compliant error
		_ = c.Error(api.ValidationError(h.validator.ParseError(err)))
		return
	}

	resp, err := h.service.Chat(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(chatProblem(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

func chatProblem(err error) error {
	var provErr *gateway.ProviderError

	switch {
	case errors.Is(err, gateway.ErrUnknownProvider):
		return api.BadRequestError(err.Error(), api.WithType("about:blank#unknown-provider"))
	case errors.Is(err, gateway.ErrProviderUnconfigured):
		return api.BadRequestError(err.Error(), api.WithType("about:blank#provider-unconfigured"))
	case errors.As(err, &provErr):
		// the upstream cause is logged, never rendered
		return api.ProviderError("AI provider request failed", err)
	}

	return api.InternalError("Failed to process chat request", err)
}

// Providers lists every supported provider with its availability.
// GET /api/v1/ai/providers
func (h *AIHandler) Providers(c *gin.Context) {
	c.JSON(http.StatusOK, api.ProvidersResponse{
		Providers: h.service.Providers(c.Request.Context()),
	})
}
