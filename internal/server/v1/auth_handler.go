package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/butler/internal/auth"
	"github.com/nulzo/butler/internal/server/middleware"
	"github.com/nulzo/butler/internal/server/validator"
	"github.com/nulzo/butler/pkg/api"
	"go.uber.org/zap"
)

type AuthHandler struct {
	verifier  *auth.Verifier
	directory auth.Directory
	validator *validator.Validator
	logger    *zap.Logger
}

func NewAuthHandler(verifier *auth.Verifier, directory auth.Directory, v *validator.Validator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		verifier:  verifier,
		directory: directory,
		validator: v,
		logger:    logger,
	}
}

// Register resolves (or creates) the subject and returns a fresh token.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(h.validator.ParseError(err)))
		return
	}

	h.authenticate(c, auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
}

// Login returns a fresh token for known credentials.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(h.validator.ParseError(err)))
		return
	}

	h.authenticate(c, auth.Credentials{Email: req.Email, Password: req.Password})
}

func (h *AuthHandler) authenticate(c *gin.Context, creds auth.Credentials) {
	subject, err := h.directory.LookupOrCreate(c.Request.Context(), creds)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			_ = c.Error(api.UnauthorizedError("Incorrect email or password", api.WithLog(err)))
			return
		}
		_ = c.Error(api.InternalError("Failed to resolve subject", err))
		return
	}

	h.issue(c, subject.Email)
}

// Me returns the directory's view of the token subject.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		_ = c.Error(api.ForbiddenError("Not authenticated"))
		return
	}

	subject, err := h.directory.Lookup(c.Request.Context(), identity.Subject)
	if err != nil {
		if errors.Is(err, auth.ErrSubjectNotFound) {
			_ = c.Error(api.UnauthorizedError("Could not validate credentials", api.WithLog(err)))
			return
		}
		_ = c.Error(api.InternalError("Failed to resolve subject", err))
		return
	}

	c.JSON(http.StatusOK, api.UserResponse{
		ID:       subject.ID,
		Email:    subject.Email,
		FullName: subject.FullName,
		IsActive: subject.IsActive,
	})
}

// Refresh re-mints a token for the current subject with a new expiry.
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		_ = c.Error(api.ForbiddenError("Not authenticated"))
		return
	}

	h.issue(c, identity.Subject)
}

func (h *AuthHandler) issue(c *gin.Context, subject string) {
	token, err := h.verifier.Issue(subject)
	if err != nil {
		_ = c.Error(api.InternalError("Failed to issue token", err))
		return
	}

	h.logger.Debug("Token issued", zap.String("subject", subject), zap.Time("expires_at", token.ExpiresAt))

	c.JSON(http.StatusOK, api.TokenResponse{
		AccessToken: token.Value,
		TokenType:   api.TokenTypeBearer,
		ExpiresIn:   int64(token.TTL.Seconds()),
	})
}
