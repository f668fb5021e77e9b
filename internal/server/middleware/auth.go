package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/butler/internal/auth"
	"github.com/nulzo/butler/pkg/api"
)

const IdentityKey = "identity"

// Auth requires a valid bearer token. A missing header is a 403, anything
// presented but unusable is a 401.
func Auth(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			_ = c.Error(api.ForbiddenError("Not authenticated"))
			c.Abort()
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			_ = c.Error(api.UnauthorizedError("Invalid authorization header format"))
			c.Abort()
			return
		}

		identity, err := verifier.Validate(strings.TrimSpace(token))
		if err != nil {
			detail := "Could not validate credentials"

			var authErr *auth.Error
			if errors.As(err, &authErr) && authErr.Code == auth.CodeExpired {
				detail = "Token has expired"
			}

			_ = c.Error(api.UnauthorizedError(detail, api.WithLog(err)))
			c.Abort()
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// GetIdentity returns the identity stored by Auth.
func GetIdentity(c *gin.Context) (*auth.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*auth.Identity)
	return identity, ok
}
