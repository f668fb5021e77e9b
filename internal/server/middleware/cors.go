package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/butler/internal/config"
)

// CORS answers for the configured origins and short-circuits preflights with 204.
//
// Browsers read "*" literally on credentialed requests, so a configured
// wildcard for methods or headers is answered by echoing what the preflight asked for.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	anyOrigin := slices.Contains(cfg.AllowedOrigins, "*")
	anyMethod := slices.Contains(cfg.AllowedMethods, "*")
	anyHeader := slices.Contains(cfg.AllowedHeaders, "*")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if origin != "" && (anyOrigin || slices.Contains(cfg.AllowedOrigins, origin)) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")

			allowMethods := methods
			if anyMethod {
				allowMethods = c.GetHeader("Access-Control-Request-Method")
				c.Writer.Header().Add("Vary", "Access-Control-Request-Method")
			}
			if allowMethods != "" {
				c.Header("Access-Control-Allow-Methods", allowMethods)
			}

			allowHeaders := headers
			if anyHeader {
				allowHeaders = c.GetHeader("Access-Control-Request-Headers")
				c.Writer.Header().Add("Vary", "Access-Control-Request-Headers")
			}
			if allowHeaders != "" {
				c.Header("Access-Control-Allow-Headers", allowHeaders)
			}

			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
		}

		c.Next()
	}
}
