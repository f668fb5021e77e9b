package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/butler/pkg/api"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error pushed with c.Error as an RFC 9457 problem.
// With debug set, internal failures also carry exception_type and exception_message.
func ErrorHandler(logger *zap.Logger, debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(RequestIDKey)),
		}
		if identity, ok := GetIdentity(c); ok {
			fields = append(fields, zap.String("subject", identity.Subject))
		}

		var problem *api.Problem
		if errors.As(err, &problem) {
			if problem.Log != nil {
				fields = append(fields, zap.Int("status", problem.Status), zap.Error(problem.Log))
				if problem.Status >= http.StatusInternalServerError {
					logger.Error(problem.Title, fields...)
				} else {
					logger.Warn(problem.Title, fields...)
				}
			}

			if debug && problem.Status >= http.StatusInternalServerError && problem.Type != api.TypeProvider && problem.Log != nil {
				problem.Extensions["exception_type"] = fmt.Sprintf("%T", problem.Log)
				problem.Extensions["exception_message"] = problem.Log.Error()
			}

			for k, v := range problem.Headers {
				c.Header(k, v)
			}

			// RFC 9457 dictates the json is at the root
			c.JSON(problem.Status, problem)
			c.Abort()
			return
		}

		logger.Error("Unhandled error", append(fields, zap.Error(err))...)

		var opts []api.ProblemOption
		if debug {
			opts = append(opts,
				api.WithExtension("exception_type", fmt.Sprintf("%T", err)),
				api.WithExtension("exception_message", err.Error()),
			)
		}

		c.JSON(http.StatusInternalServerError, api.NewError(
			http.StatusInternalServerError,
			"Internal Server Error",
			"An unexpected error occurred.",
			opts...,
		))
		c.Abort()
	}
}
