package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Problem implements RFC 9457
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`

	// Log is the internal cause. It is written to server logs and never serialized.
	Log error `json:"-"`

	// Header values to set on the response, e.g. WWW-Authenticate.
	Headers map[string]string `json:"-"`
}

func (p *Problem) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

func (p *Problem) Unwrap() error {
	return p.Log
}

func (p *Problem) MarshalJSON() ([]byte, error) {
	type Alias Problem

	data := make(map[string]interface{})

	for k, v := range p.Extensions {
		data[k] = v
	}

	stdJSON, err := json.Marshal(Alias(*p))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stdJSON, &data); err != nil {
		return nil, err
	}

	return json.Marshal(data)
}

type ProblemOption func(*Problem)

// NewError creates a generic Problem
func NewError(status int, title, detail string, opts ...ProblemOption) *Problem {
	p := &Problem{
		Type:       "about:blank",
		Title:      title,
		Status:     status,
		Detail:     detail,
		Extensions: make(map[string]interface{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithExtension adds a custom key-value pair to the response
func WithExtension(key string, value interface{}) ProblemOption {
	return func(p *Problem) {
		p.Extensions[key] = value
	}
}

// WithLog attaches an internal error for server-side logging
func WithLog(err error) ProblemOption {
	return func(p *Problem) {
		p.Log = err
	}
}

// WithType sets the RFC "type" URI
func WithType(uri string) ProblemOption {
	return func(p *Problem) {
		p.Type = uri
	}
}

// WithHeader sets a response header when the problem is rendered.
func WithHeader(key, value string) ProblemOption {
	return func(p *Problem) {
		if p.Headers == nil {
			p.Headers = make(map[string]string)
		}
		p.Headers[key] = value
	}
}

// ValidationError creates a rich validation error carrying field-level detail.
func ValidationError(validationErrors map[string]string) *Problem {
	return NewError(
		http.StatusUnprocessableEntity,
		"Validation Error",
		"One or more fields failed validation",
		WithType("about:blank#validation"),
		WithExtension("errors", validationErrors),
	)
}

// BadRequestError creates a standard error for a bad request
func BadRequestError(detail string, opts ...ProblemOption) *Problem {
	return NewError(http.StatusBadRequest, "Bad Request", detail, opts...)
}

// UnauthorizedError creates a 401 carrying the bearer challenge header.
func UnauthorizedError(detail string, opts ...ProblemOption) *Problem {
	opts = append([]ProblemOption{WithHeader("WWW-Authenticate", "Bearer")}, opts...)
	return NewError(http.StatusUnauthorized, "Unauthorized", detail, opts...)
}

// ForbiddenError creates a 403, used when no credential was presented at all.
func ForbiddenError(detail string) *Problem {
	return NewError(http.StatusForbidden, "Forbidden", detail)
}

// TypeProvider marks upstream failures. Their cause is never rendered, even in debug mode.
const TypeProvider = "about:blank#provider"

// ProviderError hides the upstream cause from the client; err is kept for logs only.
func ProviderError(detail string, err error) *Problem {
	return NewError(http.StatusInternalServerError, "Provider Error", detail, WithType(TypeProvider), WithLog(err))
}

// InternalError creates a standard error for any internal server error
func InternalError(detail string, err error) *Problem {
	return NewError(http.StatusInternalServerError, "Internal Server Error", detail, WithLog(err))
}
