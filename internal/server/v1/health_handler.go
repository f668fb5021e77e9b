package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/butler/pkg/api"
)

type HealthHandler struct {
	service   string
	version   string
	startTime time.Time
}

func NewHealthHandler(service, version string) *HealthHandler {
	return &HealthHandler{
		service:   service,
		version:   version,
		startTime: time.Now(),
	}
}

// Health returns the health status and uptime of the API.
//
// This endpoint is used by load balancers and monitoring systems
// to verify the service is running.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.response("healthy"))
}

// Ready reports whether the service can accept traffic. There are no
// backing stores to probe, so a running process is ready.
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, h.response("ready"))
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, h.response("alive"))
}

func (h *HealthHandler) response(status string) api.HealthResponse {
	return api.HealthResponse{
		Status:  status,
		Service: h.service,
		Version: h.version,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
}
