package restapi

import (
	"context"
	"net/http"
	"time"

	"whale_analyzer/internal/app/port"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 20 * time.Second

// ProviderHandler exposes provider diagnostics.
type ProviderHandler struct {
	registry port.ProviderRegistry
}

func NewProviderHandler(registry port.ProviderRegistry) *ProviderHandler {
	return &ProviderHandler{registry: registry}
}

// StatusHandler handles GET /providers/status. It does no I/O.
func (h *ProviderHandler) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.StatusSnapshot())
}

// TestHandler handles GET /providers/test with a live probe of each provider.
func (h *ProviderHandler) TestHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()
	c.JSON(http.StatusOK, gin.H{
		"results":   h.registry.HealthCheck(ctx),
		"timestamp": time.Now().UTC(),
	})
}
