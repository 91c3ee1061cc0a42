package obs

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const serviceName = "riderlink"

// HealthHandlers exposes the liveness and readiness endpoints.
type HealthHandlers struct {
	// Ready reports whether storage is reachable. Nil means the service
	// runs without external dependencies (memory mode).
	Ready func() error
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive", "service": serviceName})
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	if h.Ready != nil {
		if err := h.Ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "service": serviceName, "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "service": serviceName})
}
