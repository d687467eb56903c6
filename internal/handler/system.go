package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports liveness of the session service and the question
// catalog behind it.
func (h *Handlers) HealthCheck(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database connection failed"})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database ping failed"})
		return
	}

	total, err := h.catalog.TotalCount(c.Request.Context())
	if err != nil || total == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "question catalog unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "healthy", "questions": total})
}
