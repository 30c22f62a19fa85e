package handlers

import (
	"net/http"

	"harvestmap/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last snapshot taken by the health monitor.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"services": utils.GetHealthStatus(),
	})
}
