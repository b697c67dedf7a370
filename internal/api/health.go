package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Healthz is the liveness probe; it always answers 200.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
