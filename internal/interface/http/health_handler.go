package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/projecthub/pkg/response"
)

// Health GET /health
func Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, "API is running")
}
