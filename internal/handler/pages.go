package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Landing handles GET /
func Landing(c *gin.Context) {
	c.HTML(http.StatusOK, "landing.html", gin.H{"Title": "Driver payments"})
}

// Health handles GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
