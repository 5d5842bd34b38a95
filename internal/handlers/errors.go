package handlers

import (
	"log"
	"strconv"

	"github.com/chachabrian/foodshare-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		c.JSON(400, gin.H{"error": err.Error()})
	case services.IsNotFound(err):
		c.JSON(404, gin.H{"error": err.Error()})
	default:
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(500, gin.H{"error": "Internal server error"})
	}
}

// idParam parses a positive numeric path parameter, writing a 400 on failure.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(400, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
