package handlers

import (
	"crypto/subtle"
	"time"

	"github.com/chachabrian/foodshare-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Operator is the single dashboard account, configured from the environment.
type Operator struct {
	Username     string
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

func Login(op Operator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if op.PasswordHash == "" {
			c.JSON(503, gin.H{"error": "Operator login is not configured"})
			return
		}

		userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(op.Username)) == 1
		if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(input.Password)); err != nil || !userOK {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		token, err := utils.GenerateToken(op.JWTSecret, op.Username, op.TokenTTL)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(200, gin.H{
			"token":     token,
			"expiresIn": int(op.TokenTTL.Seconds()),
			"operator":  op.Username,
		})
	}
}
