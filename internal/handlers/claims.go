package handlers

import (
	"github.com/chachabrian/foodshare-backend/internal/models"
	"github.com/chachabrian/foodshare-backend/internal/services"
	"github.com/gin-gonic/gin"
)

func CompleteClaim(svc *services.ClaimService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		t, err := svc.Complete(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, t)
	}
}

func CancelClaim(svc *services.ClaimService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		t, err := svc.Cancel(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, t)
	}
}

func GetClaim(svc *services.ClaimService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		claim, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, claim)
	}
}

// ListClaims lists claims by status, Pending when none is given.
func ListClaims(svc *services.ClaimService) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := models.ClaimStatus(c.DefaultQuery("status", string(models.ClaimStatusPending)))
		claims, err := svc.List(c.Request.Context(), status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, claims)
	}
}
