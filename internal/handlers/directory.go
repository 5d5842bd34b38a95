package handlers

import (
	"github.com/chachabrian/foodshare-backend/internal/models"
	"github.com/chachabrian/foodshare-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type ProviderInput struct {
	Name    string `json:"name" binding:"required"`
	Type    string `json:"type" binding:"required"`
	Address string `json:"address"`
	City    string `json:"city" binding:"required"`
	Contact string `json:"contact"`
}

type ReceiverInput struct {
	Name    string `json:"name" binding:"required"`
	Type    string `json:"type" binding:"required"`
	City    string `json:"city" binding:"required"`
	Contact string `json:"contact"`
}

func CreateProvider(svc *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProviderInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		p, err := svc.CreateProvider(c.Request.Context(), models.Provider{
			Name:    input.Name,
			Type:    input.Type,
			Address: input.Address,
			City:    input.City,
			Contact: input.Contact,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(201, p)
	}
}

// ListProviders accepts an optional letter query to filter by name initial.
func ListProviders(svc *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		providers, err := svc.ListProviders(c.Request.Context(), c.Query("letter"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, providers)
	}
}

func GetProvider(svc *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		p, err := svc.GetProvider(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, p)
	}
}

func ProviderContacts(svc *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		contacts, err := svc.ProviderContactsByCity(c.Request.Context(), c.Query("city"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, contacts)
	}
}

func DeleteProvider(svc *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := svc.DeleteProvider(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"message": "Provider deleted"})
	}
}

func CreateReceiver(svc *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ReceiverInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		r, err := svc.CreateReceiver(c.Request.Context(), models.Receiver{
			Name:    input.Name,
			Type:    input.Type,
			City:    input.City,
			Contact: input.Contact,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(201, r)
	}
}

func ListReceivers(svc *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		receivers, err := svc.ListReceivers(c.Request.Context(), c.Query("city"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, receivers)
	}
}

func DeleteReceiver(svc *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := svc.DeleteReceiver(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"message": "Receiver deleted"})
	}
}
