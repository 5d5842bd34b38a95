package handlers

import (
	"strconv"

	"github.com/chachabrian/foodshare-backend/internal/models"
	"github.com/chachabrian/foodshare-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type CreateListingInput struct {
	ProviderID uint   `json:"providerId" binding:"required"`
	FoodName   string `json:"foodName" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
	ExpiryDate string `json:"expiryDate" binding:"required,isodate"`
	FoodType   string `json:"foodType" binding:"required"`
	MealType   string `json:"mealType" binding:"required"`
}

type UpdateListingInput struct {
	Quantity   int    `json:"quantity" binding:"required"`
	ExpiryDate string `json:"expiryDate" binding:"required,isodate"`
}

// CreateListing adds a listing and reports the receiver it was assigned to.
func CreateListing(svc *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateListingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		expiry, err := models.ParseDate(input.ExpiryDate)
		if err != nil {
			c.JSON(400, gin.H{"error": "expiryDate must be YYYY-MM-DD"})
			return
		}

		listing, claim, err := svc.Create(c.Request.Context(), services.NewListing{
			ProviderID: input.ProviderID,
			FoodName:   input.FoodName,
			Quantity:   input.Quantity,
			ExpiryDate: expiry,
			FoodType:   models.FoodType(input.FoodType),
			MealType:   models.MealType(input.MealType),
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(201, gin.H{
			"message": "Listing created",
			"listing": listing,
			"claim":   claim,
		})
	}
}

func UpdateListing(svc *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var input UpdateListingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		expiry, err := models.ParseDate(input.ExpiryDate)
		if err != nil {
			c.JSON(400, gin.H{"error": "expiryDate must be YYYY-MM-DD"})
			return
		}

		listing, err := svc.Update(c.Request.Context(), id, input.Quantity, expiry)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"message": "Listing updated", "listing": listing})
	}
}

func DeleteListing(svc *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"message": "Listing deleted"})
	}
}

func GetListing(svc *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		listing, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, listing)
	}
}

// ListListings serves the paged listing browser. Filters: city, providerType,
// foodType, mealType; paging: page, pageSize.
func ListListings(svc *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.Query("page"))
		pageSize, _ := strconv.Atoi(c.Query("pageSize"))

		result, err := svc.List(c.Request.Context(), services.ListingFilter{
			City:         c.Query("city"),
			ProviderType: c.Query("providerType"),
			FoodType:     c.Query("foodType"),
			MealType:     c.Query("mealType"),
			Page:         page,
			PageSize:     pageSize,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, result)
	}
}
