package handlers

import (
	"log"
	"sync"

	"github.com/chachabrian/foodshare-backend/internal/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by request bodies.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Println("Warning: gin validator engine is not go-playground/validator; custom tags disabled")
			return
		}
		if err := v.RegisterValidation("isodate", validateISODate); err != nil {
			log.Printf("Failed to register isodate validator: %v", err)
		}
	})
}

// validateISODate accepts YYYY-MM-DD strings.
func validateISODate(fl validator.FieldLevel) bool {
	_, err := models.ParseDate(fl.Field().String())
	return err == nil
}
