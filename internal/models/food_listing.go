package models

import "time"

type FoodType string

const (
	FoodTypeVegetarian    FoodType = "Vegetarian"
	FoodTypeNonVegetarian FoodType = "Non-Vegetarian"
	FoodTypeVegan         FoodType = "Vegan"
)

var FoodTypes = []FoodType{FoodTypeVegetarian, FoodTypeNonVegetarian, FoodTypeVegan}

func (t FoodType) Valid() bool {
	for _, v := range FoodTypes {
		if v == t {
			return true
		}
	}
	return false
}

type MealType string

const (
	MealTypeBreakfast MealType = "Breakfast"
	MealTypeLunch     MealType = "Lunch"
	MealTypeDinner    MealType = "Dinner"
	MealTypeSnacks    MealType = "Snacks"
)

var MealTypes = []MealType{MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnacks}

func (t MealType) Valid() bool {
	for _, v := range MealTypes {
		if v == t {
			return true
		}
	}
	return false
}

// FoodListing is a batch of donated food offered by one provider.
//
// ProviderType and Location are copied from the provider when the listing is
// created and are not kept in sync afterwards.
type FoodListing struct {
	FoodID       uint      `json:"foodId" gorm:"column:food_id;primaryKey"`
	FoodName     string    `json:"foodName" gorm:"not null"`
	Quantity     int       `json:"quantity" gorm:"not null;check:chk_food_listings_quantity,quantity > 0"`
	ExpiryDate   time.Time `json:"expiryDate" gorm:"type:date;not null;index"`
	ProviderID   uint      `json:"providerId" gorm:"not null;index"`
	ProviderType string    `json:"providerType" gorm:"index"`
	Location     string    `json:"location" gorm:"index"`
	FoodType     FoodType  `json:"foodType" gorm:"index"`
	MealType     MealType  `json:"mealType" gorm:"index"`
}

// TableName specifies the table name
func (FoodListing) TableName() string {
	return "food_listings"
}

// Expired reports whether the listing's expiry date lies before today.
func (l *FoodListing) Expired(today time.Time) bool {
	return l.ExpiryDate.Before(today)
}
