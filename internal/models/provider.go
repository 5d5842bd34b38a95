package models

// Provider is a food donor such as a restaurant or grocery store.
type Provider struct {
	ProviderID uint   `json:"providerId" gorm:"column:provider_id;primaryKey"`
	Name       string `json:"name" gorm:"not null"`
	Type       string `json:"type" gorm:"not null"`
	Address    string `json:"address"`
	City       string `json:"city" gorm:"not null;index"`
	Contact    string `json:"contact"`
	Pincode    string `json:"pincode" gorm:"index"`

	// Listings puts the cascading foreign key on food_listings.provider_id.
	Listings []FoodListing `json:"-" gorm:"foreignKey:ProviderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name
func (Provider) TableName() string {
	return "providers"
}
