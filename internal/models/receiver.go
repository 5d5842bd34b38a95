package models

// Receiver is an NGO, shelter or individual that picks food up.
type Receiver struct {
	ReceiverID uint   `json:"receiverId" gorm:"column:receiver_id;primaryKey"`
	Name       string `json:"name" gorm:"not null"`
	Type       string `json:"type" gorm:"not null"`
	City       string `json:"city" gorm:"not null;index"`
	Contact    string `json:"contact"`
	Pincode    string `json:"pincode" gorm:"index"`

	// Claims puts the cascading foreign key on claims.receiver_id.
	Claims []Claim `json:"-" gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name
func (Receiver) TableName() string {
	return "receivers"
}
