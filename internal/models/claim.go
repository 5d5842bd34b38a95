package models

import "time"

type ClaimStatus string

const (
	ClaimStatusPending   ClaimStatus = "Pending"
	ClaimStatusCompleted ClaimStatus = "Completed"
	ClaimStatusCancelled ClaimStatus = "Cancelled"
)

var ClaimStatuses = []ClaimStatus{ClaimStatusPending, ClaimStatusCompleted, ClaimStatusCancelled}

func (s ClaimStatus) Valid() bool {
	for _, v := range ClaimStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Claim is a receiver's reservation of a food listing.
//
// FoodID has no foreign key: a claim that completed or
// cancelled its listing away is kept as history after the listing row is gone.
// Pending claims are removed together with their listing by the services.
type Claim struct {
	ClaimID    uint        `json:"claimId" gorm:"column:claim_id;primaryKey"`
	FoodID     uint        `json:"foodId" gorm:"not null;index"`
	ReceiverID uint        `json:"receiverId" gorm:"not null;index"`
	Status     ClaimStatus `json:"status" gorm:"not null;index;check:chk_claims_status,status IN ('Pending','Completed','Cancelled')"`
	Timestamp  time.Time   `json:"timestamp" gorm:"<-:create;not null;index;autoCreateTime"`
}

// TableName specifies the table name
func (Claim) TableName() string {
	return "claims"
}
