package services

import (
	"context"
	"errors"
	"time"

	"github.com/chachabrian/foodshare-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Transition is the outcome of completing or cancelling a claim.
type Transition struct {
	Claim models.Claim `json:"claim"`
	// ListingExisted is false when the claim's listing was already gone.
	ListingExisted bool `json:"listingExisted"`
	// ListingRemoved is true when this transition deleted the listing.
	ListingRemoved bool `json:"listingRemoved"`
	// SiblingClaimsRemoved counts other claims deleted with the listing.
	SiblingClaimsRemoved int64 `json:"siblingClaimsRemoved"`
}

// ClaimView is a claim joined with its receiver and, when it still exists,
// its listing.
type ClaimView struct {
	ClaimID      uint       `json:"claimId"`
	FoodID       uint       `json:"foodId"`
	FoodName     *string    `json:"foodName"`
	ExpiryDate   *time.Time `json:"expiryDate"`
	ReceiverID   uint       `json:"receiverId"`
	ReceiverName string     `json:"receiverName"`
	Status       string     `json:"status"`
	Timestamp    time.Time  `json:"timestamp"`
}

// ClaimService drives the Pending -> Completed | Cancelled lifecycle. Both
// transitions run in one transaction together with their listing side effects.
type ClaimService struct {
	*Deps
}

func NewClaimService(deps *Deps) *ClaimService {
	return &ClaimService{Deps: deps}
}

// Complete marks a Pending claim Completed and deletes its listing along with
// every other claim on that listing.
func (s *ClaimService) Complete(ctx context.Context, claimID uint) (*Transition, error) {
	var t Transition
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim, listing, err := lockClaimAndListing(tx, claimID)
		if err != nil {
			return err
		}
		if err := setStatusFromPending(tx, claimID, models.ClaimStatusCompleted); err != nil {
			return err
		}
		claim.Status = models.ClaimStatusCompleted
		t.Claim = *claim

		if listing == nil {
			return nil
		}
		t.ListingExisted = true
		t.SiblingClaimsRemoved, err = removeListing(tx, claim.FoodID, claimID)
		if err != nil {
			return err
		}
		t.ListingRemoved = true
		return nil
	})
	err = storageErr("complete claim", err)
	s.Metrics.ClaimTransition("complete", outcome(err))
	if err != nil {
		return nil, err
	}

	if t.ListingRemoved {
		s.Metrics.ListingPurged("completed")
	}
	s.afterCommit(ctx, Event{
		Type:           EventClaimCompleted,
		ClaimID:        t.Claim.ClaimID,
		FoodID:         t.Claim.FoodID,
		ReceiverID:     t.Claim.ReceiverID,
		ListingRemoved: t.ListingRemoved,
	})
	return &t, nil
}

// Cancel marks a Pending claim Cancelled. The listing goes back to the pool
// unless it has already expired, in which case it is deleted with its other
// claims. A listing that no longer exists is left alone.
func (s *ClaimService) Cancel(ctx context.Context, claimID uint) (*Transition, error) {
	today := s.today()

	var t Transition
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim, listing, err := lockClaimAndListing(tx, claimID)
		if err != nil {
			return err
		}
		if err := setStatusFromPending(tx, claimID, models.ClaimStatusCancelled); err != nil {
			return err
		}
		claim.Status = models.ClaimStatusCancelled
		t.Claim = *claim

		if listing == nil {
			return nil
		}
		t.ListingExisted = true
		if !listing.Expired(today) {
			return nil
		}
		t.SiblingClaimsRemoved, err = removeListing(tx, listing.FoodID, claimID)
		if err != nil {
			return err
		}
		t.ListingRemoved = true
		return nil
	})
	err = storageErr("cancel claim", err)
	s.Metrics.ClaimTransition("cancel", outcome(err))
	if err != nil {
		return nil, err
	}

	if t.ListingRemoved {
		s.Metrics.ListingPurged("expired")
	}
	s.afterCommit(ctx, Event{
		Type:           EventClaimCancelled,
		ClaimID:        t.Claim.ClaimID,
		FoodID:         t.Claim.FoodID,
		ReceiverID:     t.Claim.ReceiverID,
		ListingRemoved: t.ListingRemoved,
	})
	return &t, nil
}

func (s *ClaimService) Get(ctx context.Context, claimID uint) (*models.Claim, error) {
	var claim models.Claim
	err := s.DB.WithContext(ctx).Where("claim_id = ?", claimID).Take(&claim).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("claim", claimID)
	}
	if err != nil {
		return nil, storageErr("get claim", err)
	}
	return &claim, nil
}

// List returns the claims in the given status, newest first.
func (s *ClaimService) List(ctx context.Context, status models.ClaimStatus) ([]ClaimView, error) {
	if !status.Valid() {
		return nil, invalid("status", "must be one of Pending, Completed, Cancelled")
	}

	views := []ClaimView{}
	err := s.DB.WithContext(ctx).Table("claims AS c").
		Select("c.claim_id, c.food_id, fl.food_name, fl.expiry_date, c.receiver_id, r.name AS receiver_name, c.status, c.timestamp").
		Joins("LEFT JOIN food_listings fl ON fl.food_id = c.food_id").
		Joins("JOIN receivers r ON r.receiver_id = c.receiver_id").
		Where("c.status = ?", status).
		Order("c.timestamp DESC").
		Order("c.claim_id DESC").
		Scan(&views).Error
	if err != nil {
		return nil, storageErr("list claims", err)
	}
	return views, nil
}

// lockClaimAndListing locks the claim's listing and then the claim, the same
// order Delete and removeListing take them in, so transitions on claims of one
// listing queue on the listing row. The listing is nil when it no longer
// exists. The claim is re-read under its lock and must still be Pending.
func lockClaimAndListing(tx *gorm.DB, claimID uint) (*models.Claim, *models.FoodListing, error) {
	var foodIDs []uint
	if err := tx.Model(&models.Claim{}).
		Where("claim_id = ? AND status = ?", claimID, models.ClaimStatusPending).
		Pluck("food_id", &foodIDs).Error; err != nil {
		return nil, nil, err
	}
	if len(foodIDs) == 0 {
		return nil, nil, &NotFoundError{Entity: "claim", ID: claimID, Reason: "no pending claim with this id"}
	}

	listing, err := lockListing(tx, foodIDs[0])
	if err != nil {
		return nil, nil, err
	}
	claim, err := lockPendingClaim(tx, claimID)
	if err != nil {
		return nil, nil, err
	}
	return claim, listing, nil
}

func lockPendingClaim(tx *gorm.DB, claimID uint) (*models.Claim, error) {
	var claim models.Claim
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("claim_id = ? AND status = ?", claimID, models.ClaimStatusPending).
		Take(&claim).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "claim", ID: claimID, Reason: "no pending claim with this id"}
	}
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// setStatusFromPending is the guarded write: it only succeeds while the row is
// still Pending, so a concurrent transition that committed first wins.
func setStatusFromPending(tx *gorm.DB, claimID uint, to models.ClaimStatus) error {
	res := tx.Model(&models.Claim{}).
		Where("claim_id = ? AND status = ?", claimID, models.ClaimStatusPending).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "claim", ID: claimID, Reason: "claim is no longer pending"}
	}
	return nil
}
